// Package entity defines the domain models for the symbollist feature.
package entity

import "time"

// Symbol is a ticker whose candles are ingested and whose metrics are computed.
// Only active symbols take part in a run that is started without an explicit list.
type Symbol struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:32;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null;default:''"`
	Market    string    `gorm:"size:100;not null;default:''"`
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
