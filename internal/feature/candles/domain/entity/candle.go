// Package entity defines the domain models for the candles feature.
package entity

import "time"

// DailyInterval is the interval of the candles the metrics are computed from.
const DailyInterval = "1day"

// Candle represents OHLCV (Open, High, Low, Close, Volume) data for a stock
// symbol over one interval. Candles are immutable once fetched.
type Candle struct {
	Symbol   string    // Stock ticker symbol (e.g., "AAPL", "MSFT")
	Interval string    // Time interval (e.g., "1day")
	Time     time.Time // Start of the candle period
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   int64
}

// Timestamp returns the candle time as epoch seconds, the key used by stored metrics.
func (c Candle) Timestamp() int64 { return c.Time.Unix() }
