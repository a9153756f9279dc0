// Package adapters implements the metric store and candle sources used by the metrics usecases.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_metrics/internal/feature/metrics/domain"
	"stock_metrics/internal/feature/metrics/domain/entity"
	"stock_metrics/internal/feature/metrics/usecase"
)

type metricGorm struct {
	db *gorm.DB
}

var (
	_ usecase.MetricStore  = (*metricGorm)(nil)
	_ usecase.MetricReader = (*metricGorm)(nil)
)

// NewMetricRepository returns a store keeping one table per metric kind.
// With SQLite the caller should limit the pool to one open connection so writes are serialized.
func NewMetricRepository(db *gorm.DB) *metricGorm {
	return &metricGorm{db: db}
}

// maxSymbolLength is the size of MetricModel.Symbol. SQLite does not enforce it.
const maxSymbolLength = 32

// MetricModel is the row layout shared by every metric table.
type MetricModel struct {
	Symbol    string  `gorm:"primaryKey;size:32;not null"`
	Timestamp int64   `gorm:"primaryKey;autoIncrement:false;not null"`
	Value     float64 `gorm:"not null"`
}

var timestampColumn = clause.Column{Name: "timestamp"}

func (r *metricGorm) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return &domain.StoreError{Op: "ping", Err: err}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return &domain.StoreError{Op: "ping", Err: err}
	}
	return nil
}

// CreateSchema creates the tables of kinds if they do not exist yet.
func (r *metricGorm) CreateSchema(ctx context.Context, kinds ...entity.Kind) error {
	for _, k := range kinds {
		table := k.Table()
		if table == "" {
			return fmt.Errorf("%w: %q", domain.ErrUnknownKind, k)
		}
		if err := r.db.WithContext(ctx).Table(table).AutoMigrate(&MetricModel{}); err != nil {
			return &domain.StoreError{Op: "create schema " + table, Err: err}
		}
	}
	return nil
}

// Upsert inserts the result or replaces the value stored for the same (symbol, timestamp).
func (r *metricGorm) Upsert(ctx context.Context, res entity.Result) error {
	table := res.Kind.Table()
	switch {
	case table == "":
		return fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidResult, res.Kind)
	case strings.TrimSpace(res.Symbol) == "":
		return fmt.Errorf("%w: empty symbol", domain.ErrInvalidResult)
	case len(res.Symbol) > maxSymbolLength:
		return fmt.Errorf("%w: symbol %q exceeds %d bytes", domain.ErrInvalidResult, res.Symbol, maxSymbolLength)
	case math.IsNaN(res.Value) || math.IsInf(res.Value, 0):
		return fmt.Errorf("%w: non-finite value %v for %s", domain.ErrInvalidResult, res.Value, res.Symbol)
	}

	m := MetricModel{Symbol: res.Symbol, Timestamp: res.Timestamp, Value: res.Value}
	err := r.db.WithContext(ctx).Table(table).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, timestampColumn},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&m).Error
	if err != nil {
		if rowRejected(err) {
			return fmt.Errorf("%w: %s rejected by %s: %v", domain.ErrInvalidResult, res.Symbol, table, err)
		}
		return &domain.StoreError{Op: "upsert " + table, Err: err}
	}
	return nil
}

// rowRejected reports whether the database refused the row itself (SQLSTATE
// class 22 data exception or 23 integrity violation) rather than failing.
func rowRejected(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23")
}

// Query returns stored results ascending by timestamp. Bounds are inclusive and 0 means open.
func (r *metricGorm) Query(ctx context.Context, kind entity.Kind, symbol string, from, to int64) ([]entity.Result, error) {
	table := kind.Table()
	if table == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}

	exprs := []clause.Expression{clause.Eq{Column: clause.Column{Name: "symbol"}, Value: symbol}}
	if from > 0 {
		exprs = append(exprs, clause.Gte{Column: timestampColumn, Value: from})
	}
	if to > 0 {
		exprs = append(exprs, clause.Lte{Column: timestampColumn, Value: to})
	}

	var rows []MetricModel
	err := r.db.WithContext(ctx).Table(table).
		Clauses(clause.Where{Exprs: exprs}).
		Order(clause.OrderByColumn{Column: timestampColumn}).
		Find(&rows).Error
	if err != nil {
		return nil, &domain.StoreError{Op: "query " + table, Err: err}
	}

	out := make([]entity.Result, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.Result{Kind: kind, Symbol: m.Symbol, Timestamp: m.Timestamp, Value: m.Value})
	}
	return out, nil
}
