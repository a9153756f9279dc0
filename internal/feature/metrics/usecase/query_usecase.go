package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stock_metrics/internal/feature/metrics/domain"
	"stock_metrics/internal/feature/metrics/domain/entity"
)

// ErrInvalidRange is returned when from is after to.
var ErrInvalidRange = errors.New("from must not be after to")

// MetricReader reads stored results for a symbol, ascending by timestamp.
// A zero bound is open.
type MetricReader interface {
	Query(ctx context.Context, kind entity.Kind, symbol string, from, to int64) ([]entity.Result, error)
}

// QueryUsecase serves stored metric history.
type QueryUsecase struct {
	reader MetricReader
}

func NewQueryUsecase(reader MetricReader) *QueryUsecase {
	return &QueryUsecase{reader: reader}
}

// History returns the results of kind for symbol between from and to (inclusive, epoch seconds).
func (uc *QueryUsecase) History(ctx context.Context, kind entity.Kind, symbol string, from, to int64) ([]entity.Result, error) {
	if kind.Table() == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, domain.ErrNoSymbols
	}
	if from > 0 && to > 0 && from > to {
		return nil, ErrInvalidRange
	}
	return uc.reader.Query(ctx, kind, symbol, from, to)
}

// Latest returns the most recent result of kind for symbol.
func (uc *QueryUsecase) Latest(ctx context.Context, kind entity.Kind, symbol string) (*entity.Result, error) {
	results, err := uc.History(ctx, kind, symbol, 0, 0)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	r := results[len(results)-1]
	return &r, nil
}
