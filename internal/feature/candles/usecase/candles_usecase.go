// Package usecase はローソク足データの取得と取り込みのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"

	"stock_metrics/internal/feature/candles/domain/entity"
)

const (
	// DefaultInterval はローソク足クエリのデフォルト時間間隔です。
	DefaultInterval = entity.DailyInterval
	// DefaultOutputSize はデフォルトのローソク足返却件数です。
	DefaultOutputSize = 100
	// MaxOutputSize はローソク足の最大返却件数です。
	MaxOutputSize = 5000
)

// ErrEmptySymbol は銘柄コードが空のときに返されます。
var ErrEmptySymbol = errors.New("symbol is required")

// CandleRepository はローソク足データの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleRepository interface {
	// Find は新しい順にローソク足データを返します。
	Find(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error)
	// UpsertBatch は (symbol, interval, time) をキーにローソク足を保存します。
	UpsertBatch(ctx context.Context, candles []entity.Candle) error
}

// CandlesUsecase は保存済みローソク足の読み取りを提供します。
type CandlesUsecase struct {
	candle CandleRepository
}

// NewCandlesUsecase はCandlesUsecaseの新しいインスタンスを生成します。
func NewCandlesUsecase(candle CandleRepository) *CandlesUsecase {
	return &CandlesUsecase{candle: candle}
}

// GetCandles は指定された銘柄と時間間隔のローソク足を新しい順に返します。
func (cu *CandlesUsecase) GetCandles(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, ErrEmptySymbol
	}
	if interval == "" {
		interval = DefaultInterval
	}
	if outputsize <= 0 || outputsize > MaxOutputSize {
		outputsize = DefaultOutputSize
	}
	return cu.candle.Find(ctx, symbol, interval, outputsize)
}

// Daily は直近 count 件の日足を古い順（指標計算の入力順）で返します。
func (cu *CandlesUsecase) Daily(ctx context.Context, symbol string, count int) ([]entity.Candle, error) {
	cs, err := cu.GetCandles(ctx, symbol, entity.DailyInterval, count)
	if err != nil {
		return nil, err
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].Time.Before(cs[j].Time) })
	return cs, nil
}
