package usecase

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"stock_metrics/internal/feature/candles/domain/entity"
)

// DefaultIngestOutputSize は1回のリクエストで取得するデータ件数です。
const DefaultIngestOutputSize = 100

// MarketRepository は株価データを取得するリポジトリのインターフェイスです。
// 外部 API の実装を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error)
}

// RateLimiter は外部APIの呼び出し頻度を制限します。
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// IngestSummary は取り込み処理の結果です。
type IngestSummary struct {
	Ingested []string
	Failed   map[string]error
	Rows     int
	Elapsed  time.Duration
}

// IngestUsecase は外部APIからデータを取得し、データベースに永続化するユースケースを定義します。
type IngestUsecase struct {
	market      MarketRepository
	candle      CandleRepository
	rateLimiter RateLimiter
	intervals   []string
	outputsize  int
}

// NewIngestUsecase は日足のみを取り込む IngestUsecase を作成します。
func NewIngestUsecase(market MarketRepository, candle CandleRepository, rateLimiter RateLimiter) *IngestUsecase {
	return &IngestUsecase{
		market:      market,
		candle:      candle,
		rateLimiter: rateLimiter,
		intervals:   []string{entity.DailyInterval},
		outputsize:  DefaultIngestOutputSize,
	}
}

// WithIntervals は取り込み対象の時間足を変更します（例: "1day", "1week"）。
func (iu *IngestUsecase) WithIntervals(intervals ...string) *IngestUsecase {
	if len(intervals) > 0 {
		iu.intervals = intervals
	}
	return iu
}

// WithOutputSize は1リクエストあたりの取得件数を変更します。
func (iu *IngestUsecase) WithOutputSize(n int) *IngestUsecase {
	if n > 0 {
		iu.outputsize = n
	}
	return iu
}

// ingestOne は1銘柄・1時間足の時系列データを取得し、一括で upsert します。
func (iu *IngestUsecase) ingestOne(ctx context.Context, symbol, interval string) (int, error) {
	cs, err := iu.market.GetTimeSeries(ctx, symbol, interval, iu.outputsize)
	if err != nil {
		return 0, err
	}

	// 取得したデータに銘柄コードと時間足を設定
	for i := range cs {
		cs[i].Symbol = symbol
		cs[i].Interval = interval
	}
	if err := iu.candle.UpsertBatch(ctx, cs); err != nil {
		return 0, err
	}
	return len(cs), nil
}

// IngestAll は全銘柄の時系列データを取得して永続化します。
// 1つの銘柄で失敗しても処理を止めずに記録して次へ進みます。コンテキストがキャンセルされた場合のみエラーを返します。
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string) (*IngestSummary, error) {
	started := time.Now()
	sum := &IngestSummary{Failed: map[string]error{}}

	for _, s := range symbols {
		var symbolErr error
		for _, interval := range iu.intervals {
			if err := iu.rateLimiter.Wait(ctx); err != nil {
				sum.Elapsed = time.Since(started)
				return sum, err
			}
			n, err := iu.ingestOne(ctx, s, interval)
			if err != nil {
				slog.Error("failed to ingest data", "symbol", s, "interval", interval, "error", err)
				symbolErr = err
				continue
			}
			sum.Rows += n
		}
		if symbolErr != nil {
			sum.Failed[s] = symbolErr
			continue
		}
		sum.Ingested = append(sum.Ingested, s)
	}

	sort.Strings(sum.Ingested)
	sum.Elapsed = time.Since(started)
	slog.Info("ingest finished", "ingested", len(sum.Ingested), "failed", len(sum.Failed), "rows", sum.Rows, "elapsed", sum.Elapsed)
	return sum, nil
}
