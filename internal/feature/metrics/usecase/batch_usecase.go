// Package usecase implements the metric batch run and result queries.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	candle "stock_metrics/internal/feature/candles/domain/entity"
	"stock_metrics/internal/feature/metrics/domain"
	"stock_metrics/internal/feature/metrics/domain/entity"
	"stock_metrics/internal/feature/metrics/engine"
	symbollist "stock_metrics/internal/feature/symbollist/usecase"
	"stock_metrics/internal/platform/observability"
)

const (
	// DefaultWorkers is the number of symbols processed concurrently.
	DefaultWorkers = 4
	// DefaultFetchTimeout bounds a single candle fetch.
	DefaultFetchTimeout = 10 * time.Second
	// DefaultCandleCount is the number of daily candles requested per symbol.
	DefaultCandleCount = 100
)

// CandleSource returns daily candles for a symbol in ascending time order.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type CandleSource interface {
	Candles(ctx context.Context, symbol string, count int) ([]candle.Candle, error)
}

// Limiter throttles candle fetches shared by all workers.
type Limiter interface {
	Wait(ctx context.Context) error
}

// MetricStore persists metric results.
type MetricStore interface {
	Ping(ctx context.Context) error
	CreateSchema(ctx context.Context, kinds ...entity.Kind) error
	Upsert(ctx context.Context, r entity.Result) error
}

// Notifier publishes the summary of a finished batch.
type Notifier interface {
	Notify(ctx context.Context, s *entity.Summary) error
}

// RunHistory keeps the record of every run, completed or aborted.
type RunHistory interface {
	Save(ctx context.Context, rec entity.RunRecord) error
}

// BatchOptions tunes the batch runner. Zero values select the defaults.
type BatchOptions struct {
	Workers      int
	FetchTimeout time.Duration
	CandleCount  int
}

func (o BatchOptions) withDefaults() BatchOptions {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	if o.CandleCount <= 0 {
		o.CandleCount = DefaultCandleCount
	}
	return o
}

// BatchUsecase computes metrics for a list of symbols and stores them.
type BatchUsecase struct {
	source   CandleSource
	store    MetricStore
	cfg      engine.Config
	opts     BatchOptions
	limiter  Limiter
	notifier Notifier
	history  RunHistory
	metrics  *observability.Metrics

	now   func() time.Time
	newID func() string
}

// NewBatchUsecase creates a BatchUsecase. cfg is used for every computation of every run.
func NewBatchUsecase(source CandleSource, store MetricStore, cfg engine.Config, opts BatchOptions) *BatchUsecase {
	return &BatchUsecase{
		source: source,
		store:  store,
		cfg:    cfg,
		opts:   opts.withDefaults(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// WithLimiter throttles every candle fetch. The wait runs on the batch
// context so that only the fetch itself is bounded by FetchTimeout.
func (b *BatchUsecase) WithLimiter(l Limiter) *BatchUsecase {
	b.limiter = l
	return b
}

// WithNotifier sets the sink that receives the summary of every completed run.
func (b *BatchUsecase) WithNotifier(n Notifier) *BatchUsecase {
	b.notifier = n
	return b
}

// WithHistory sets the store that records every run.
func (b *BatchUsecase) WithHistory(h RunHistory) *BatchUsecase {
	b.history = h
	return b
}

// WithMetrics sets the Prometheus collectors updated by every run.
func (b *BatchUsecase) WithMetrics(m *observability.Metrics) *BatchUsecase {
	b.metrics = m
	return b
}

// Run computes kinds for every symbol. Per-symbol problems (fetch errors,
// insufficient data, degenerate series, rejected rows) are collected in the
// summary and never abort the run. An error is returned only when the batch
// itself cannot proceed: no symbols, invalid configuration, an unreachable
// store, or cancellation. The summary is returned in both cases.
func (b *BatchUsecase) Run(ctx context.Context, symbols []string, kinds []entity.Kind) (*entity.Summary, error) {
	summary := &entity.Summary{
		RunID:     b.newID(),
		Kinds:     kinds,
		StartedAt: b.now(),
	}
	err := b.run(ctx, summary, symbols, kinds)
	summary.FinishedAt = b.now()
	b.metrics.ObserveBatch(err, summary.StartedAt, summary.FinishedAt)
	if b.history != nil {
		if herr := b.history.Save(context.WithoutCancel(ctx), entity.NewRunRecord(summary, err)); herr != nil {
			slog.Warn("failed to record batch run", "run_id", summary.RunID, "error", herr)
		}
	}

	if err != nil {
		slog.Error("metric batch aborted", "run_id", summary.RunID, "error", err)
		return summary, err
	}
	slog.Info("metric batch finished",
		"run_id", summary.RunID,
		"succeeded", summary.SucceededCount(),
		"failed", summary.FailedCount(),
		"written", summary.Written,
		"elapsed", summary.FinishedAt.Sub(summary.StartedAt))

	if b.notifier != nil {
		if nerr := b.notifier.Notify(ctx, summary); nerr != nil {
			slog.Warn("failed to publish batch summary", "run_id", summary.RunID, "error", nerr)
		}
	}
	return summary, nil
}

func (b *BatchUsecase) run(ctx context.Context, summary *entity.Summary, symbols []string, kinds []entity.Kind) error {
	symbols = symbollist.Dedupe(symbols)
	if len(symbols) == 0 {
		return domain.ErrNoSymbols
	}
	if len(kinds) == 0 {
		return fmt.Errorf("%w: no metric kinds requested", domain.ErrUnknownKind)
	}
	for _, k := range kinds {
		if k.Table() == "" {
			return fmt.Errorf("%w: %q", domain.ErrUnknownKind, k)
		}
	}
	if err := b.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}
	if err := b.store.Ping(ctx); err != nil {
		return err
	}
	if err := b.store.CreateSchema(ctx, kinds...); err != nil {
		return err
	}

	count := b.opts.CandleCount
	for _, k := range kinds {
		count = max(count, engine.RequiredCandles(k, b.cfg))
	}

	slog.Info("metric batch started", "run_id", summary.RunID, "symbols", len(symbols), "kinds", kinds, "workers", b.opts.Workers)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for _, symbol := range symbols {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			written, failures, fatal := b.processSymbol(gctx, symbol, kinds, count)

			mu.Lock()
			defer mu.Unlock()
			summary.Written += written
			summary.Failures = append(summary.Failures, failures...)
			if fatal != nil {
				return fatal
			}
			if gctx.Err() != nil {
				return nil
			}
			if len(failures) == 0 {
				summary.Succeeded = append(summary.Succeeded, symbol)
				b.metrics.ObserveSymbol("ok")
			} else {
				b.metrics.ObserveSymbol("failed")
			}
			return nil
		})
	}
	err := g.Wait()

	sort.Strings(summary.Succeeded)
	sort.SliceStable(summary.Failures, func(i, j int) bool {
		if summary.Failures[i].Symbol != summary.Failures[j].Symbol {
			return summary.Failures[i].Symbol < summary.Failures[j].Symbol
		}
		return summary.Failures[i].Kind < summary.Failures[j].Kind
	})

	if err != nil {
		return err
	}
	return ctx.Err()
}

// processSymbol runs fetch, compute and upsert for one symbol. fatal is non-nil
// only for errors that must stop the whole batch.
func (b *BatchUsecase) processSymbol(ctx context.Context, symbol string, kinds []entity.Kind, count int) (written int, failures []entity.Failure, fatal error) {
	candles, err := b.fetch(ctx, symbol, count)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, nil
		}
		ferr := &domain.FetchError{Symbol: symbol, Err: err}
		slog.Error("failed to fetch candles", "symbol", symbol, "error", err)
		return 0, []entity.Failure{{Symbol: symbol, Err: ferr}}, nil
	}

	series, err := engine.NewSeries(symbol, candles)
	if err != nil {
		slog.Error("rejected candle series", "symbol", symbol, "error", err)
		return 0, []entity.Failure{{Symbol: symbol, Err: err}}, nil
	}

	for _, kind := range kinds {
		r, err := engine.Compute(kind, series, b.cfg)
		if err != nil {
			slog.Warn("failed to compute metric", "symbol", symbol, "kind", kind, "error", err)
			failures = append(failures, entity.Failure{Symbol: symbol, Kind: kind, Err: err})
			continue
		}
		if err := b.store.Upsert(ctx, r); err != nil {
			if errors.Is(err, domain.ErrStoreUnavailable) {
				return written, failures, err
			}
			slog.Warn("failed to store metric", "symbol", symbol, "kind", kind, "error", err)
			failures = append(failures, entity.Failure{Symbol: symbol, Kind: kind, Err: err})
			continue
		}
		written++
		b.metrics.ObserveWrite(string(kind))
	}
	return written, failures, nil
}

func (b *BatchUsecase) fetch(ctx context.Context, symbol string, count int) ([]candle.Candle, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}
	fetchCtx, cancel := context.WithTimeout(ctx, b.opts.FetchTimeout)
	defer cancel()
	return b.source.Candles(fetchCtx, symbol, count)
}
