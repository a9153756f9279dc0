package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_metrics/internal/feature/metrics/domain"
	"stock_metrics/internal/feature/metrics/domain/entity"
	"stock_metrics/internal/feature/metrics/usecase"
)

const (
	// DefaultRunTTL is how long a run record is kept.
	DefaultRunTTL = 7 * 24 * time.Hour
	// MaxRecentRuns bounds the index of recent runs.
	MaxRecentRuns = 100
)

// RunHistoryRedis stores run records in Redis. Each record is a JSON value with a TTL,
// and a sorted set indexes the run ids by start time.
type RunHistoryRedis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ usecase.RunHistory = (*RunHistoryRedis)(nil)

// NewRunHistoryRedis creates a RunHistoryRedis. Empty prefix and non-positive ttl select the defaults.
func NewRunHistoryRedis(client *redis.Client, prefix string, ttl time.Duration) *RunHistoryRedis {
	if prefix == "" {
		prefix = "runs"
	}
	if ttl <= 0 {
		ttl = DefaultRunTTL
	}
	return &RunHistoryRedis{client: client, prefix: prefix, ttl: ttl}
}

func (r *RunHistoryRedis) runKey(id string) string {
	return fmt.Sprintf("%s:run:%s", r.prefix, id)
}

func (r *RunHistoryRedis) indexKey() string {
	return r.prefix + ":recent"
}

// Save persists rec and trims the index to the newest MaxRecentRuns ids.
func (r *RunHistoryRedis) Save(ctx context.Context, rec entity.RunRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	if err := r.client.Set(ctx, r.runKey(rec.RunID), data, r.ttl).Err(); err != nil {
		return err
	}
	if err := r.client.ZAdd(ctx, r.indexKey(), redis.Z{
		Score:  float64(rec.StartedAt.Unix()),
		Member: rec.RunID,
	}).Err(); err != nil {
		return err
	}
	return r.client.ZRemRangeByRank(ctx, r.indexKey(), 0, -(MaxRecentRuns + 1)).Err()
}

// Get returns the run with the given id, or domain.ErrRunNotFound.
func (r *RunHistoryRedis) Get(ctx context.Context, id string) (*entity.RunRecord, error) {
	data, err := r.client.Get(ctx, r.runKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrRunNotFound
		}
		return nil, err
	}

	var rec entity.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &rec, nil
}

// Recent returns up to limit runs, newest first. Expired ids are dropped from the index.
func (r *RunHistoryRedis) Recent(ctx context.Context, limit int) ([]entity.RunRecord, error) {
	if limit <= 0 || limit > MaxRecentRuns {
		limit = MaxRecentRuns
	}
	ids, err := r.client.ZRevRange(ctx, r.indexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	runs := make([]entity.RunRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrRunNotFound) {
				r.client.ZRem(ctx, r.indexKey(), id)
				continue
			}
			return nil, err
		}
		runs = append(runs, *rec)
	}
	return runs, nil
}
