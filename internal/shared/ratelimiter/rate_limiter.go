package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterは、API呼び出しなどの操作の頻度を制限します。
// interval あたり limit 回の呼び出しを等間隔に割り当てます。
// 複数のワーカーから同時に呼び出して構いません。
type RateLimiter struct {
	limit    int // interval あたりの上限
	interval time.Duration
	lim      *rate.Limiter

	now func() time.Time
}

// NewRateLimiterは新しいRateLimiterのインスタンスを生成します。
// limit が 0 以下の場合は制限しません。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	every := rate.Inf
	if limit > 0 && interval > 0 {
		every = rate.Every(interval / time.Duration(limit))
	}
	return &RateLimiter{
		limit:    limit,
		interval: interval,
		lim:      rate.NewLimiter(every, 1),
		now:      time.Now,
	}
}

// Waitはレートリミットの上限に達していれば次の枠まで待機します。
// 待機中にコンテキストが終了した場合は確保した枠を返却し、そのエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, sleep := rl.reserve()
	if sleep <= 0 {
		return nil
	}
	slog.Info("rate limit reached, waiting", "limit", rl.limit, "interval", rl.interval, "wait", sleep)

	timer := time.NewTimer(sleep)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		// 使われなかった枠は後続の呼び出しに回す
		r.CancelAt(rl.now())
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// reserve は呼び出し枠を1つ確保し、その枠が有効になるまでの待ち時間を返します。
func (rl *RateLimiter) reserve() (*rate.Reservation, time.Duration) {
	now := rl.now()
	r := rl.lim.ReserveN(now, 1)
	return r, r.DelayFrom(now)
}
