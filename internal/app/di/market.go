// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"stock_metrics/internal/platform/externalapi/twelvedata"
	infrahttp "stock_metrics/internal/platform/http"
	"stock_metrics/internal/shared/ratelimiter"
)

// marketRequestsPerMinute is the Twelve Data free plan quota.
const marketRequestsPerMinute = 8

// NewMarket creates a fully configured TwelveDataMarket with HTTP client.
func NewMarket() *twelvedata.TwelveDataMarket {
	cfg := twelvedata.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return twelvedata.NewTwelveDataMarket(cfg, httpClient)
}

// NewMarketLimiter returns the limiter shared by every caller of the market API.
func NewMarketLimiter() *ratelimiter.RateLimiter {
	return ratelimiter.NewRateLimiter(marketRequestsPerMinute, time.Minute)
}
