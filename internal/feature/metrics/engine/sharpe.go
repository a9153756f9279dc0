package engine

import (
	"math"

	"stock_metrics/internal/feature/metrics/domain"
	"stock_metrics/internal/feature/metrics/domain/entity"
)

// ResolveRiskFreeRate returns the configured annual rate, or the default when unset.
// Non-finite rates and rates beyond ±MaxAbsRiskFreeRate are rejected.
func ResolveRiskFreeRate(rate *float64) (float64, error) {
	r := DefaultRiskFreeRate
	if rate != nil {
		r = *rate
	}
	if math.IsNaN(r) || math.IsInf(r, 0) || math.Abs(r) > MaxAbsRiskFreeRate {
		return 0, &domain.InvalidRiskFreeRateError{Value: r}
	}
	return r, nil
}

// SharpeRatio returns (mean(returns)-ratePerPeriod)/stddev(returns).
// ratePerPeriod must already be expressed in the period of the returns.
func SharpeRatio(returns []float64, ratePerPeriod float64) (float64, error) {
	mean, err := Mean(returns)
	if err != nil {
		return 0, err
	}
	sd, err := SampleStdDev(returns)
	if err != nil {
		return 0, err
	}
	return (mean - ratePerPeriod) / sd, nil
}

// Sharpe computes the Sharpe ratio of the series' simple returns.
func Sharpe(s Series, cfg SharpeConfig) (entity.Result, error) {
	if cfg.Window > 0 {
		s = s.Tail(cfg.Window + 1)
	}
	returns, err := SimpleReturns(s)
	if err != nil {
		return entity.Result{}, err
	}
	if len(returns) < cfg.MinCandles {
		return entity.Result{}, &domain.InsufficientReturnDataError{Min: cfg.MinCandles, Got: len(returns)}
	}

	annual, err := ResolveRiskFreeRate(cfg.RiskFreeRate)
	if err != nil {
		return entity.Result{}, err
	}
	periods := cfg.PeriodsPerYear
	if periods <= 0 {
		periods = DefaultPeriodsPerYear
	}

	ratio, err := SharpeRatio(returns, annual/float64(periods))
	if err != nil {
		return entity.Result{}, err
	}
	if cfg.Annualize {
		ratio *= math.Sqrt(float64(periods))
	}
	return entity.Result{
		Kind:      entity.KindSharpe,
		Symbol:    s.Symbol(),
		Timestamp: s.LatestTimestamp(),
		Value:     ratio,
	}, nil
}
