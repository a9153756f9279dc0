package engine

import (
	"fmt"

	"stock_metrics/internal/feature/metrics/domain"
	"stock_metrics/internal/feature/metrics/domain/entity"
)

// Compute runs the engine for kind over the series.
func Compute(kind entity.Kind, s Series, cfg Config) (entity.Result, error) {
	switch kind {
	case entity.KindATR:
		return ATR(s, cfg.ATRWindow)
	case entity.KindMaxDrawdown:
		return Drawdown(s, cfg.DrawdownWindow)
	case entity.KindSharpe:
		return Sharpe(s, cfg.Sharpe)
	case entity.KindWeeklyRange:
		return WeeklyRange(s, cfg.WeeklyRange)
	case entity.KindWeeklyEMA:
		return WeeklyEMA(s, cfg.WeeklyRange)
	}
	return entity.Result{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
}

// RequiredCandles returns how many candles kind needs under cfg.
// Sources use it to size fetches.
func RequiredCandles(kind entity.Kind, cfg Config) int {
	switch kind {
	case entity.KindATR:
		return cfg.ATRWindow
	case entity.KindMaxDrawdown:
		return cfg.DrawdownWindow
	case entity.KindSharpe:
		if cfg.Sharpe.Window > 0 {
			return cfg.Sharpe.Window + 1
		}
		return cfg.Sharpe.MinCandles + 1
	case entity.KindWeeklyRange:
		return cfg.WeeklyRange.GroupSize * cfg.WeeklyRange.MinGroups
	case entity.KindWeeklyEMA:
		return cfg.WeeklyRange.GroupSize * cfg.WeeklyRange.emaGroups()
	}
	return 0
}
