package engine

import (
	"errors"
	"fmt"
)

const (
	// DefaultRiskFreeRate is the annualized risk-free rate used when none is configured.
	DefaultRiskFreeRate = 0.02
	// DefaultMinCandles is the minimum number of returns for a Sharpe ratio.
	DefaultMinCandles = 14
	// DefaultATRWindow is the number of trailing true ranges averaged into the ATR.
	DefaultATRWindow = 14
	// DefaultDrawdownWindow is the number of trailing closes scanned for the max drawdown.
	DefaultDrawdownWindow = 20
	// DefaultWeeklyEMAPeriod is the EMA period applied to weekly range ratios.
	DefaultWeeklyEMAPeriod = 4
	// DefaultPeriodsPerYear is the number of trading days used to de-annualize the risk-free rate.
	DefaultPeriodsPerYear = 252

	// MaxAbsRiskFreeRate bounds the accepted annualized risk-free rate (100%).
	MaxAbsRiskFreeRate = 1.0
)

// SharpeConfig holds the run-scoped Sharpe ratio parameters.
type SharpeConfig struct {
	// RiskFreeRate is annualized. nil selects DefaultRiskFreeRate.
	RiskFreeRate *float64
	// MinCandles is the minimum number of returns required.
	MinCandles int
	// Window limits the computation to the trailing Window returns. 0 uses the whole series.
	Window int
	// PeriodsPerYear converts the annual rate to the return period.
	PeriodsPerYear int
	// Annualize multiplies the ratio by sqrt(PeriodsPerYear).
	Annualize bool
}

// WeeklyRangeConfig controls the grouped range ratio percentile and EMA.
type WeeklyRangeConfig struct {
	GroupSize  int     // daily candles per group
	MinGroups  int     // groups required for the percentile
	Percentile float64 // 0..1
	EMAPeriod  int     // ratios averaged by the EMA
}

// emaGroups is the number of groups the EMA needs: EMAPeriod ratios need one group more.
func (c WeeklyRangeConfig) emaGroups() int {
	return max(c.MinGroups, c.EMAPeriod+1)
}

// Config carries every engine parameter. It is passed to each computation.
type Config struct {
	ATRWindow      int
	DrawdownWindow int
	Sharpe         SharpeConfig
	WeeklyRange    WeeklyRangeConfig
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		ATRWindow:      DefaultATRWindow,
		DrawdownWindow: DefaultDrawdownWindow,
		Sharpe: SharpeConfig{
			MinCandles:     DefaultMinCandles,
			PeriodsPerYear: DefaultPeriodsPerYear,
		},
		WeeklyRange: WeeklyRangeConfig{
			GroupSize:  5,
			MinGroups:  4,
			Percentile: 0.5,
			EMAPeriod:  DefaultWeeklyEMAPeriod,
		},
	}
}

// Validate rejects configurations no metric can run with.
// The risk-free rate is checked by the Sharpe engine itself.
func (c Config) Validate() error {
	var errs []error
	if c.ATRWindow < 1 {
		errs = append(errs, fmt.Errorf("atr window must be positive, got %d", c.ATRWindow))
	}
	if c.DrawdownWindow < 1 {
		errs = append(errs, fmt.Errorf("drawdown window must be positive, got %d", c.DrawdownWindow))
	}
	if c.Sharpe.MinCandles < 2 {
		errs = append(errs, fmt.Errorf("sharpe min candles must be at least 2, got %d", c.Sharpe.MinCandles))
	}
	if c.Sharpe.Window < 0 {
		errs = append(errs, fmt.Errorf("sharpe window must not be negative, got %d", c.Sharpe.Window))
	}
	if c.Sharpe.PeriodsPerYear < 1 {
		errs = append(errs, fmt.Errorf("periods per year must be positive, got %d", c.Sharpe.PeriodsPerYear))
	}
	if c.WeeklyRange.GroupSize < 1 || c.WeeklyRange.MinGroups < 2 {
		errs = append(errs, fmt.Errorf("weekly range needs group size >= 1 and min groups >= 2, got %d/%d",
			c.WeeklyRange.GroupSize, c.WeeklyRange.MinGroups))
	}
	if c.WeeklyRange.Percentile < 0 || c.WeeklyRange.Percentile > 1 {
		errs = append(errs, fmt.Errorf("weekly percentile must be within [0, 1], got %v", c.WeeklyRange.Percentile))
	}
	if c.WeeklyRange.EMAPeriod < 1 {
		errs = append(errs, fmt.Errorf("weekly ema period must be positive, got %d", c.WeeklyRange.EMAPeriod))
	}
	return errors.Join(errs...)
}
