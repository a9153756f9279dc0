// Package config loads the run configuration of a metrics batch.
// Values come from defaults, an optional YAML file and METRICS_* environment variables,
// in increasing order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"stock_metrics/internal/feature/metrics/engine"
	"stock_metrics/internal/feature/metrics/usecase"
)

const envPrefix = "METRICS"

// Candle sources selectable with the "source" key.
const (
	SourceDB     = "db"
	SourceMarket = "market"
)

// Config is the run configuration.
type Config struct {
	RiskFreeRate     float64       `mapstructure:"risk_free_rate"`
	MinCandles       int           `mapstructure:"min_candles"`
	ATRWindow        int           `mapstructure:"atr_window"`
	DrawdownWindow   int           `mapstructure:"drawdown_window"`
	SharpeWindow     int           `mapstructure:"sharpe_window"`
	PeriodsPerYear   int           `mapstructure:"periods_per_year"`
	Annualize        bool          `mapstructure:"annualize"`
	WeeklyGroupSize  int           `mapstructure:"weekly_group_size"`
	WeeklyMinGroups  int           `mapstructure:"weekly_min_groups"`
	WeeklyPercentile float64       `mapstructure:"weekly_percentile"`
	WeeklyEMAPeriod  int           `mapstructure:"weekly_ema_period"`
	Workers          int           `mapstructure:"workers"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
	CandleCount      int           `mapstructure:"candle_count"`
	Source           string        `mapstructure:"source"`
}

func setDefaults(v *viper.Viper) {
	d := engine.DefaultConfig()
	v.SetDefault("risk_free_rate", engine.DefaultRiskFreeRate)
	v.SetDefault("min_candles", d.Sharpe.MinCandles)
	v.SetDefault("atr_window", d.ATRWindow)
	v.SetDefault("drawdown_window", d.DrawdownWindow)
	v.SetDefault("sharpe_window", d.Sharpe.Window)
	v.SetDefault("periods_per_year", d.Sharpe.PeriodsPerYear)
	v.SetDefault("annualize", d.Sharpe.Annualize)
	v.SetDefault("weekly_group_size", d.WeeklyRange.GroupSize)
	v.SetDefault("weekly_min_groups", d.WeeklyRange.MinGroups)
	v.SetDefault("weekly_percentile", d.WeeklyRange.Percentile)
	v.SetDefault("weekly_ema_period", d.WeeklyRange.EMAPeriod)
	v.SetDefault("workers", usecase.DefaultWorkers)
	v.SetDefault("fetch_timeout", usecase.DefaultFetchTimeout)
	v.SetDefault("candle_count", usecase.DefaultCandleCount)
	v.SetDefault("source", SourceDB)
}

// Load reads the configuration. path may be empty, in which case only
// defaults and the environment are used.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file failed (%s): %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the keys the engine does not validate itself.
func (c Config) Validate() error {
	switch c.Source {
	case SourceDB, SourceMarket:
	default:
		return fmt.Errorf("source must be %q or %q, got %q", SourceDB, SourceMarket, c.Source)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout)
	}
	return nil
}

// Engine returns the engine parameters. The risk-free rate is checked when Sharpe runs.
func (c Config) Engine() engine.Config {
	rate := c.RiskFreeRate
	return engine.Config{
		ATRWindow:      c.ATRWindow,
		DrawdownWindow: c.DrawdownWindow,
		Sharpe: engine.SharpeConfig{
			RiskFreeRate:   &rate,
			MinCandles:     c.MinCandles,
			Window:         c.SharpeWindow,
			PeriodsPerYear: c.PeriodsPerYear,
			Annualize:      c.Annualize,
		},
		WeeklyRange: engine.WeeklyRangeConfig{
			GroupSize:  c.WeeklyGroupSize,
			MinGroups:  c.WeeklyMinGroups,
			Percentile: c.WeeklyPercentile,
			EMAPeriod:  c.WeeklyEMAPeriod,
		},
	}
}

// Batch returns the worker pool options.
func (c Config) Batch() usecase.BatchOptions {
	return usecase.BatchOptions{
		Workers:      c.Workers,
		FetchTimeout: c.FetchTimeout,
		CandleCount:  c.CandleCount,
	}
}
