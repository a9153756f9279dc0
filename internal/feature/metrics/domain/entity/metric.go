// Package entity defines the domain models for the metrics feature.
package entity

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies a metric and the table its results are stored in.
type Kind string

const (
	KindATR         Kind = "atr"
	KindMaxDrawdown Kind = "maxdrawdown"
	KindSharpe      Kind = "sharpe"
	KindWeeklyRange Kind = "weeklyrange"
	KindWeeklyEMA   Kind = "weeklyema"
)

// AllKinds lists every metric computed by an "all" run, in execution order.
var AllKinds = []Kind{KindATR, KindMaxDrawdown, KindSharpe, KindWeeklyRange, KindWeeklyEMA}

// Table returns the name of the table holding results for the kind.
func (k Kind) Table() string {
	switch k {
	case KindATR:
		return "true_range"
	case KindMaxDrawdown:
		return "max_drawdown"
	case KindSharpe:
		return "sharpe_ratio"
	case KindWeeklyRange:
		return "weekly_range"
	case KindWeeklyEMA:
		return "weekly_range_ema"
	}
	return ""
}

// ParseKinds converts a command word ("atr", "sharpe", "all", ...) into the kinds it covers.
func ParseKinds(s string) ([]Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "all" {
		out := make([]Kind, len(AllKinds))
		copy(out, AllKinds)
		return out, nil
	}
	for _, k := range AllKinds {
		if string(k) == s {
			return []Kind{k}, nil
		}
	}
	return nil, fmt.Errorf("unknown metric %q", s)
}

// Result is a single computed metric value for a symbol.
// (Kind, Symbol, Timestamp) uniquely identifies a result; a rerun replaces the value.
type Result struct {
	Kind      Kind
	Symbol    string
	Timestamp int64 // epoch seconds of the latest candle used
	Value     float64
}

// Failure records why a symbol could not produce a metric during a batch.
// Kind is empty when the failure happened before any metric was computed (e.g. fetch).
type Failure struct {
	Symbol string
	Kind   Kind
	Err    error
}

// Summary is the outcome of one batch run.
type Summary struct {
	RunID      string
	Kinds      []Kind
	Succeeded  []string
	Failures   []Failure
	Written    int
	StartedAt  time.Time
	FinishedAt time.Time
}

// SucceededCount returns the number of symbols for which every requested metric was stored.
func (s *Summary) SucceededCount() int { return len(s.Succeeded) }

// FailedCount returns the number of distinct symbols with at least one failure.
func (s *Summary) FailedCount() int {
	seen := make(map[string]struct{}, len(s.Failures))
	for _, f := range s.Failures {
		seen[f.Symbol] = struct{}{}
	}
	return len(seen)
}

// FailedSymbols returns the distinct failed symbols in first-failure order.
func (s *Summary) FailedSymbols() []string {
	seen := make(map[string]struct{}, len(s.Failures))
	out := make([]string, 0, len(s.Failures))
	for _, f := range s.Failures {
		if _, ok := seen[f.Symbol]; ok {
			continue
		}
		seen[f.Symbol] = struct{}{}
		out = append(out, f.Symbol)
	}
	return out
}
