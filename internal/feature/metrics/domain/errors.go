// Package domain defines domain-level errors for the metrics feature.
package domain

import (
	"errors"
	"fmt"
)

// Validation gates returned by the metric engines. Callers branch on them with errors.Is.
var (
	// ErrInsufficientData indicates the input is too short for the computation.
	// InsufficientCandlesError and InsufficientReturnDataError both match it.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDegenerateSeries indicates a zero variance or a division by a zero price.
	ErrDegenerateSeries = errors.New("degenerate series")

	// ErrInvalidSeries indicates candles that are unordered, duplicated or belong to another symbol.
	ErrInvalidSeries = errors.New("invalid candle series")

	// ErrUnknownKind is returned when a metric kind has no engine.
	ErrUnknownKind = errors.New("unknown metric kind")
)

// Batch and store errors.
var (
	// ErrFetch matches every FetchError.
	ErrFetch = errors.New("candle fetch failed")

	// ErrStoreUnavailable matches every StoreError. It aborts a batch.
	ErrStoreUnavailable = errors.New("metric store unavailable")

	// ErrInvalidResult is returned by the store for a row that fails validation.
	// Only that row is skipped.
	ErrInvalidResult = errors.New("invalid metric result")

	// ErrNoSymbols is returned when a batch is started with an empty symbol list.
	ErrNoSymbols = errors.New("symbol list is empty")

	// ErrRunNotFound is returned for an unknown or expired run id.
	ErrRunNotFound = errors.New("run not found")
)

// InsufficientCandlesError reports a series shorter than a metric requires.
type InsufficientCandlesError struct {
	Required int
	Got      int
}

func (e *InsufficientCandlesError) Error() string {
	return fmt.Sprintf("insufficient candles: required %d, got %d", e.Required, e.Got)
}

func (e *InsufficientCandlesError) Is(target error) bool { return target == ErrInsufficientData }

// InsufficientReturnDataError reports fewer returns than the Sharpe minimum.
type InsufficientReturnDataError struct {
	Min int
	Got int
}

func (e *InsufficientReturnDataError) Error() string {
	return fmt.Sprintf("insufficient return data: need at least %d returns, got %d", e.Min, e.Got)
}

func (e *InsufficientReturnDataError) Is(target error) bool { return target == ErrInsufficientData }

// InvalidRiskFreeRateError reports a risk-free rate outside the accepted range.
type InvalidRiskFreeRateError struct {
	Value float64
}

func (e *InvalidRiskFreeRateError) Error() string {
	return fmt.Sprintf("invalid risk-free rate: %v", e.Value)
}

// FetchError wraps a candle source failure for one symbol.
type FetchError struct {
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch candles for %s: %v", e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// StoreError wraps a database failure of the metric store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("metric store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }
