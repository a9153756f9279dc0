// Package dto defines data transfer objects for the metrics HTTP API.
package dto

// MetricPoint is one stored metric value.
type MetricPoint struct {
	Timestamp int64   `json:"timestamp"`
	Time      string  `json:"time"`
	Value     float64 `json:"value"`
}

// HistoryResponse is returned by GET /metrics/:kind/:symbol.
type HistoryResponse struct {
	Kind   string        `json:"kind"`
	Symbol string        `json:"symbol"`
	Points []MetricPoint `json:"points"`
}

// RunRequest is the body of POST /runs. Symbols may be omitted to use the active symbols.
type RunRequest struct {
	Kind    string   `json:"kind" binding:"required"`
	Symbols []string `json:"symbols"`
}

// FailureItem is one failed (symbol, kind) pair. Kind is empty for fetch failures.
type FailureItem struct {
	Symbol string `json:"symbol"`
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error"`
}

// RunResponse summarizes a finished batch.
type RunResponse struct {
	RunID      string        `json:"run_id"`
	Kinds      []string      `json:"kinds"`
	Succeeded  []string      `json:"succeeded"`
	Failures   []FailureItem `json:"failures"`
	Written    int           `json:"written"`
	StartedAt  string        `json:"started_at"`
	FinishedAt string        `json:"finished_at"`
	Error      string        `json:"error,omitempty"`
}

// ErrorResponse is returned for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
