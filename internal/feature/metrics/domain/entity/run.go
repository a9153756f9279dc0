package entity

import "time"

// FailureRecord is the persisted form of a Failure.
type FailureRecord struct {
	Symbol string `json:"symbol"`
	Kind   Kind   `json:"kind,omitempty"`
	Error  string `json:"error"`
}

// RunRecord is the persisted outcome of a batch, kept for later lookup.
// Error is set when the batch itself was aborted.
type RunRecord struct {
	RunID      string          `json:"run_id"`
	Kinds      []Kind          `json:"kinds"`
	Succeeded  []string        `json:"succeeded"`
	Failures   []FailureRecord `json:"failures"`
	Written    int             `json:"written"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Error      string          `json:"error,omitempty"`
}

// NewRunRecord converts a summary and the batch error into a RunRecord.
func NewRunRecord(s *Summary, runErr error) RunRecord {
	rec := RunRecord{
		RunID:      s.RunID,
		Kinds:      append([]Kind{}, s.Kinds...),
		Succeeded:  append([]string{}, s.Succeeded...),
		Failures:   make([]FailureRecord, 0, len(s.Failures)),
		Written:    s.Written,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
	}
	for _, f := range s.Failures {
		fr := FailureRecord{Symbol: f.Symbol, Kind: f.Kind}
		if f.Err != nil {
			fr.Error = f.Err.Error()
		}
		rec.Failures = append(rec.Failures, fr)
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	return rec
}
