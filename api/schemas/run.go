package schemas

import (
	"math"
	"time"
)

// ErrorRecord is one entry of a run's error list.
type ErrorRecord struct {
	Document   string    `json:"document" yaml:"document"`
	Identifier string    `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Kind       ErrorKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Message    string    `json:"message" yaml:"message"`
}

// RunReport is the aggregate result of one batch run.
type RunReport struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	Rehearsal  bool      `json:"rehearsal" yaml:"rehearsal"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	// Found is the number of documents in the input folder; Total counts
	// those that reached placement.
	Found     int           `json:"found" yaml:"found"`
	Total     int           `json:"total" yaml:"total"`
	Succeeded int           `json:"succeeded" yaml:"succeeded"`
	Failed    int           `json:"failed" yaml:"failed"`
	Skipped   int           `json:"skipped" yaml:"skipped"`
	Errors    []ErrorRecord `json:"errors" yaml:"errors"`
	// Aborted holds the reason the run stopped before its end, if it did.
	Aborted string `json:"aborted,omitempty" yaml:"aborted,omitempty"`
}

// Duration is the run's wall time.
func (r RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// SuccessRate is the percentage of documents that succeeded, rounded to the
// nearest integer. Documents left unprocessed by an aborted run count
// against it. An empty run has a rate of zero.
func (r RunReport) SuccessRate() int {
	n := max(r.Total, r.Found)
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(r.Succeeded) * 100 / float64(n)))
}
