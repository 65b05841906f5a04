package batch

import (
	"time"

	"github.com/xkilldash9x/courier-cli/api/schemas"
)

// MessageNoData is recorded for identifiers whose search found nothing.
const MessageNoData = "No data found"

// RunStatistics accumulates the counts and error records of one run. Only
// the Controller mutates it.
type RunStatistics struct {
	RunID      string
	Rehearsal  bool
	StartedAt  time.Time
	FinishedAt time.Time
	// Found is the number of documents scanned.
	Found int
	// Total counts documents that reached a terminal state.
	Total     int
	Succeeded int
	Failed    int
	// Skipped counts identifiers, not documents.
	Skipped int
	Errors  []schemas.ErrorRecord
	Aborted string
}

// documentRecord buffers one document's task results. Nothing reaches the
// statistics until commit, so an abandoned document leaves no trace.
type documentRecord struct {
	name      string
	succeeded bool
	skipped   int
	errors    []schemas.ErrorRecord
}

func newDocumentRecord(name string) *documentRecord {
	return &documentRecord{name: name, succeeded: true}
}

// task adds the error record, if any, for one task outcome.
func (d *documentRecord) task(o schemas.TaskOutcome) {
	switch o.Status {
	case schemas.OutcomeSucceeded:
		return
	case schemas.OutcomeSkipped:
		d.skipped++
		msg := o.Reason
		if msg == "" {
			msg = MessageNoData
		}
		d.fail(o.Task.Identifier, "", msg)
	default:
		msg := o.Reason
		if msg == "" {
			msg = string(o.Kind)
		}
		d.fail(o.Task.Identifier, o.Kind, msg)
	}
}

func (d *documentRecord) fail(identifier string, kind schemas.ErrorKind, msg string) {
	d.succeeded = false
	d.errors = append(d.errors, schemas.ErrorRecord{Document: d.name, Identifier: identifier, Kind: kind, Message: msg})
}

func (s *RunStatistics) commit(d *documentRecord) {
	s.Total++
	if d.succeeded {
		s.Succeeded++
	} else {
		s.Failed++
	}
	s.Skipped += d.skipped
	s.Errors = append(s.Errors, d.errors...)
}

// Report snapshots the statistics.
func (s *RunStatistics) Report() *schemas.RunReport {
	return &schemas.RunReport{
		RunID:      s.RunID,
		Rehearsal:  s.Rehearsal,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Found:      s.Found,
		Total:      s.Total,
		Succeeded:  s.Succeeded,
		Failed:     s.Failed,
		Skipped:    s.Skipped,
		Errors:     append([]schemas.ErrorRecord(nil), s.Errors...),
		Aborted:    s.Aborted,
	}
}
