package schemas

import (
	"path/filepath"
	"time"
)

// Task is one (document, target identifier) pair. A document whose name
// carries several identifiers expands into several tasks sharing the same
// Document path.
type Task struct {
	ID         string `json:"id" yaml:"id"`
	Document   string `json:"document" yaml:"document"`
	Identifier string `json:"identifier" yaml:"identifier"`
	// Index is the identifier's position within its document.
	Index int `json:"index" yaml:"index"`
}

// DocumentName is the base name of the document file.
func (t Task) DocumentName() string {
	return filepath.Base(t.Document)
}

// OutcomeStatus is the terminal status of a task.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "SUCCEEDED"
	OutcomeFailed    OutcomeStatus = "FAILED"
	OutcomeSkipped   OutcomeStatus = "SKIPPED"
)

// TaskOutcome is the result of running the workflow for one task.
type TaskOutcome struct {
	Task   Task          `json:"task" yaml:"task"`
	Status OutcomeStatus `json:"status" yaml:"status"`
	Reason string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	// Kind classifies a failure. Empty for succeeded and skipped tasks.
	Kind ErrorKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	// State is the workflow state the task ended in or failed at.
	State         WorkflowState `json:"state" yaml:"state"`
	Reinitialized bool          `json:"reinitialized" yaml:"reinitialized"`
	StartedAt     time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt    time.Time     `json:"finished_at" yaml:"finished_at"`
}

// Succeeded reports whether the task completed every stage.
func (o TaskOutcome) Succeeded() bool {
	return o.Status == OutcomeSucceeded
}

// Duration is the wall time spent on the task.
func (o TaskOutcome) Duration() time.Duration {
	if o.FinishedAt.IsZero() || o.StartedAt.IsZero() {
		return 0
	}
	return o.FinishedAt.Sub(o.StartedAt)
}
