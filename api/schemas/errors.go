package schemas

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies failures across the workflow.
type ErrorKind string

const (
	KindElementNotFound       ErrorKind = "ELEMENT_NOT_FOUND"
	KindAuthenticationFailure ErrorKind = "AUTHENTICATION_FAILURE"
	KindNavigationFailure     ErrorKind = "NAVIGATION_FAILURE"
	KindUploadFailure         ErrorKind = "UPLOAD_FAILURE"
	KindSessionCrashed        ErrorKind = "SESSION_CRASHED"
	KindFatal                 ErrorKind = "FATAL"
)

// StageError is the typed failure raised by an interaction stage. Role and
// Candidates identify the UI control that could not be resolved, when the
// failure came from resolution.
type StageError struct {
	Kind       ErrorKind
	Stage      WorkflowState
	Role       string
	Candidates []string
	Detail     string
	Err        error
}

func (e *StageError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s during %s", e.Kind, e.Stage)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Role != "" {
		fmt.Fprintf(&b, " (role %q", e.Role)
		if len(e.Candidates) > 0 {
			fmt.Fprintf(&b, ", tried %s", strings.Join(e.Candidates, " | "))
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError builds a StageError without role information.
func NewStageError(kind ErrorKind, stage WorkflowState, detail string, err error) *StageError {
	return &StageError{Kind: kind, Stage: stage, Detail: detail, Err: err}
}

// KindOf extracts the ErrorKind carried by err, or KindFatal when err is not a
// StageError.
func KindOf(err error) ErrorKind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindFatal
}

// StageOf extracts the state at which err was raised, or StateIdle.
func StageOf(err error) WorkflowState {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return StateIdle
}
