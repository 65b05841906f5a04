// File: internal/stages/stage.go

// Package stages implements the interaction stages of the upload workflow.
// Each stage drives one phase against the borrowed page and reports success,
// a skip, or a typed *schemas.StageError.
package stages

import (
	"context"
	"errors"
	"time"

	"github.com/xkilldash9x/courier-cli/api/schemas"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"github.com/xkilldash9x/courier-cli/internal/selector"
	"go.uber.org/zap"
)

// Settings are the fixed inputs a stage needs besides the task.
type Settings struct {
	Username string
	Password string
	Year     string
}

// CredentialsConfigured reports whether login can be attempted.
func (s Settings) CredentialsConfigured() bool {
	return s.Username != "" && s.Password != ""
}

// Timing holds the waits stages use. The zero value disables every pause and
// limits element waits to a single resolution attempt.
type Timing struct {
	// Wait bounds waits for elements that appear after an action.
	Wait time.Duration
	// Readiness bounds advisory readiness marker waits.
	Readiness time.Duration
	// SettleQuiet and SettleTimeout parameterize the settle signal.
	SettleQuiet   time.Duration
	SettleTimeout time.Duration
	// AfterClick is the pause following clicks that open new UI.
	AfterClick time.Duration
	// ProbeAttempts and ProbeBackoff bound the search form probe.
	ProbeAttempts int
	ProbeBackoff  time.Duration
}

// DefaultTiming derives stage waits from the process-wide default timeout.
func DefaultTiming(defaultTimeout, settleQuiet, settleTimeout time.Duration) Timing {
	return Timing{
		Wait:          defaultTimeout / 3,
		Readiness:     10 * time.Second,
		SettleQuiet:   settleQuiet,
		SettleTimeout: settleTimeout,
		AfterClick:    time.Second,
		ProbeAttempts: 3,
		ProbeBackoff:  2 * time.Second,
	}
}

// Env is everything a stage borrows for one call. Stages must not keep Page
// beyond the call.
type Env struct {
	Page     browser.Page
	Resolver *selector.Resolver
	Settings Settings
	Timing   Timing
	Logger   *zap.Logger
	// OnState is notified when a stage moves the workflow to a new state
	// internally, e.g. Uploading to Saving.
	OnState func(schemas.WorkflowState)
}

func (e *Env) enter(state schemas.WorkflowState) {
	if e.OnState != nil {
		e.OnState(state)
	}
}

// Result is a stage's non-error outcome.
type Result struct {
	Skipped bool
	Reason  string
}

// Stage is one phase of the workflow.
type Stage interface {
	Name() string
	// State is the workflow state the stage runs in.
	State() schemas.WorkflowState
	Execute(ctx context.Context, env *Env, task schemas.Task) (Result, error)
}

// notFound converts a resolution failure into a typed stage failure.
func notFound(kind schemas.ErrorKind, stage schemas.WorkflowState, role selector.Role, detail string, err error) *schemas.StageError {
	se := &schemas.StageError{
		Kind:       kind,
		Stage:      stage,
		Role:       role.Name,
		Candidates: role.Descriptions(),
		Detail:     detail,
	}
	if err != nil && !errors.Is(err, selector.ErrNotFound) {
		se.Err = err
	}
	return se
}

// settle waits for the page's settle signal within the configured bound.
func settle(ctx context.Context, env *Env) error {
	timeout := env.Timing.SettleTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	settleCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return env.Page.WaitSettled(settleCtx, env.Timing.SettleQuiet)
}

// settleOrWarn tolerates a missing settle signal.
func settleOrWarn(ctx context.Context, env *Env, what string) {
	if err := settle(ctx, env); err != nil {
		env.Logger.Warn("Page did not settle; continuing.", zap.String("after", what), zap.Error(err))
	}
}

func pause(ctx context.Context, d time.Duration) error {
	return browser.Sleep(ctx, d)
}
