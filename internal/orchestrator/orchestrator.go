// File: internal/orchestrator/orchestrator.go
// Description: Runs the stage sequence for one task, owning the retry policy
// of the authenticate and navigate phase and the task's final outcome.

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xkilldash9x/courier-cli/api/schemas"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"github.com/xkilldash9x/courier-cli/internal/selector"
	"github.com/xkilldash9x/courier-cli/internal/stages"
	"go.uber.org/zap"
)

// Sessions is the part of the session manager the orchestrator uses.
type Sessions interface {
	EnsureAlive(ctx context.Context) (bool, error)
	IsAlive() bool
	Page() (browser.Page, error)
}

// Pipeline is the ordered set of stages.
type Pipeline struct {
	Authenticate stages.Stage
	Navigate     stages.Stage
	Search       stages.Stage
	Select       stages.Stage
	Upload       stages.Stage
}

// DefaultPipeline wires the standard stages.
func DefaultPipeline() Pipeline {
	return Pipeline{
		Authenticate: stages.Authenticate{},
		Navigate:     stages.Navigate{},
		Search:       stages.Search{},
		Select:       stages.SelectRecord{},
		Upload:       stages.UploadAndSave{},
	}
}

// Options configures the orchestrator.
type Options struct {
	BaseURL     string
	MaxAttempts int
	RetryDelay  time.Duration
	// Rehearsal stops after the record is opened, without uploading.
	Rehearsal   bool
	Settings    stages.Settings
	Timing      stages.Timing
	Diagnostics *Diagnostics
}

// Orchestrator executes tasks one at a time against the shared session.
type Orchestrator struct {
	opts     Options
	sessions Sessions
	resolver *selector.Resolver
	pipeline Pipeline
	logger   *zap.Logger
	now      func() time.Time
}

// New creates an orchestrator.
func New(opts Options, sessions Sessions, resolver *selector.Resolver, pipeline Pipeline, logger *zap.Logger) (*Orchestrator, error) {
	if sessions == nil || resolver == nil || logger == nil {
		return nil, fmt.Errorf("cannot initialize orchestrator with nil dependencies")
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Orchestrator{
		opts:     opts,
		sessions: sessions,
		resolver: resolver,
		pipeline: pipeline,
		logger:   logger.Named("orchestrator"),
		now:      time.Now,
	}, nil
}

// run tracks one task's walk through the workflow states.
type run struct {
	task    schemas.Task
	state   schemas.WorkflowState
	outcome schemas.TaskOutcome
	logger  *zap.Logger
}

func (r *run) enter(next schemas.WorkflowState) {
	if !schemas.CanTransition(r.state, next) {
		r.logger.Error("Invalid workflow transition.", zap.Stringer("from", r.state), zap.Stringer("to", next))
	}
	r.logger.Debug("Workflow state.", zap.Stringer("state", next))
	r.state = next
}

// Run executes the workflow for task. The returned error is non-nil only
// when the session could not be (re)established; every workflow failure is
// reported through the outcome instead.
func (o *Orchestrator) Run(ctx context.Context, task schemas.Task) (schemas.TaskOutcome, error) {
	r := &run{
		task:   task,
		state:  schemas.StateIdle,
		logger: o.logger.With(zap.String("document", task.DocumentName()), zap.String("identifier", task.Identifier)),
	}
	r.outcome = schemas.TaskOutcome{Task: task, StartedAt: o.now()}

	reinit, err := o.sessions.EnsureAlive(ctx)
	r.outcome.Reinitialized = reinit
	if err != nil {
		o.finish(ctx, r, nil, schemas.OutcomeFailed, schemas.KindSessionCrashed, err.Error())
		return r.outcome, err
	}
	if reinit {
		r.logger.Warn("Session was reinitialized; starting from authentication.")
	}
	page, err := o.sessions.Page()
	if err != nil {
		o.finish(ctx, r, nil, schemas.OutcomeFailed, schemas.KindSessionCrashed, err.Error())
		return r.outcome, err
	}

	env := &stages.Env{
		Page:     page,
		Resolver: o.resolver,
		Settings: o.opts.Settings,
		Timing:   o.opts.Timing,
		Logger:   r.logger,
		OnState:  r.enter,
	}

	if err := o.reachListing(ctx, r, env); err != nil {
		o.fail(ctx, r, page, err)
		return r.outcome, nil
	}

	for _, stage := range []stages.Stage{o.pipeline.Search, o.pipeline.Select, o.pipeline.Upload} {
		if o.opts.Rehearsal && stage == o.pipeline.Upload {
			o.finish(ctx, r, page, schemas.OutcomeSucceeded, "", "rehearsal: stopped before upload")
			return r.outcome, nil
		}
		r.enter(stage.State())
		res, err := stage.Execute(ctx, env, task)
		if err != nil {
			o.fail(ctx, r, page, err)
			return r.outcome, nil
		}
		if res.Skipped {
			o.finish(ctx, r, page, schemas.OutcomeSkipped, "", res.Reason)
			return r.outcome, nil
		}
	}

	r.enter(schemas.StateDone)
	o.finish(ctx, r, page, schemas.OutcomeSucceeded, "", "")
	return r.outcome, nil
}

// reachListing loads the application and runs Authenticate and Navigate,
// retrying the pair with a fixed delay.
func (o *Orchestrator) reachListing(ctx context.Context, r *run, env *stages.Env) error {
	var lastErr error
	for attempt := 1; attempt <= o.opts.MaxAttempts; attempt++ {
		lastErr = o.authenticateAndNavigate(ctx, r, env)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil || !o.sessions.IsAlive() || attempt == o.opts.MaxAttempts {
			break
		}
		r.logger.Warn("Authenticate/navigate attempt failed; retrying.",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", o.opts.MaxAttempts),
			zap.Error(lastErr))
		if err := browser.Sleep(ctx, o.opts.RetryDelay); err != nil {
			return err
		}
	}
	return lastErr
}

func (o *Orchestrator) authenticateAndNavigate(ctx context.Context, r *run, env *stages.Env) error {
	r.enter(schemas.StateAuthenticating)
	if err := env.Page.Navigate(ctx, o.opts.BaseURL); err != nil {
		return schemas.NewStageError(schemas.KindNavigationFailure, schemas.StateAuthenticating, "could not load application", err)
	}
	settleCtx, cancel := context.WithTimeout(ctx, settleBound(o.opts.Timing))
	err := env.Page.WaitSettled(settleCtx, o.opts.Timing.SettleQuiet)
	cancel()
	if err != nil {
		r.logger.Debug("Landing page did not settle.", zap.Error(err))
	}

	if _, err := o.pipeline.Authenticate.Execute(ctx, env, r.task); err != nil {
		return err
	}
	r.enter(schemas.StateNavigating)
	_, err = o.pipeline.Navigate.Execute(ctx, env, r.task)
	return err
}

func settleBound(t stages.Timing) time.Duration {
	if t.SettleTimeout > 0 {
		return t.SettleTimeout
	}
	return time.Second
}

// fail classifies err and records a failed outcome. A session that died
// during the stage turns any failure into SessionCrashed.
func (o *Orchestrator) fail(ctx context.Context, r *run, page browser.Page, err error) {
	kind := schemas.KindOf(err)
	if !o.sessions.IsAlive() {
		kind = schemas.KindSessionCrashed
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if ctx.Err() != nil {
			kind = schemas.KindFatal
		}
	}
	o.finish(ctx, r, page, schemas.OutcomeFailed, kind, err.Error())
}

func (o *Orchestrator) finish(ctx context.Context, r *run, page browser.Page, status schemas.OutcomeStatus, kind schemas.ErrorKind, reason string) {
	r.outcome.State = r.state
	if status == schemas.OutcomeFailed {
		r.enter(schemas.StateFailed)
	}
	r.outcome.Status = status
	r.outcome.Kind = kind
	r.outcome.Reason = reason
	r.outcome.FinishedAt = o.now()

	fields := []zap.Field{zap.String("status", string(status)), zap.Duration("duration", r.outcome.Duration())}
	switch status {
	case schemas.OutcomeSucceeded:
		r.logger.Info("Task succeeded.", fields...)
	case schemas.OutcomeSkipped:
		r.logger.Warn("Task skipped.", append(fields, zap.String("reason", reason))...)
	default:
		r.logger.Error("Task failed.", append(fields, zap.String("kind", string(kind)), zap.String("reason", reason))...)
	}

	if status != schemas.OutcomeSucceeded && page != nil && o.opts.Diagnostics != nil {
		o.opts.Diagnostics.Capture(ctx, page, r.task, status)
	}
}
