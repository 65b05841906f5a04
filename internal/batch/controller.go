// File: internal/batch/controller.go
// Description: Maps input documents to tasks, drives them through the
// workflow one at a time and places each document in its terminal folder.

package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xkilldash9x/courier-cli/api/schemas"
	"go.uber.org/zap"
)

// ErrSessionLost aborts a run whose session could not be re-established.
// The current and remaining documents stay in the input folder.
var ErrSessionLost = errors.New("session lost")

// Runner executes the workflow for one task.
type Runner interface {
	Run(ctx context.Context, task schemas.Task) (schemas.TaskOutcome, error)
}

// Sessions is the liveness part of the session manager.
type Sessions interface {
	IsAlive() bool
	EnsureAlive(ctx context.Context) (bool, error)
}

// Recorder persists run progress. Implementations may be slow or fail; the
// controller only logs their errors.
type Recorder interface {
	StartRun(ctx context.Context, runID string, startedAt time.Time, rehearsal bool) error
	RecordOutcome(ctx context.Context, runID string, outcome schemas.TaskOutcome) error
	FinishRun(ctx context.Context, report *schemas.RunReport) error
}

// Options configures a run.
type Options struct {
	Folder     string
	DoneDir    string
	FailDir    string
	Extensions []string
	Delimiter  string
	// Rehearsal leaves documents in place.
	Rehearsal bool
}

// Controller is the batch loop. It owns the run's statistics.
type Controller struct {
	opts     Options
	runner   Runner
	sessions Sessions
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewController builds a controller. recorder may be nil.
func NewController(opts Options, runner Runner, sessions Sessions, recorder Recorder, logger *zap.Logger) (*Controller, error) {
	if runner == nil || sessions == nil || logger == nil {
		return nil, fmt.Errorf("cannot initialize batch controller with nil dependencies")
	}
	return &Controller{
		opts:     opts,
		runner:   runner,
		sessions: sessions,
		recorder: recorder,
		logger:   logger.Named("batch"),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}, nil
}

// Run processes every document in the input folder and returns the run's
// statistics. The error is non-nil when the folder cannot be read or the
// run was aborted; statistics are returned either way once scanning worked.
func (c *Controller) Run(ctx context.Context) (*RunStatistics, error) {
	docs, err := Scan(c.opts.Folder, c.opts.Extensions)
	if err != nil {
		return nil, err
	}
	stats := &RunStatistics{RunID: c.newID(), Rehearsal: c.opts.Rehearsal, StartedAt: c.now(), Found: len(docs)}
	c.logger.Info("Batch started.",
		zap.String("run_id", stats.RunID),
		zap.String("folder", c.opts.Folder),
		zap.Int("documents", len(docs)),
		zap.Bool("rehearsal", c.opts.Rehearsal))
	if len(docs) == 0 {
		c.logger.Warn("No documents found in the input folder.")
	}
	c.record(func(r Recorder) error { return r.StartRun(ctx, stats.RunID, stats.StartedAt, stats.Rehearsal) })

	runErr := c.loop(ctx, docs, stats)
	if runErr != nil {
		stats.Aborted = runErr.Error()
	}
	stats.FinishedAt = c.now()
	report := stats.Report()
	c.record(func(r Recorder) error { return r.FinishRun(context.WithoutCancel(ctx), report) })

	c.logger.Info("Batch finished.",
		zap.Int("total", stats.Total),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
		zap.Duration("duration", report.Duration()))
	return stats, runErr
}

func (c *Controller) loop(ctx context.Context, docs []string, stats *RunStatistics) error {
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.logger.Info("Processing document.",
			zap.String("document", filepath.Base(doc)),
			zap.Int("position", i+1),
			zap.Int("of", len(docs)))

		if err := c.processDocument(ctx, doc, stats); err != nil {
			return err
		}

		// A crash on the last document needs no new session.
		if i == len(docs)-1 || c.sessions.IsAlive() {
			continue
		}
		c.logger.Warn("Session closed; reinitializing before the next document.")
		if _, err := c.sessions.EnsureAlive(ctx); err != nil {
			c.logger.Error("Session reinitialization failed; aborting batch.",
				zap.Int("unprocessed", len(docs)-i-1), zap.Error(err))
			return fmt.Errorf("%w: %v", ErrSessionLost, err)
		}
	}
	return nil
}

// processDocument runs every identifier of doc in declared order, then moves
// doc to the done folder iff all of them succeeded.
func (c *Controller) processDocument(ctx context.Context, doc string, stats *RunStatistics) error {
	name := filepath.Base(doc)
	log := c.logger.With(zap.String("document", name))
	ids := SplitIdentifiers(doc, c.opts.Delimiter)

	rec := newDocumentRecord(name)
	if len(ids) == 0 {
		log.Error("No identifier in file name.")
		rec.fail("", schemas.KindFatal, "no identifier in file name")
	}

	for idx, id := range ids {
		task := schemas.Task{ID: c.newID(), Document: doc, Identifier: id, Index: idx}
		outcome, err := c.runner.Run(ctx, task)
		if err != nil {
			log.Error("Session unavailable; leaving document in place.", zap.String("identifier", id), zap.Error(err))
			return fmt.Errorf("%w: %v", ErrSessionLost, err)
		}
		c.record(func(r Recorder) error { return r.RecordOutcome(ctx, stats.RunID, outcome) })
		rec.task(outcome)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	stats.commit(rec)
	c.place(log, doc, rec.succeeded)
	return nil
}

func (c *Controller) place(log *zap.Logger, doc string, succeeded bool) {
	dir, label := c.opts.FailDir, "failed"
	if succeeded {
		dir, label = c.opts.DoneDir, "succeeded"
	}
	if c.opts.Rehearsal {
		log.Info("Document " + label + "; rehearsal leaves it in place.")
		return
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(c.opts.Folder, dir)
	}
	dst, err := MoveUnique(doc, dir)
	if err != nil {
		log.Error("Could not move document.", zap.Error(err))
		return
	}
	log.Info("Document "+label+".", zap.String("moved_to", dst))
}

func (c *Controller) record(fn func(Recorder) error) {
	if c.recorder == nil {
		return
	}
	if err := fn(c.recorder); err != nil {
		c.logger.Warn("Run ledger write failed.", zap.Error(err))
	}
}
