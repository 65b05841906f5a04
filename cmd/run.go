// File: cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/xkilldash9x/courier-cli/internal/batch"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"github.com/xkilldash9x/courier-cli/internal/browser/chrome"
	"github.com/xkilldash9x/courier-cli/internal/browser/pwdriver"
	"github.com/xkilldash9x/courier-cli/internal/config"
	"github.com/xkilldash9x/courier-cli/internal/observability"
	"github.com/xkilldash9x/courier-cli/internal/orchestrator"
	"github.com/xkilldash9x/courier-cli/internal/reporting"
	"github.com/xkilldash9x/courier-cli/internal/selector"
	"github.com/xkilldash9x/courier-cli/internal/session"
	"github.com/xkilldash9x/courier-cli/internal/stages"
	"github.com/xkilldash9x/courier-cli/internal/store"
	"go.uber.org/zap"
)

// runtimeDeps are the pieces of a run that talk to the outside world.
type runtimeDeps struct {
	launcher func(cfg *config.Config, logger *zap.Logger) (browser.Launcher, func(), error)
	ledger   func(ctx context.Context, url string, logger *zap.Logger) (batch.Recorder, func(), error)
}

func defaultDeps() runtimeDeps {
	return runtimeDeps{launcher: newLauncher, ledger: openLedger}
}

func newRunCmd(deps runtimeDeps) *cobra.Command {
	var (
		folder    string
		baseURL   string
		rehearsal bool
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Upload every document in the input folder",
		Long: `Processes each document in the input folder in sorted order. Every
identifier in a file name is located in the portal and receives the document.
Documents are moved to the done folder when all identifiers succeed and to the
fail folder otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := viperFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("folder") {
				v.Set("input.folder", folder)
			}
			if cmd.Flags().Changed("url") {
				v.Set("target.base_url", baseURL)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				return err
			}
			if rehearsal {
				cfg.ApplyRehearsal()
			}
			return runBatch(cmd.Context(), cfg, deps, cmd.OutOrStdout())
		},
	}

	runCmd.Flags().StringVarP(&folder, "folder", "f", "", "folder containing the documents to upload")
	runCmd.Flags().StringVarP(&baseURL, "url", "u", "", "portal base URL")
	runCmd.Flags().BoolVar(&rehearsal, "rehearsal", false, "visible, slowed run that stops before saving and moves nothing")
	runCmd.Flags().BoolVar(&rehearsal, "dry-run", false, "alias for --rehearsal")
	return runCmd
}

func runBatch(ctx context.Context, cfg *config.Config, deps runtimeDeps, out io.Writer) error {
	logger := observability.GetLogger()
	if cfg.Run.Rehearsal {
		logger.Warn("Rehearsal mode: nothing will be saved and no document will be moved")
	}

	launcher, stop, err := deps.launcher(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to prepare browser engine: %w", err)
	}
	defer stop()

	sessions := session.NewManager(launcher, session.NewFileSnapshotStore(cfg.Browser.StateDir), session.Options{
		CloseTimeout: cfg.Browser.CloseTimeout,
		SlowMo:       cfg.Browser.SlowMo,
	}, logger)

	var diagnostics *orchestrator.Diagnostics
	if cfg.Debug.Screenshots {
		diagnostics = orchestrator.NewDiagnostics(cfg.Debug.ScreenshotDir, cfg.Browser.DefaultTimeout, logger)
	}

	orch, err := orchestrator.New(orchestrator.Options{
		BaseURL:     cfg.Target.BaseURL,
		MaxAttempts: cfg.Retry.MaxAttempts,
		RetryDelay:  cfg.Retry.Delay,
		Rehearsal:   cfg.Run.Rehearsal,
		Settings: stages.Settings{
			Username: cfg.Auth.Username,
			Password: cfg.Auth.Password,
			Year:     cfg.Search.Year,
		},
		Timing:      stages.DefaultTiming(cfg.Browser.DefaultTimeout, cfg.Browser.SettleQuiet, cfg.Browser.SettleTimeout),
		Diagnostics: diagnostics,
	}, sessions, selector.NewResolver(cfg.Browser.ResolveTimeout, logger), orchestrator.DefaultPipeline(), logger)
	if err != nil {
		return err
	}

	var recorder batch.Recorder
	if cfg.Database.URL != "" {
		ledger, closeLedger, err := deps.ledger(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.Warn("Run ledger unavailable, continuing without it", zap.Error(err))
		} else {
			recorder = ledger
			defer closeLedger()
		}
	}

	ctrl, err := batch.NewController(batch.Options{
		Folder:     cfg.Input.Folder,
		DoneDir:    cfg.Input.DoneDir,
		FailDir:    cfg.Input.FailDir,
		Extensions: cfg.Input.Extensions,
		Delimiter:  cfg.Input.Delimiter,
		Rehearsal:  cfg.Run.Rehearsal,
	}, orch, sessions, recorder, logger)
	if err != nil {
		return err
	}

	if err := sessions.Init(ctx); err != nil {
		sessions.Cleanup(context.WithoutCancel(ctx), false)
		return fmt.Errorf("failed to start browser session: %w", err)
	}

	stats, runErr := ctrl.Run(ctx)

	// An interrupted run closes the browser but keeps the previous snapshot.
	sessions.Cleanup(context.WithoutCancel(ctx), ctx.Err() == nil)

	if stats != nil {
		if err := writeReports(cfg, stats, out); err != nil {
			logger.Error("Failed to write run report", zap.Error(err))
		}
	}

	if errors.Is(runErr, batch.ErrSessionLost) {
		return fmt.Errorf("run aborted: %w", runErr)
	}
	return runErr
}

func writeReports(cfg *config.Config, stats *batch.RunStatistics, out io.Writer) error {
	report := stats.Report()
	if err := reporting.NewText(out).Write(report); err != nil {
		return err
	}
	if cfg.Report.Output == "" {
		return nil
	}

	reporter, err := reporting.New(cfg.Report.Format, cfg.Report.Output)
	if err != nil {
		return err
	}
	if err := reporter.Write(report); err != nil {
		reporter.Close()
		return err
	}
	return reporter.Close()
}

func newLauncher(cfg *config.Config, logger *zap.Logger) (browser.Launcher, func(), error) {
	switch cfg.Browser.Engine {
	case config.EngineChromedp:
		return chrome.NewLauncher(chrome.Options{
			Headless: cfg.Browser.Headless,
			ExecPath: cfg.Browser.ChromePath,
			Args:     cfg.Browser.Args,
		}, logger), func() {}, nil
	case config.EnginePlaywright:
		l := pwdriver.NewLauncher(pwdriver.Options{
			Headless: cfg.Browser.Headless,
			ExecPath: cfg.Browser.ChromePath,
			Args:     cfg.Browser.Args,
		}, logger)
		return l, func() {
			if err := l.Stop(); err != nil {
				logger.Warn("Failed to stop playwright driver", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown engine %q", cfg.Browser.Engine)
	}
}

func openLedger(ctx context.Context, url string, logger *zap.Logger) (batch.Recorder, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	ledger, err := store.New(connectCtx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := ledger.EnsureSchema(connectCtx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return ledger, pool.Close, nil
}
