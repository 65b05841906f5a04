// File: cmd/run_test.go
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/courier-cli/internal/batch"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"github.com/xkilldash9x/courier-cli/internal/config"
	"github.com/xkilldash9x/courier-cli/internal/session"
	"github.com/xkilldash9x/courier-cli/internal/testing/fakeapp"
	"go.uber.org/zap"
)

type testDeps struct {
	app      *fakeapp.App
	launches int
	ledgers  int
}

func (d *testDeps) runtime() runtimeDeps {
	return runtimeDeps{
		launcher: func(*config.Config, *zap.Logger) (browser.Launcher, func(), error) {
			d.launches++
			return d.app.Launcher(), func() {}, nil
		},
		ledger: func(context.Context, string, *zap.Logger) (batch.Recorder, func(), error) {
			d.ledgers++
			return nil, nil, errors.New("connection refused")
		},
	}
}

// isolate keeps the host environment and working directory out of the run.
func isolate(t *testing.T) (stateDir string) {
	t.Helper()
	for _, name := range []string{
		"TA_SUMMARY_URL", "PDF_FOLDER", "HEADLESS_MODE", "BROWSER_SLOW_MO", "DEFAULT_TIMEOUT",
		"MAX_RETRY_ATTEMPTS", "RETRY_DELAY_MS", "ENABLE_SCREENSHOTS", "TA_YEAR",
		"COURIER_TARGET_BASE_URL", "COURIER_INPUT_FOLDER", "COURIER_DATABASE_URL", "COURIER_REPORT_OUTPUT",
	} {
		t.Setenv(name, "")
	}
	stateDir = t.TempDir()
	t.Setenv("COURIER_BROWSER_STATE_DIR", stateDir)
	return stateDir
}

func execute(t *testing.T, deps *testDeps, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(deps.runtime())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRun_PlaceholderURLAbortsBeforeLaunch(t *testing.T) {
	isolate(t)
	deps := &testDeps{app: fakeapp.New()}

	_, err := execute(t, deps, "run", "--folder", t.TempDir())

	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrPlaceholderURL)
	assert.Zero(t, deps.launches, "no browser is started for an unconfigured target")
}

func TestRun_EmptyFolderPrintsSummaryAndPersistsSnapshot(t *testing.T) {
	stateDir := isolate(t)
	deps := &testDeps{app: fakeapp.New()}

	out, err := execute(t, deps, "run", "--url", fakeapp.BaseURL, "--folder", t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 1, deps.launches)
	assert.Contains(t, out, "Run summary\n")
	assert.Contains(t, out, "Total documents: 0")
	assert.Contains(t, out, "Success rate:    0%")
	assert.FileExists(t, filepath.Join(stateDir, session.SnapshotFile))
}

func TestRun_DryRunAliasEnablesRehearsal(t *testing.T) {
	isolate(t)
	deps := &testDeps{app: fakeapp.New()}

	out, err := execute(t, deps, "run", "--url", fakeapp.BaseURL, "--folder", t.TempDir(), "--dry-run")

	require.NoError(t, err)
	assert.Contains(t, out, "Run summary (rehearsal)")
}

func TestRun_WritesMachineReadableReport(t *testing.T) {
	isolate(t)
	reportPath := filepath.Join(t.TempDir(), "report.yaml")
	t.Setenv("COURIER_REPORT_OUTPUT", reportPath)
	t.Setenv("COURIER_REPORT_FORMAT", "yaml")
	deps := &testDeps{app: fakeapp.New()}

	_, err := execute(t, deps, "run", "--url", fakeapp.BaseURL, "--folder", t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "total: 0")
}

func TestRun_LedgerFailureIsNotFatal(t *testing.T) {
	isolate(t)
	t.Setenv("COURIER_DATABASE_URL", "postgres://courier@127.0.0.1:1/courier")
	deps := &testDeps{app: fakeapp.New()}

	_, err := execute(t, deps, "run", "--url", fakeapp.BaseURL, "--folder", t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 1, deps.ledgers)
}

func TestRun_LaunchFailureIsReported(t *testing.T) {
	isolate(t)
	app := fakeapp.New()
	deps := &testDeps{app: app}
	launcher := app.Launcher()
	launcher.Err = errors.New("chrome not found")
	rt := deps.runtime()
	rt.launcher = func(*config.Config, *zap.Logger) (browser.Launcher, func(), error) {
		return launcher, func() {}, nil
	}

	root := newRootCommand(rt)
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "run", "--url", fakeapp.BaseURL, "--folder", t.TempDir()})
	err := root.ExecuteContext(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome not found")
}

func TestNewLauncher_RejectsUnknownEngine(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Browser.Engine = "lynx"

	_, _, err := newLauncher(cfg, zap.NewNop())
	assert.Error(t, err)

	cfg.Browser.Engine = config.EngineChromedp
	l, stop, err := newLauncher(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, l)
	stop()
}
