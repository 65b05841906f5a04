// File: internal/stages/helpers_test.go
package stages

import (
	"context"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/courier-cli/api/schemas"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"github.com/xkilldash9x/courier-cli/internal/selector"
	"github.com/xkilldash9x/courier-cli/internal/testing/fakeapp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type goquerySel = goquery.Selection

type fixture struct {
	app    *fakeapp.App
	env    *Env
	logs   *observer.ObservedLogs
	states []schemas.WorkflowState
}

func newFixture(t *testing.T, page browser.Page) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	f := &fixture{logs: logs}
	f.env = &Env{
		Page:     page,
		Resolver: selector.NewResolver(time.Second, logger),
		Settings: Settings{Username: "user", Password: "pass", Year: "2025"},
		Logger:   logger,
		OnState:  func(s schemas.WorkflowState) { f.states = append(f.states, s) },
	}
	return f
}

// appFixture opens the fake application's entry page.
func appFixture(t *testing.T) (*fixture, *fakeapp.App) {
	t.Helper()
	app := fakeapp.New()
	page := app.NewPage()
	require.NoError(t, page.Navigate(context.Background(), fakeapp.BaseURL))
	f := newFixture(t, page)
	f.app = app
	return f, app
}

func task(identifier string) schemas.Task {
	return schemas.Task{ID: "t-" + identifier, Document: "/in/" + identifier + ".pdf", Identifier: identifier}
}

// advance runs stages in order and fails the test on any error or skip.
func (f *fixture) advance(t *testing.T, tk schemas.Task, stages ...Stage) {
	t.Helper()
	for _, s := range stages {
		res, err := s.Execute(context.Background(), f.env, tk)
		require.NoError(t, err, "stage %s", s.Name())
		require.False(t, res.Skipped, "stage %s skipped: %s", s.Name(), res.Reason)
	}
}

func (f *fixture) warned(msg string) bool {
	return f.logs.FilterLevelExact(zapcore.WarnLevel).FilterMessage(msg).Len() > 0
}

func requireKind(t *testing.T, err error, kind schemas.ErrorKind) *schemas.StageError {
	t.Helper()
	require.Error(t, err)
	var se *schemas.StageError
	require.ErrorAs(t, err, &se)
	require.Equal(t, kind, se.Kind, "error: %v", err)
	return se
}
