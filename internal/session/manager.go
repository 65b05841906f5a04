// File: internal/session/manager.go
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"go.uber.org/zap"
)

var (
	// ErrNoSession is returned when the session is borrowed before Init.
	ErrNoSession = errors.New("no live session")
	// ErrSessionLive is returned by Init while a session is already owned.
	ErrSessionLive = errors.New("a session is already live")
)

// Options tunes the manager.
type Options struct {
	// CloseTimeout is the hard ceiling on Cleanup's close step.
	CloseTimeout time.Duration
	// SlowMo paces mutating actions when positive.
	SlowMo time.Duration
}

// Info describes the live session.
type Info struct {
	ID        string
	CreatedAt time.Time
	// Restored is true when an authentication snapshot was applied.
	Restored bool
}

// Manager owns the single browsing session of the process.
type Manager struct {
	launcher browser.Launcher
	store    SnapshotStore
	opts     Options
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	page    browser.Page
	info    Info
	reinits int
}

// NewManager builds a manager. store may be nil to disable persistence.
func NewManager(launcher browser.Launcher, store SnapshotStore, opts Options, logger *zap.Logger) *Manager {
	return &Manager{
		launcher: launcher,
		store:    store,
		opts:     opts,
		logger:   logger.Named("session"),
		now:      time.Now,
	}
}

// Init creates a session, applying the persisted snapshot when one loads.
// A snapshot that fails to load is logged and ignored.
func (m *Manager) Init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initLocked(ctx)
}

func (m *Manager) initLocked(ctx context.Context) error {
	if m.page != nil {
		return ErrSessionLive
	}

	var state *browser.StorageState
	if m.store != nil {
		loaded, err := m.store.Load(ctx)
		switch {
		case err != nil:
			m.logger.Warn("Could not load authentication snapshot; starting unauthenticated.", zap.Error(err))
		case loaded.Empty():
			m.logger.Debug("No authentication snapshot to restore.")
		default:
			state = loaded
		}
	}

	page, err := m.launcher.Launch(ctx, browser.LaunchOptions{State: state})
	if err != nil {
		return fmt.Errorf("failed to launch browser session: %w", err)
	}

	m.page = browser.Paced(page, m.opts.SlowMo)
	m.info = Info{ID: uuid.NewString(), CreatedAt: m.now(), Restored: state != nil}
	m.logger.Info("Browser session started.",
		zap.String("session_id", m.info.ID),
		zap.Bool("restored_auth", m.info.Restored))
	return nil
}

// IsAlive reports whether the session is connected and its page is open.
func (m *Manager) IsAlive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aliveLocked()
}

func (m *Manager) aliveLocked() bool {
	return m.page != nil && m.page.Connected() && !m.page.Closed()
}

// EnsureAlive replaces a dead session with a fresh one and reports whether
// it did so.
func (m *Manager) EnsureAlive(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.aliveLocked() {
		return false, nil
	}
	m.logger.Warn("Session is not alive; reinitializing.", zap.String("session_id", m.info.ID))
	m.cleanupLocked(ctx, false)
	m.reinits++
	if err := m.initLocked(ctx); err != nil {
		return true, fmt.Errorf("session reinitialization failed: %w", err)
	}
	return true, nil
}

// Cleanup closes the session. With persist set and the page still open, the
// authentication state is saved first; save failures are logged. Closing is
// abandoned after CloseTimeout.
func (m *Manager) Cleanup(ctx context.Context, persist bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupLocked(ctx, persist)
}

func (m *Manager) cleanupLocked(ctx context.Context, persist bool) {
	page := m.page
	if page == nil {
		return
	}
	m.page = nil

	if persist && m.store != nil && !page.Closed() {
		m.persist(ctx, page)
	}

	done := make(chan error, 1)
	go func() {
		// The close must not inherit a canceled caller context.
		done <- page.Close(context.WithoutCancel(ctx))
	}()

	timer := time.NewTimer(m.opts.CloseTimeout)
	defer timer.Stop()
	select {
	case err := <-done:
		if err != nil {
			m.logger.Warn("Browser session closed with error.", zap.Error(err))
		} else {
			m.logger.Debug("Browser session closed.", zap.String("session_id", m.info.ID))
		}
	case <-timer.C:
		m.logger.Warn("Browser session did not close in time; abandoning it.",
			zap.Duration("timeout", m.opts.CloseTimeout),
			zap.String("session_id", m.info.ID))
	}
}

func (m *Manager) persist(ctx context.Context, page browser.Page) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.opts.CloseTimeout)
	defer cancel()

	state, err := page.StorageState(saveCtx)
	if err != nil {
		m.logger.Warn("Could not capture authentication state.", zap.Error(err))
		return
	}
	state.SavedAt = m.now()
	if err := m.store.Save(saveCtx, state); err != nil {
		m.logger.Warn("Could not persist authentication state.", zap.Error(err))
		return
	}
	m.logger.Info("Authentication state saved.", zap.Int("cookies", len(state.Cookies)))
}

// Page lends the live page to a caller for the duration of one operation.
func (m *Manager) Page() (browser.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.page == nil {
		return nil, ErrNoSession
	}
	return m.page, nil
}

// Info describes the live session.
func (m *Manager) Info() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info
}

// Reinitializations counts sessions replaced by EnsureAlive.
func (m *Manager) Reinitializations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reinits
}
