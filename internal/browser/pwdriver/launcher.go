// internal/browser/pwdriver/launcher.go
package pwdriver

import (
	"context"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"go.uber.org/zap"
)

// Options configures the Chromium instance playwright launches.
type Options struct {
	Headless bool
	ExecPath string
	Args     []string
}

// Launcher drives Chromium through playwright. The driver process is started
// lazily on the first launch and shared by later sessions.
type Launcher struct {
	opts   Options
	logger *zap.Logger

	mu sync.Mutex
	pw *playwright.Playwright
}

// NewLauncher returns a playwright launcher.
func NewLauncher(opts Options, logger *zap.Logger) *Launcher {
	return &Launcher{opts: opts, logger: logger.Named("playwright")}
}

func (l *Launcher) driver() (*playwright.Playwright, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pw != nil {
		return l.pw, nil
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright driver: %w", err)
	}
	l.pw = pw
	return pw, nil
}

// launchOptions maps Options onto playwright's launch options.
func (l *Launcher) launchOptions() playwright.BrowserTypeLaunchOptions {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.opts.Headless),
		Args:     append([]string{"--start-maximized"}, l.opts.Args...),
	}
	if l.opts.ExecPath != "" {
		opts.ExecutablePath = playwright.String(l.opts.ExecPath)
	}
	return opts
}

// Launch implements browser.Launcher.
func (l *Launcher) Launch(ctx context.Context, opts browser.LaunchOptions) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pw, err := l.driver()
	if err != nil {
		return nil, err
	}
	b, err := pw.Chromium.Launch(l.launchOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to launch chromium: %w", err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{NoViewport: playwright.Bool(true)}
	if !opts.State.Empty() {
		ctxOpts.StorageState = toPlaywrightState(opts.State)
	}
	bctx, err := b.NewContext(ctxOpts)
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	pg, err := bctx.NewPage()
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	return &Page{browser: b, bctx: bctx, page: pg, logger: l.logger}, nil
}

// Stop terminates the shared driver process.
func (l *Launcher) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pw == nil {
		return nil
	}
	err := l.pw.Stop()
	l.pw = nil
	return err
}

func toPlaywrightState(s *browser.StorageState) *playwright.OptionalStorageState {
	out := &playwright.OptionalStorageState{}
	for _, c := range s.Cookies {
		oc := playwright.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   playwright.String(c.Domain),
			Path:     playwright.String(c.Path),
			HttpOnly: playwright.Bool(c.HTTPOnly),
			Secure:   playwright.Bool(c.Secure),
		}
		if c.Expires > 0 {
			oc.Expires = playwright.Float(c.Expires)
		}
		out.Cookies = append(out.Cookies, oc)
	}
	for _, o := range s.Origins {
		origin := playwright.Origin{Origin: o.Origin}
		for k, v := range o.LocalStorage {
			origin.LocalStorage = append(origin.LocalStorage, playwright.NameValue{Name: k, Value: v})
		}
		out.Origins = append(out.Origins, origin)
	}
	return out
}

func fromPlaywrightState(s *playwright.StorageState) *browser.StorageState {
	out := &browser.StorageState{}
	for _, c := range s.Cookies {
		bc := browser.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != nil {
			bc.SameSite = string(*c.SameSite)
		}
		out.Cookies = append(out.Cookies, bc)
	}
	for _, o := range s.Origins {
		ls := make(map[string]string, len(o.LocalStorage))
		for _, nv := range o.LocalStorage {
			ls[nv.Name] = nv.Value
		}
		out.Origins = append(out.Origins, browser.OriginStorage{Origin: o.Origin, LocalStorage: ls})
	}
	return out
}
