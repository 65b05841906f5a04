// internal/browser/chrome/launcher.go
package chrome

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/inspector"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"go.uber.org/zap"
)

// Launcher starts a local Chrome per session through chromedp.
type Launcher struct {
	opts   Options
	logger *zap.Logger
}

// NewLauncher returns a chromedp launcher.
func NewLauncher(opts Options, logger *zap.Logger) *Launcher {
	return &Launcher{opts: opts, logger: logger.Named("chromedp")}
}

// Launch implements browser.Launcher. The browser's lifetime is independent
// of ctx, which only bounds startup.
func (l *Launcher) Launch(ctx context.Context, opts browser.LaunchOptions) (browser.Page, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), AllocatorOptions(l.opts)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(l.logger.Sugar().Debugf),
		chromedp.WithErrorf(l.logger.Sugar().Debugf))

	p := &Page{
		tab:         tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		net:         newTracker(),
		logger:      l.logger,
	}
	chromedp.ListenTarget(tabCtx, p.onEvent)

	startCtx, cancel := combine(tabCtx, ctx)
	defer cancel()
	if err := chromedp.Run(startCtx, network.Enable()); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}
	if !opts.State.Empty() {
		if err := chromedp.Run(startCtx, restoreState(opts.State)); err != nil {
			l.logger.Warn("Could not apply authentication snapshot.", zap.Error(err))
		}
	}
	return p, nil
}

func (p *Page) onEvent(ev any) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		p.net.started(e.RequestID)
	case *network.EventLoadingFinished:
		p.net.finished(e.RequestID)
	case *network.EventLoadingFailed:
		p.net.finished(e.RequestID)
	case *inspector.EventDetached:
		p.logger.Warn("Browser target detached.", zap.String("reason", string(e.Reason)))
		p.closed.Store(true)
	case *inspector.EventTargetCrashed:
		p.logger.Error("Browser target crashed.")
		p.closed.Store(true)
	}
}

func restoreState(state *browser.StorageState) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		params := make([]*network.CookieParam, 0, len(state.Cookies))
		for _, c := range state.Cookies {
			cp := &network.CookieParam{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Secure:   c.Secure,
				HTTPOnly: c.HTTPOnly,
			}
			if c.SameSite != "" {
				cp.SameSite = network.CookieSameSite(c.SameSite)
			}
			if c.Expires > 0 {
				sec := int64(c.Expires)
				exp := cdp.TimeSinceEpoch(time.Unix(sec, 0))
				cp.Expires = &exp
			}
			params = append(params, cp)
		}
		if len(params) > 0 {
			if err := network.SetCookies(params).Do(ctx); err != nil {
				return fmt.Errorf("failed to set cookies: %w", err)
			}
		}
		if len(state.Origins) == 0 {
			return nil
		}
		script, err := browser.RestoreStorageScript(state.Origins)
		if err != nil {
			return err
		}
		_, err = page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
		return err
	})
}
