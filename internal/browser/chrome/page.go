package chrome

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"go.uber.org/zap"
)

// ErrClosed is returned by operations on a closed page.
var ErrClosed = errors.New("chrome page is closed")

// Page is one Chrome tab driven through the DevTools protocol.
type Page struct {
	tab         context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	net         *tracker
	logger      *zap.Logger
	closed      atomic.Bool
}

var _ browser.Page = (*Page)(nil)

// run executes actions on the tab, bounded by ctx.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	if p.Closed() {
		return ErrClosed
	}
	runCtx, cancel := combine(p.tab, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *Page) Query(ctx context.Context, sel browser.Selector) ([]browser.Element, error) {
	var nodes []*cdp.Node
	var action chromedp.QueryAction
	switch sel.Kind {
	case browser.KindXPath:
		action = chromedp.Nodes(sel.Expr, &nodes, chromedp.BySearch, chromedp.AtLeast(0))
	case browser.KindText:
		action = chromedp.Nodes(browser.TextXPath(sel.Expr), &nodes, chromedp.BySearch, chromedp.AtLeast(0))
	default:
		action = chromedp.Nodes(sel.Expr, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))
	}
	if err := p.run(ctx, action); err != nil {
		return nil, err
	}
	els := make([]browser.Element, 0, len(nodes))
	for _, n := range nodes {
		if n.NodeType != cdp.NodeTypeElement {
			continue
		}
		els = append(els, &Element{page: p, node: n})
	}
	return els, nil
}

func (p *Page) WaitSettled(ctx context.Context, quiet time.Duration) error {
	if p.Closed() {
		return ErrClosed
	}
	return p.net.waitIdle(ctx, quiet)
}

var keys = map[string]string{
	browser.KeyEnter:  kb.Enter,
	browser.KeyEscape: kb.Escape,
	browser.KeyTab:    kb.Tab,
}

func keyEvent(key string) chromedp.KeyAction {
	if k, ok := keys[key]; ok {
		return chromedp.KeyEvent(k)
	}
	return chromedp.KeyEvent(key)
}

func (p *Page) PressKey(ctx context.Context, key string) error {
	return p.run(ctx, keyEvent(key))
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (p *Page) URL(ctx context.Context) (string, error) {
	var u string
	err := p.run(ctx, chromedp.Location(&u))
	return u, err
}

type localStorage struct {
	Origin       string            `json:"origin"`
	LocalStorage map[string]string `json:"localStorage"`
}

func (p *Page) StorageState(ctx context.Context) (*browser.StorageState, error) {
	var cookies []*network.Cookie
	var ls localStorage
	err := p.run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = network.GetCookies().Do(ctx)
			return err
		}),
		chromedp.Evaluate(browser.ScriptLocalStorage, &ls),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage state: %w", err)
	}

	state := &browser.StorageState{SavedAt: time.Now()}
	for _, c := range cookies {
		state.Cookies = append(state.Cookies, browser.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	if len(ls.LocalStorage) > 0 && ls.Origin != "" && ls.Origin != "null" {
		state.Origins = append(state.Origins, browser.OriginStorage{Origin: ls.Origin, LocalStorage: ls.LocalStorage})
	}
	return state, nil
}

// Connected reports whether the browser behind the tab is still reachable.
func (p *Page) Connected() bool {
	return p.tab.Err() == nil && !p.closed.Load()
}

func (p *Page) Closed() bool {
	return p.closed.Load() || p.tab.Err() != nil
}

// Close shuts the browser down. The close runs on a context detached from
// the tab so an already canceled caller still terminates Chrome.
func (p *Page) Close(ctx context.Context) error {
	if p.closed.Swap(true) && p.tab.Err() != nil {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- chromedp.Cancel(p.tab) }()
	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	p.tabCancel()
	p.allocCancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
