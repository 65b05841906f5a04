package pwdriver

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"go.uber.org/zap"
)

var keys = map[string]string{
	browser.KeyEnter:  "Enter",
	browser.KeyEscape: "Escape",
	browser.KeyTab:    "Tab",
}

func keyName(key string) string {
	if k, ok := keys[key]; ok {
		return k
	}
	return key
}

// timeoutMs converts ctx's remaining time into a playwright timeout. Without
// a deadline playwright's own default applies.
func timeoutMs(ctx context.Context) *float64 {
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil
	}
	ms := float64(time.Until(deadline).Milliseconds())
	if ms < 1 {
		ms = 1
	}
	return playwright.Float(ms)
}

// selectorString renders sel in playwright's selector syntax.
func selectorString(sel browser.Selector) string {
	switch sel.Kind {
	case browser.KindXPath:
		return "xpath=" + sel.Expr
	case browser.KindText:
		return "xpath=" + browser.TextXPath(sel.Expr)
	default:
		return "css=" + sel.Expr
	}
}

// Page is one playwright page in its own browser.
type Page struct {
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page
	logger  *zap.Logger
}

var _ browser.Page = (*Page)(nil)

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Goto(url, playwright.PageGotoOptions{Timeout: timeoutMs(ctx)})
	return err
}

func (p *Page) Query(ctx context.Context, sel browser.Selector) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	locs, err := p.page.Locator(selectorString(sel)).All()
	if err != nil {
		return nil, err
	}
	els := make([]browser.Element, len(locs))
	for i, l := range locs {
		els[i] = &Element{loc: l}
	}
	return els, nil
}

// WaitSettled waits for playwright's networkidle state. quiet is fixed by
// playwright at 500ms and is not adjustable.
func (p *Page) WaitSettled(ctx context.Context, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: timeoutMs(ctx),
	})
}

func (p *Page) PressKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.page.Keyboard().Press(keyName(key))
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.page.Screenshot(playwright.PageScreenshotOptions{Timeout: timeoutMs(ctx)})
}

func (p *Page) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.URL(), nil
}

func (p *Page) StorageState(ctx context.Context) (*browser.StorageState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, err := p.bctx.StorageState()
	if err != nil {
		return nil, fmt.Errorf("failed to read storage state: %w", err)
	}
	out := fromPlaywrightState(st)
	out.SavedAt = time.Now()
	return out, nil
}

func (p *Page) Connected() bool {
	return p.browser.IsConnected()
}

func (p *Page) Closed() bool {
	return p.page.IsClosed()
}

func (p *Page) Close(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- p.browser.Close() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
