// File: internal/browser/pacing.go
package browser

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Paced wraps page so every mutating action waits for a shared rate limiter
// first. Reads are not delayed. A non-positive interval returns page as is.
func Paced(page Page, interval time.Duration) Page {
	if interval <= 0 {
		return page
	}
	return &pacedPage{Page: page, limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

type pacedPage struct {
	Page
	limiter *rate.Limiter
}

func (p *pacedPage) Navigate(ctx context.Context, url string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	return p.Page.Navigate(ctx, url)
}

func (p *pacedPage) PressKey(ctx context.Context, key string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	return p.Page.PressKey(ctx, key)
}

func (p *pacedPage) Query(ctx context.Context, sel Selector) ([]Element, error) {
	els, err := p.Page.Query(ctx, sel)
	if err != nil {
		return nil, err
	}
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = &pacedElement{Element: el, limiter: p.limiter}
	}
	return out, nil
}

type pacedElement struct {
	Element
	limiter *rate.Limiter
}

func (e *pacedElement) Click(ctx context.Context, opts ClickOptions) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return err
	}
	return e.Element.Click(ctx, opts)
}

func (e *pacedElement) ScriptClick(ctx context.Context) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return err
	}
	return e.Element.ScriptClick(ctx)
}

func (e *pacedElement) Fill(ctx context.Context, value string) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return err
	}
	return e.Element.Fill(ctx, value)
}

func (e *pacedElement) Press(ctx context.Context, key string) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return err
	}
	return e.Element.Press(ctx, key)
}

func (e *pacedElement) SetFiles(ctx context.Context, paths ...string) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return err
	}
	return e.Element.SetFiles(ctx, paths...)
}
