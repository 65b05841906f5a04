// File: internal/browser/fakepage/launcher.go
package fakepage

import (
	"context"
	"sync"

	"github.com/xkilldash9x/courier-cli/internal/browser"
)

// Launcher hands out pages built by Factory and records each launch.
type Launcher struct {
	// Factory builds the page for the n-th launch, starting at 0.
	Factory func(n int) *Page
	// Err, when set, fails every launch.
	Err error

	mu       sync.Mutex
	launches []browser.LaunchOptions
	pages    []*Page
}

// Launch implements browser.Launcher.
func (l *Launcher) Launch(ctx context.Context, opts browser.LaunchOptions) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches = append(l.launches, opts)
	if l.Err != nil {
		return nil, l.Err
	}
	page := l.Factory(len(l.pages))
	l.pages = append(l.pages, page)
	return page, nil
}

// Launches returns the options of every launch attempt.
func (l *Launcher) Launches() []browser.LaunchOptions {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]browser.LaunchOptions(nil), l.launches...)
}

// Pages returns every page handed out so far.
func (l *Launcher) Pages() []*Page {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Page(nil), l.pages...)
}
