// File: internal/browser/wait.go
package browser

import (
	"context"
	"time"
)

// DefaultPollInterval is used by Poll when interval is not positive.
const DefaultPollInterval = 200 * time.Millisecond

// Poll calls check until it reports done, returns an error, or ctx ends.
// check runs once immediately.
func Poll(ctx context.Context, interval time.Duration, check func(ctx context.Context) (bool, error)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WaitFor polls page until sel has at least one match and returns the first.
// Query errors count as no match.
func WaitFor(ctx context.Context, page Page, sel Selector, interval time.Duration) (Element, error) {
	var found Element
	err := Poll(ctx, interval, func(ctx context.Context) (bool, error) {
		els, err := page.Query(ctx, sel)
		if err != nil || len(els) == 0 {
			return false, nil
		}
		found = els[0]
		return true, nil
	})
	return found, err
}

// Sleep pauses for d or until ctx ends.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
