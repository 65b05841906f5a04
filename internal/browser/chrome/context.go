// internal/browser/chrome/context.go
package chrome

import (
	"context"
)

// combine derives a context from tab, which carries the chromedp target,
// that is also canceled when op is. Values come from tab only.
func combine(tab, op context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(tab)
	if deadline, ok := op.Deadline(); ok {
		var dlCancel context.CancelFunc
		combined, dlCancel = context.WithDeadline(combined, deadline)
		base := cancel
		cancel = func() { dlCancel(); base() }
	}
	go func() {
		select {
		case <-op.Done():
			cancel()
		case <-combined.Done():
		}
	}()
	return combined, cancel
}
