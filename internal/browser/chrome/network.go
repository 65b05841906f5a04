package chrome

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
)

const idleCheckFrequency = 100 * time.Millisecond

// tracker counts in-flight requests of one tab.
type tracker struct {
	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
}

func newTracker() *tracker {
	return &tracker{inflight: make(map[network.RequestID]struct{})}
}

func (t *tracker) started(id network.RequestID) {
	t.mu.Lock()
	t.inflight[id] = struct{}{}
	t.mu.Unlock()
}

func (t *tracker) finished(id network.RequestID) {
	t.mu.Lock()
	delete(t.inflight, id)
	t.mu.Unlock()
}

func (t *tracker) active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}

// waitIdle blocks until no request has been in flight for quiet.
func (t *tracker) waitIdle(ctx context.Context, quiet time.Duration) error {
	timer := time.NewTimer(quiet)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()
	idle := false

	ticker := time.NewTicker(idleCheckFrequency)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if t.active() > 0 {
				if idle {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					idle = false
				}
			} else if !idle {
				timer.Reset(quiet)
				idle = true
			}
		case <-timer.C:
			return nil
		}
	}
}
