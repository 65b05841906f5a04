// File: internal/selector/resolver.go
package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xkilldash9x/courier-cli/internal/browser"
	"go.uber.org/zap"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("no candidate matched")

// Candidate describes one way of locating the element for a role.
type Candidate struct {
	Selector browser.Selector
	// Where must all hold for a match to qualify.
	Where []Predicate
	// AllowHidden accepts invisible matches, e.g. styled-away file inputs.
	AllowHidden bool
}

// C is shorthand for a candidate with optional predicates.
func C(sel browser.Selector, where ...Predicate) Candidate {
	return Candidate{Selector: sel, Where: where}
}

func (c Candidate) String() string {
	if len(c.Where) == 0 {
		return c.Selector.String()
	}
	names := make([]string, len(c.Where))
	for i, p := range c.Where {
		names[i] = p.Name
	}
	return fmt.Sprintf("%s [%s]", c.Selector, strings.Join(names, ", "))
}

// Role is a semantic UI element and its ordered candidates.
type Role struct {
	Name       string
	Candidates []Candidate
}

// Descriptions lists the candidates in declared order.
func (r Role) Descriptions() []string {
	out := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		out[i] = c.String()
	}
	return out
}

// NotFoundError reports a role for which no candidate yielded a qualifying
// element.
type NotFoundError struct {
	Role  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no element found for %q after %d candidates", e.Role, len(e.Tried))
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Match is a resolved element and the candidate that found it.
type Match struct {
	Element   browser.Element
	Candidate Candidate
	Index     int
}

// Resolver finds elements for roles. It holds no per-page state.
type Resolver struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewResolver returns a resolver bounding each Resolve call by timeout.
func NewResolver(timeout time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{timeout: timeout, logger: logger.Named("selector")}
}

// Resolve walks role's candidates once, in order, and returns the first
// visible element satisfying the candidate's predicates. Query and predicate
// errors count as no match. The first qualifying candidate wins.
func (r *Resolver) Resolve(ctx context.Context, page browser.Page, role Role) (*Match, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	for i, cand := range role.Candidates {
		if ctx.Err() != nil {
			break
		}
		els, err := page.Query(ctx, cand.Selector)
		if err != nil {
			r.logger.Debug("Candidate query failed; treating as no match.",
				zap.String("role", role.Name), zap.Stringer("selector", cand.Selector), zap.Error(err))
			continue
		}
		for _, el := range els {
			if r.qualifies(ctx, el, cand) {
				r.logger.Debug("Resolved role.", zap.String("role", role.Name), zap.Int("candidate", i), zap.Stringer("selector", cand.Selector))
				return &Match{Element: el, Candidate: cand, Index: i}, nil
			}
		}
	}
	return nil, &NotFoundError{Role: role.Name, Tried: role.Descriptions()}
}

func (r *Resolver) qualifies(ctx context.Context, el browser.Element, cand Candidate) bool {
	if !cand.AllowHidden {
		visible, err := el.Visible(ctx)
		if err != nil || !visible {
			return false
		}
	}
	for _, p := range cand.Where {
		ok, err := p.Match(ctx, el)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// Present reports the first candidate of role with at least one match,
// ignoring visibility and predicates. It suits indicators that may render
// collapsed or off-screen.
func (r *Resolver) Present(ctx context.Context, page browser.Page, role Role) (Candidate, bool) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	for _, cand := range role.Candidates {
		if ctx.Err() != nil {
			break
		}
		els, err := page.Query(ctx, cand.Selector)
		if err == nil && len(els) > 0 {
			return cand, true
		}
	}
	return Candidate{}, false
}

// Await repeats Resolve until it succeeds or within elapses. The first
// attempt always runs; each attempt is a fresh resolution.
func (r *Resolver) Await(ctx context.Context, page browser.Page, role Role, within time.Duration) (*Match, error) {
	match, lastErr := r.Resolve(ctx, page, role)
	if lastErr == nil || within <= 0 {
		return match, lastErr
	}

	waitCtx, cancel := context.WithTimeout(ctx, within)
	defer cancel()
	_ = browser.Poll(waitCtx, browser.DefaultPollInterval, func(pollCtx context.Context) (bool, error) {
		m, err := r.Resolve(pollCtx, page, role)
		if err != nil {
			lastErr = err
			return false, nil
		}
		match = m
		return true, nil
	})
	if match != nil {
		return match, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, lastErr
}
