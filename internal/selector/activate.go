// File: internal/selector/activate.go
package selector

import (
	"context"
	"errors"
	"fmt"

	"github.com/xkilldash9x/courier-cli/internal/browser"
)

// Method is one way of triggering a control.
type Method int

const (
	DirectClick Method = iota
	ForcedClick
	ScriptClick
	KeyEnter
	KeyEscape
)

var methodNames = [...]string{"direct click", "forced click", "script click", "Enter key", "Escape key"}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Escalating tries every method, ending with the keyboard fallbacks.
var Escalating = []Method{DirectClick, ForcedClick, ScriptClick, KeyEnter, KeyEscape}

// Clicks tries only the pointer and script methods.
var Clicks = []Method{DirectClick, ForcedClick, ScriptClick}

var errNoElement = errors.New("no element to act on")

// Activate triggers a control by trying methods in order and returns the
// first one that completed without error. el may be nil, in which case only
// keyboard methods can succeed.
func Activate(ctx context.Context, page browser.Page, el browser.Element, methods ...Method) (Method, error) {
	if len(methods) == 0 {
		methods = Clicks
	}
	var errs []error
	for _, m := range methods {
		if err := ctx.Err(); err != nil {
			return m, err
		}
		err := apply(ctx, page, el, m)
		if err == nil {
			return m, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", m, err))
	}
	return methods[len(methods)-1], fmt.Errorf("all activation methods failed: %w", errors.Join(errs...))
}

func apply(ctx context.Context, page browser.Page, el browser.Element, m Method) error {
	switch m {
	case KeyEnter:
		return page.PressKey(ctx, browser.KeyEnter)
	case KeyEscape:
		return page.PressKey(ctx, browser.KeyEscape)
	}
	if el == nil {
		return errNoElement
	}
	switch m {
	case DirectClick:
		return el.Click(ctx, browser.ClickOptions{})
	case ForcedClick:
		return el.Click(ctx, browser.ClickOptions{Force: true})
	case ScriptClick:
		return el.ScriptClick(ctx)
	default:
		return fmt.Errorf("unknown activation method %d", int(m))
	}
}
