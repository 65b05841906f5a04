package chrome

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/xkilldash9x/courier-cli/internal/browser"
)

var errNotVisible = errors.New("element is not visible")

// Element is a DOM node of a Page, addressed by its backend node id.
type Element struct {
	page *Page
	node *cdp.Node
}

var _ browser.Element = (*Element)(nil)

// call runs an element script with the node bound as its first argument.
func (e *Element) call(ctx context.Context, script string, res any, args ...any) error {
	return e.page.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithBackendNodeID(e.node.BackendNodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve node: %w", err)
		}
		bind := func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
			return p.WithObjectID(obj.ObjectID)
		}
		return chromedp.CallFunctionOn(browser.BindThis(script), res, bind, args...).Do(ctx)
	}))
}

func (e *Element) Visible(ctx context.Context) (bool, error) {
	var ok bool
	err := e.call(ctx, browser.ScriptVisible, &ok)
	return ok, err
}

func (e *Element) Enabled(ctx context.Context) (bool, error) {
	var ok bool
	err := e.call(ctx, browser.ScriptEnabled, &ok)
	return ok, err
}

func (e *Element) Text(ctx context.Context) (string, error) {
	var s string
	err := e.call(ctx, browser.ScriptText, &s)
	return s, err
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	var res struct {
		OK    bool   `json:"ok"`
		Value string `json:"value"`
	}
	if err := e.call(ctx, browser.ScriptAttribute, &res, name); err != nil {
		return "", false, err
	}
	return res.Value, res.OK, nil
}

func (e *Element) LabelText(ctx context.Context) (string, error) {
	var s string
	err := e.call(ctx, browser.ScriptLabelText, &s)
	return s, err
}

// Click dispatches a real mouse click at the node's center. Without Force
// the node must be visible first.
func (e *Element) Click(ctx context.Context, opts browser.ClickOptions) error {
	if !opts.Force {
		visible, err := e.Visible(ctx)
		if err != nil {
			return err
		}
		if !visible {
			return errNotVisible
		}
	}
	return e.page.run(ctx, chromedp.MouseClickNode(e.node))
}

func (e *Element) ScriptClick(ctx context.Context) error {
	var ok bool
	return e.call(ctx, browser.ScriptClick, &ok)
}

// Fill replaces the value by selecting the field's content and inserting
// text, then falls back to assigning the value from script.
func (e *Element) Fill(ctx context.Context, value string) error {
	var ok bool
	if err := e.call(ctx, browser.ScriptFocus, &ok); err != nil {
		return err
	}
	err := e.page.run(ctx,
		chromedp.Evaluate(`document.activeElement && document.activeElement.select && document.activeElement.select()`, nil),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return input.InsertText(value).Do(ctx)
		}),
	)
	if err == nil {
		return nil
	}
	return e.call(ctx, browser.ScriptFill, &ok, value)
}

func (e *Element) Press(ctx context.Context, key string) error {
	var ok bool
	if err := e.call(ctx, browser.ScriptFocus, &ok); err != nil {
		return err
	}
	return e.page.run(ctx, keyEvent(key))
}

func (e *Element) SetFiles(ctx context.Context, paths ...string) error {
	return e.page.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return dom.SetFileInputFiles(paths).WithBackendNodeID(e.node.BackendNodeID).Do(ctx)
	}))
}
