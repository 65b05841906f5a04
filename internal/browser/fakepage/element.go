// File: internal/browser/fakepage/element.go
package fakepage

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xkilldash9x/courier-cli/internal/browser"
)

// Element implements browser.Element over a goquery node.
type Element struct {
	page *Page
	doc  *goquery.Document
	sel  *goquery.Selection
}

// Selection exposes the underlying node.
func (e *Element) Selection() *goquery.Selection { return e.sel }

func (e *Element) live() error {
	if err := e.page.checkOpen(); err != nil {
		return err
	}
	e.page.mu.Lock()
	current := e.page.doc
	e.page.mu.Unlock()
	if current != e.doc {
		return ErrStale
	}
	return nil
}

// name identifies the element in the event log.
func (e *Element) name() string {
	for _, attr := range []string{"id", "name", "data-testid"} {
		if v, ok := e.sel.Attr(attr); ok && v != "" {
			return v
		}
	}
	return goquery.NodeName(e.sel)
}

func (e *Element) Visible(ctx context.Context) (bool, error) {
	if err := e.live(); err != nil {
		return false, err
	}
	if goquery.NodeName(e.sel) == "input" && strings.EqualFold(e.sel.AttrOr("type", ""), "hidden") {
		return false, nil
	}
	hidden := false
	for s := e.sel; s.Length() > 0 && !hidden; s = s.Parent() {
		if _, ok := s.Attr("hidden"); ok {
			hidden = true
		}
		style := strings.ReplaceAll(strings.ToLower(s.AttrOr("style", "")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			hidden = true
		}
	}
	return !hidden, nil
}

func (e *Element) Enabled(ctx context.Context) (bool, error) {
	if err := e.live(); err != nil {
		return false, err
	}
	_, disabled := e.sel.Attr("disabled")
	return !disabled && e.sel.AttrOr("aria-disabled", "") != "true", nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	if err := e.live(); err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(e.sel.Text()), " "), nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	if err := e.live(); err != nil {
		return "", false, err
	}
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

// LabelText resolves label[for=id], then an enclosing label, then the first
// label inside the grandparent, then the grandparent's text.
func (e *Element) LabelText(ctx context.Context) (string, error) {
	if err := e.live(); err != nil {
		return "", err
	}
	clean := func(s string) string { return strings.Join(strings.Fields(s), " ") }
	if id, ok := e.sel.Attr("id"); ok && id != "" {
		if l := e.doc.Find(`label[for="` + id + `"]`); l.Length() > 0 {
			return clean(l.First().Text()), nil
		}
	}
	if l := e.sel.Closest("label"); l.Length() > 0 {
		return clean(l.Text()), nil
	}
	if aria, ok := e.sel.Attr("aria-label"); ok {
		return clean(aria), nil
	}
	box := e.sel.Parent().Parent()
	if box.Length() == 0 {
		return "", nil
	}
	if l := box.Find("label"); l.Length() > 0 {
		return clean(l.First().Text()), nil
	}
	return clean(box.Text()), nil
}

func (e *Element) act(action Action, arg string) error {
	if err := e.live(); err != nil {
		return err
	}
	e.page.record(Event{Action: action, Target: e.name(), Arg: arg})
	return e.page.dispatch(action, e.sel, arg)
}

// Click fails on hidden or disabled elements unless forced.
func (e *Element) Click(ctx context.Context, opts browser.ClickOptions) error {
	if err := e.live(); err != nil {
		return err
	}
	if opts.Force {
		return e.act(ActionForceClick, "")
	}
	visible, _ := e.Visible(ctx)
	enabled, _ := e.Enabled(ctx)
	if !visible || !enabled {
		return errNotActionable
	}
	return e.act(ActionClick, "")
}

func (e *Element) ScriptClick(ctx context.Context) error {
	return e.act(ActionScriptClick, "")
}

func (e *Element) Fill(ctx context.Context, value string) error {
	if err := e.act(ActionFill, value); err != nil {
		return err
	}
	e.sel.SetAttr("value", value)
	return nil
}

func (e *Element) Press(ctx context.Context, key string) error {
	return e.act(ActionPress, key)
}

func (e *Element) SetFiles(ctx context.Context, paths ...string) error {
	if err := e.act(ActionSetFiles, strings.Join(paths, ",")); err != nil {
		return err
	}
	e.sel.SetAttr("data-files", strings.Join(paths, ","))
	return nil
}

type actionError string

func (e actionError) Error() string { return string(e) }

const errNotActionable = actionError("element is not visible or not enabled")
