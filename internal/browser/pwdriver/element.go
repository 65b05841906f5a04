package pwdriver

import (
	"context"

	"github.com/playwright-community/playwright-go"
	"github.com/xkilldash9x/courier-cli/internal/browser"
)

// Element wraps a locator pinned to one match.
type Element struct {
	loc playwright.Locator
}

var _ browser.Element = (*Element)(nil)

func (e *Element) eval(ctx context.Context, script string, arg any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.loc.Evaluate(script, arg, playwright.LocatorEvaluateOptions{Timeout: timeoutMs(ctx)})
}

func (e *Element) Visible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.loc.IsVisible()
}

func (e *Element) Enabled(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.loc.IsEnabled(playwright.LocatorIsEnabledOptions{Timeout: timeoutMs(ctx)})
}

func (e *Element) Text(ctx context.Context) (string, error) {
	v, err := e.eval(ctx, browser.ScriptText, nil)
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.eval(ctx, browser.ScriptAttribute, name)
	if err != nil {
		return "", false, err
	}
	m, _ := v.(map[string]any)
	ok, _ := m["ok"].(bool)
	value, _ := m["value"].(string)
	return value, ok, nil
}

func (e *Element) LabelText(ctx context.Context) (string, error) {
	v, err := e.eval(ctx, browser.ScriptLabelText, nil)
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

func (e *Element) Click(ctx context.Context, opts browser.ClickOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.loc.Click(playwright.LocatorClickOptions{
		Force:   playwright.Bool(opts.Force),
		Timeout: timeoutMs(ctx),
	})
}

func (e *Element) ScriptClick(ctx context.Context) error {
	_, err := e.eval(ctx, browser.ScriptClick, nil)
	return err
}

func (e *Element) Fill(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.loc.Fill(value, playwright.LocatorFillOptions{Timeout: timeoutMs(ctx)})
}

func (e *Element) Press(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.loc.Press(keyName(key), playwright.LocatorPressOptions{Timeout: timeoutMs(ctx)})
}

func (e *Element) SetFiles(ctx context.Context, paths ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.loc.SetInputFiles(paths, playwright.LocatorSetInputFilesOptions{Timeout: timeoutMs(ctx)})
}
