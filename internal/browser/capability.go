// File: internal/browser/capability.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SelectorKind tells an engine how to interpret a selector expression.
type SelectorKind int

const (
	KindCSS SelectorKind = iota
	KindXPath
	// KindText matches elements owning a text node that contains Expr.
	KindText
)

// Selector is an engine-neutral element query.
type Selector struct {
	Kind SelectorKind
	Expr string
}

// CSS, XPath and Text build selectors of the matching kind.
func CSS(expr string) Selector   { return Selector{Kind: KindCSS, Expr: expr} }
func XPath(expr string) Selector { return Selector{Kind: KindXPath, Expr: expr} }
func Text(expr string) Selector  { return Selector{Kind: KindText, Expr: expr} }

func (s Selector) String() string {
	switch s.Kind {
	case KindXPath:
		return "xpath=" + s.Expr
	case KindText:
		return "text=" + s.Expr
	default:
		return s.Expr
	}
}

// TextXPath renders a text selector as XPath for engines without a native
// text query.
func TextXPath(text string) string {
	return fmt.Sprintf("//*[text()[contains(normalize-space(.), %s)]]", xpathLiteral(text))
}

func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	return `concat("` + strings.Join(parts, `", '"', "`) + `")`
}

// Key names understood by PressKey and Element.Press.
const (
	KeyEnter  = "Enter"
	KeyEscape = "Escape"
	KeyTab    = "Tab"
)

// ClickOptions tunes a pointer click.
type ClickOptions struct {
	// Force skips the engine's actionability checks.
	Force bool
}

// Element is a handle to one node in the current page.
type Element interface {
	Visible(ctx context.Context) (bool, error)
	Enabled(ctx context.Context) (bool, error)
	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, bool, error)
	// LabelText returns the text of the label associated with the element,
	// falling back to the nearest enclosing label-like container.
	LabelText(ctx context.Context) (string, error)
	Click(ctx context.Context, opts ClickOptions) error
	ScriptClick(ctx context.Context) error
	Fill(ctx context.Context, value string) error
	Press(ctx context.Context, key string) error
	SetFiles(ctx context.Context, paths ...string) error
}

// Page is one live browsing session: a browser plus its single active page.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// Query returns every element matching sel. Zero matches is not an error.
	Query(ctx context.Context, sel Selector) ([]Element, error)
	// WaitSettled blocks until network activity has been quiet for quiet,
	// or ctx ends.
	WaitSettled(ctx context.Context, quiet time.Duration) error
	PressKey(ctx context.Context, key string) error
	Screenshot(ctx context.Context) ([]byte, error)
	URL(ctx context.Context) (string, error)
	StorageState(ctx context.Context) (*StorageState, error)
	Connected() bool
	Closed() bool
	Close(ctx context.Context) error
}

// LaunchOptions configures a new session.
type LaunchOptions struct {
	// State, when set, is applied before the first navigation.
	State *StorageState
}

// Launcher opens browsing sessions.
type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) (Page, error)
}

// Cookie is an engine-neutral browser cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// OriginStorage is the local storage of one origin.
type OriginStorage struct {
	Origin       string            `json:"origin"`
	LocalStorage map[string]string `json:"localStorage"`
}

// StorageState is the authentication snapshot of a session.
type StorageState struct {
	Cookies []Cookie        `json:"cookies"`
	Origins []OriginStorage `json:"origins"`
	SavedAt time.Time       `json:"savedAt"`
}

// Empty reports whether the snapshot carries nothing worth restoring.
func (s *StorageState) Empty() bool {
	return s == nil || (len(s.Cookies) == 0 && len(s.Origins) == 0)
}
