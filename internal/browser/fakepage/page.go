// File: internal/browser/fakepage/page.go

// Package fakepage is an in-memory browser.Page backed by a goquery document.
// Tests script page behavior by registering handlers for actions on elements
// matching a CSS selector; handlers usually swap the document to model a
// navigation or a rendered result.
package fakepage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/xkilldash9x/courier-cli/internal/browser"
)

// Action names an interaction recorded in the page log.
type Action string

const (
	ActionNavigate    Action = "navigate"
	ActionClick       Action = "click"
	ActionForceClick  Action = "force-click"
	ActionScriptClick Action = "script-click"
	ActionFill        Action = "fill"
	ActionPress       Action = "press"
	ActionKey         Action = "key"
	ActionSetFiles    Action = "set-files"
	ActionSettle      Action = "settle"
	ActionScreenshot  Action = "screenshot"
	ActionClose       Action = "close"
)

// ErrStale is returned when acting on an element of a replaced document.
var ErrStale = errors.New("element is not attached to the current document")

// ErrPageClosed is returned by every action once the page is closed.
var ErrPageClosed = errors.New("page has been closed")

// Event is one recorded interaction.
type Event struct {
	Action Action
	// Target is the element's id, name, or tag.
	Target string
	Arg    string
}

func (e Event) String() string {
	if e.Arg == "" {
		return fmt.Sprintf("%s %s", e.Action, e.Target)
	}
	return fmt.Sprintf("%s %s %q", e.Action, e.Target, e.Arg)
}

// Handler reacts to an action. target is nil for page-level actions.
type Handler func(p *Page, target *goquery.Selection, arg string) error

type handler struct {
	action Action
	css    string
	fn     Handler
}

// Page implements browser.Page.
type Page struct {
	mu           sync.Mutex
	doc          *goquery.Document
	url          string
	routes       map[string]string
	handlers     []handler
	events       []Event
	queryErrs    map[string]error
	closed       bool
	disconnected bool
	closeBlock   chan struct{}

	// State is returned by StorageState.
	State *browser.StorageState
	// SettleErr is returned by WaitSettled.
	SettleErr error
	// ScreenshotErr is returned by Screenshot.
	ScreenshotErr error
}

// New returns a page showing html at about:blank.
func New(html string) *Page {
	p := &Page{
		url:       "about:blank",
		routes:    make(map[string]string),
		queryErrs: make(map[string]error),
	}
	p.SetHTML(html)
	return p
}

// SetHTML replaces the document. Elements of the old document become stale.
func (p *Page) SetHTML(html string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(fmt.Sprintf("fakepage: invalid html: %v", err))
	}
	p.mu.Lock()
	p.doc = doc
	p.mu.Unlock()
}

// SetURL changes the reported location without touching the document.
func (p *Page) SetURL(url string) {
	p.mu.Lock()
	p.url = url
	p.mu.Unlock()
}

// Route serves html when url is navigated to.
func (p *Page) Route(url, html string) *Page {
	p.mu.Lock()
	p.routes[url] = html
	p.mu.Unlock()
	return p
}

// On registers fn for action on elements matching css. Page-level actions
// (navigate, key, settle) ignore css.
func (p *Page) On(action Action, css string, fn Handler) *Page {
	p.mu.Lock()
	p.handlers = append(p.handlers, handler{action: action, css: css, fn: fn})
	p.mu.Unlock()
	return p
}

// FailQuery makes queries whose expression equals expr return err.
func (p *Page) FailQuery(expr string, err error) *Page {
	p.mu.Lock()
	p.queryErrs[expr] = err
	p.mu.Unlock()
	return p
}

// Crash marks the page closed and disconnected, as a renderer crash would.
func (p *Page) Crash() {
	p.mu.Lock()
	p.closed = true
	p.disconnected = true
	p.mu.Unlock()
}

// BlockClose makes Close hang until the returned release func is called.
func (p *Page) BlockClose() (release func()) {
	ch := make(chan struct{})
	p.mu.Lock()
	p.closeBlock = ch
	p.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Events returns a copy of the interaction log.
func (p *Page) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// Count returns how many logged events have the given action and target.
func (p *Page) Count(action Action, target string) int {
	n := 0
	for _, e := range p.Events() {
		if e.Action == action && (target == "" || e.Target == target) {
			n++
		}
	}
	return n
}

// Doc exposes the current document for assertions.
func (p *Page) Doc() *goquery.Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc
}

func (p *Page) record(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *Page) checkOpen() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPageClosed
	}
	return nil
}

// dispatch runs the handlers registered for action. For element actions only
// handlers whose selector matches target run.
func (p *Page) dispatch(action Action, target *goquery.Selection, arg string) error {
	p.mu.Lock()
	var matched []Handler
	for _, h := range p.handlers {
		if h.action != action {
			continue
		}
		if target != nil && h.css != "" && !target.Is(h.css) {
			continue
		}
		matched = append(matched, h.fn)
	}
	p.mu.Unlock()

	for _, fn := range matched {
		if err := fn(p, target, arg); err != nil {
			return err
		}
	}
	return nil
}

// Navigate implements browser.Page.
func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p.record(Event{Action: ActionNavigate, Target: url})
	p.mu.Lock()
	html, ok := p.routes[url]
	p.url = url
	p.mu.Unlock()
	if ok {
		p.SetHTML(html)
	}
	return p.dispatch(ActionNavigate, nil, url)
}

// Query implements browser.Page. Text selectors match elements owning a text
// node that contains the expression. XPath is not supported and errors.
func (p *Page) Query(ctx context.Context, sel browser.Selector) ([]browser.Element, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	qerr := p.queryErrs[sel.Expr]
	doc := p.doc
	p.mu.Unlock()
	if qerr != nil {
		return nil, qerr
	}

	var found *goquery.Selection
	switch sel.Kind {
	case browser.KindCSS:
		found = doc.Find(sel.Expr)
	case browser.KindText:
		found = doc.Find("body *").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(ownText(s), sel.Expr)
		})
	default:
		return nil, fmt.Errorf("fakepage: unsupported selector %s", sel)
	}

	out := make([]browser.Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Element{page: p, doc: doc, sel: s})
	})
	return out, nil
}

// WaitSettled implements browser.Page.
func (p *Page) WaitSettled(ctx context.Context, _ time.Duration) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	p.record(Event{Action: ActionSettle})
	if err := p.dispatch(ActionSettle, nil, ""); err != nil {
		return err
	}
	if p.SettleErr != nil {
		return p.SettleErr
	}
	return ctx.Err()
}

// PressKey implements browser.Page.
func (p *Page) PressKey(ctx context.Context, key string) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	p.record(Event{Action: ActionKey, Arg: key})
	return p.dispatch(ActionKey, nil, key)
}

// Screenshot implements browser.Page.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	p.record(Event{Action: ActionScreenshot})
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	return []byte("\x89PNG fake"), nil
}

// URL implements browser.Page.
func (p *Page) URL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

// StorageState implements browser.Page.
func (p *Page) StorageState(ctx context.Context) (*browser.StorageState, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	if p.State == nil {
		return &browser.StorageState{}, nil
	}
	return p.State, nil
}

// Connected implements browser.Page.
func (p *Page) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.disconnected
}

// Closed implements browser.Page.
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Close implements browser.Page. It honors BlockClose and ignores ctx, like
// a browser process that refuses to exit.
func (p *Page) Close(ctx context.Context) error {
	p.mu.Lock()
	block := p.closeBlock
	p.mu.Unlock()
	if block != nil {
		<-block
	}
	p.mu.Lock()
	p.closed = true
	p.disconnected = true
	p.events = append(p.events, Event{Action: ActionClose})
	p.mu.Unlock()
	return nil
}

// ownText concatenates the direct text children of s.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return strings.Join(strings.Fields(b.String()), " ")
}
