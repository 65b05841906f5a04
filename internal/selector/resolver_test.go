// File: internal/selector/resolver_test.go
package selector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"github.com/xkilldash9x/courier-cli/internal/browser/fakepage"
	"go.uber.org/zap/zaptest"
)

// recordingPage logs every selector queried through it.
type recordingPage struct {
	*fakepage.Page
	mu      sync.Mutex
	queried []string
	onQuery func(n int)
}

func (r *recordingPage) Query(ctx context.Context, sel browser.Selector) ([]browser.Element, error) {
	r.mu.Lock()
	r.queried = append(r.queried, sel.String())
	n := len(r.queried)
	r.mu.Unlock()
	if r.onQuery != nil {
		r.onQuery(n)
	}
	return r.Page.Query(ctx, sel)
}

func (r *recordingPage) Queried() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queried...)
}

func newResolver(t *testing.T) *Resolver {
	return NewResolver(time.Second, zaptest.NewLogger(t))
}

func id(t *testing.T, el browser.Element) string {
	t.Helper()
	v, _, err := el.Attribute(context.Background(), "id")
	require.NoError(t, err)
	return v
}

func TestResolve_FirstQualifyingCandidateWins(t *testing.T) {
	page := &recordingPage{Page: fakepage.New(`<body>
		<button id="b1" class="b">Search</button>
		<button id="c1" class="c">Search</button>
	</body>`)}
	role := Role{Name: "search button", Candidates: []Candidate{
		C(browser.CSS(".a")),
		C(browser.CSS(".b")),
		C(browser.CSS(".c")),
	}}

	m, err := newResolver(t).Resolve(context.Background(), page, role)
	require.NoError(t, err)
	assert.Equal(t, "b1", id(t, m.Element))
	assert.Equal(t, 1, m.Index)
	assert.Equal(t, []string{".a", ".b"}, page.Queried(), "C must never be considered and A never retried")
}

func TestResolve_QueryErrorIsNoMatch(t *testing.T) {
	page := fakepage.New(`<body><input id="year" type="text"></body>`)
	page.FailQuery("#broken", errors.New("DOM mutated"))
	role := Role{Name: "year", Candidates: []Candidate{
		C(browser.CSS("#broken")),
		C(browser.XPath("//input")),
		C(browser.CSS("#year")),
	}}

	m, err := newResolver(t).Resolve(context.Background(), page, role)
	require.NoError(t, err)
	assert.Equal(t, "year", id(t, m.Element))
	assert.Equal(t, 2, m.Index)
}

func TestResolve_VisibilityAndHiddenCandidates(t *testing.T) {
	page := fakepage.New(`<body>
		<div style="display: none"><button id="hidden-btn">Save</button></div>
		<input id="file" type="file" hidden>
		<button id="visible-btn">Save</button>
	</body>`)
	r := newResolver(t)

	m, err := r.Resolve(context.Background(), page, Role{Name: "save", Candidates: []Candidate{C(browser.CSS("button"))}})
	require.NoError(t, err)
	assert.Equal(t, "visible-btn", id(t, m.Element))

	_, err = r.Resolve(context.Background(), page, Role{Name: "file", Candidates: []Candidate{C(browser.CSS("input[type=file]"))}})
	assert.ErrorIs(t, err, ErrNotFound)

	m, err = r.Resolve(context.Background(), page, Role{Name: "file", Candidates: []Candidate{
		{Selector: browser.CSS("input[type=file]"), AllowHidden: true},
	}})
	require.NoError(t, err)
	assert.Equal(t, "file", id(t, m.Element))
}

func TestResolve_LabelPredicate(t *testing.T) {
	page := fakepage.New(`<body>
		<div><div><label>Main Supplier Code</label><input id="supplier" type="text"></div></div>
		<div><div><label>TA Year</label><input id="year" type="text"></div></div>
	</body>`)
	role := Role{Name: "year input", Candidates: []Candidate{
		C(browser.CSS("#mxui_widget_SearchInput_0_input")),
		C(browser.CSS(`input[type="text"]`), LabelContains("year")),
	}}

	m, err := newResolver(t).Resolve(context.Background(), page, role)
	require.NoError(t, err)
	assert.Equal(t, "year", id(t, m.Element))
}

func TestResolve_NotFoundCarriesCandidates(t *testing.T) {
	page := fakepage.New(`<body><p>nothing here</p></body>`)
	role := Role{Name: "edit control", Candidates: []Candidate{
		C(browser.Text("Edit")),
		C(browser.CSS(".btn-edit"), Enabled()),
	}}

	_, err := newResolver(t).Resolve(context.Background(), page, role)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "edit control", nf.Role)
	assert.Equal(t, []string{"text=Edit", ".btn-edit [enabled]"}, nf.Tried)
}

func TestResolve_CanceledContextIsNotFound(t *testing.T) {
	page := fakepage.New(`<body><button>OK</button></body>`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newResolver(t).Resolve(ctx, page, Role{Name: "ok", Candidates: []Candidate{C(browser.CSS("button"))}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAwait_WaitsForLateElement(t *testing.T) {
	page := &recordingPage{Page: fakepage.New(`<body></body>`)}
	page.onQuery = func(n int) {
		if n == 3 {
			page.SetHTML(`<body><form><input type="password" id="pw"></form></body>`)
		}
	}
	role := Role{Name: "login form", Candidates: []Candidate{C(browser.CSS(`input[type="password"]`))}}

	m, err := newResolver(t).Await(context.Background(), page, role, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "pw", id(t, m.Element))
}

func TestAwait_GivesUp(t *testing.T) {
	page := fakepage.New(`<body></body>`)
	role := Role{Name: "login form", Candidates: []Candidate{C(browser.CSS("form"))}}

	start := time.Now()
	_, err := newResolver(t).Await(context.Background(), page, role, 300*time.Millisecond)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPresent_IgnoresVisibility(t *testing.T) {
	page := fakepage.New(`<body><div class="menu" style="display:none">Logout</div></body>`)
	role := Role{Name: "indicator", Candidates: []Candidate{
		C(browser.CSS(".dashboard")),
		C(browser.CSS(".menu")),
	}}
	r := newResolver(t)

	cand, ok := r.Present(context.Background(), page, role)
	require.True(t, ok)
	assert.Equal(t, ".menu", cand.Selector.Expr)

	_, err := r.Resolve(context.Background(), page, role)
	assert.ErrorIs(t, err, ErrNotFound)

	_, ok = r.Present(context.Background(), page, Role{Name: "none", Candidates: []Candidate{C(browser.CSS(".x"))}})
	assert.False(t, ok)
}
