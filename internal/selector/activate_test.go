// File: internal/selector/activate_test.go
package selector

import (
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"github.com/xkilldash9x/courier-cli/internal/browser/fakepage"
)

func TestActivate_DirectClick(t *testing.T) {
	page := fakepage.New(`<body><button id="ok">OK</button></body>`)
	m, err := Activate(context.Background(), page, first(t, page, "#ok"), Escalating...)
	require.NoError(t, err)
	assert.Equal(t, DirectClick, m)
	assert.Equal(t, 1, page.Count(fakepage.ActionClick, "ok"))
}

func TestActivate_FallsBackToForcedClick(t *testing.T) {
	page := fakepage.New(`<body><button id="ok" disabled>OK</button></body>`)
	m, err := Activate(context.Background(), page, first(t, page, "#ok"), Escalating...)
	require.NoError(t, err)
	assert.Equal(t, ForcedClick, m)
	assert.Equal(t, 0, page.Count(fakepage.ActionClick, "ok"))
	assert.Equal(t, 1, page.Count(fakepage.ActionForceClick, "ok"))
}

func TestActivate_ScriptThenKeyboard(t *testing.T) {
	page := fakepage.New(`<body><div class="modal"><button id="ok">OK</button></div></body>`)
	page.On(fakepage.ActionClick, "#ok", failing)
	page.On(fakepage.ActionForceClick, "#ok", failing)

	m, err := Activate(context.Background(), page, first(t, page, "#ok"), Escalating...)
	require.NoError(t, err)
	assert.Equal(t, ScriptClick, m)

	page.On(fakepage.ActionScriptClick, "#ok", failing)
	m, err = Activate(context.Background(), page, first(t, page, "#ok"), Escalating...)
	require.NoError(t, err)
	assert.Equal(t, KeyEnter, m)
}

func TestActivate_NilElementUsesKeyboard(t *testing.T) {
	page := fakepage.New(`<body></body>`)
	m, err := Activate(context.Background(), page, nil, Escalating...)
	require.NoError(t, err)
	assert.Equal(t, KeyEnter, m)
	assert.Equal(t, []fakepage.Event{{Action: fakepage.ActionKey, Arg: browser.KeyEnter}}, page.Events())
}

func TestActivate_AllMethodsFail(t *testing.T) {
	page := fakepage.New(`<body><button id="ok">OK</button></body>`)
	el := first(t, page, "#ok")
	page.Crash()

	_, err := Activate(context.Background(), page, el, Escalating...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all activation methods failed")
	assert.ErrorIs(t, err, fakepage.ErrPageClosed)
}

func failing(*fakepage.Page, *goquery.Selection, string) error {
	return assert.AnError
}
