// File: internal/browser/browser_test.go
package browser_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"github.com/xkilldash9x/courier-cli/internal/browser/fakepage"
)

func TestTextXPath_QuotesLiterals(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{`Save`, `//*[text()[contains(normalize-space(.), "Save")]]`},
		{`Say "hi"`, `//*[text()[contains(normalize-space(.), 'Say "hi"')]]`},
		{`it's "x"`, `//*[text()[contains(normalize-space(.), concat("it's ", '"', "x", '"', ""))]]`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, browser.TextXPath(tt.text), tt.text)
	}
}

func TestStorageState_Empty(t *testing.T) {
	var nilState *browser.StorageState
	assert.True(t, nilState.Empty())
	assert.True(t, (&browser.StorageState{}).Empty())
	assert.False(t, (&browser.StorageState{Cookies: []browser.Cookie{{Name: "sid"}}}).Empty())
}

func TestRestoreStorageScript_EmbedsOrigins(t *testing.T) {
	script, err := browser.RestoreStorageScript([]browser.OriginStorage{
		{Origin: "https://portal.example", LocalStorage: map[string]string{"token": "abc"}},
	})
	require.NoError(t, err)
	assert.Contains(t, script, `"origin":"https://portal.example"`)
	assert.Contains(t, script, `"token":"abc"`)
	assert.True(t, strings.HasPrefix(script, "(() => {"))
}

func TestBindThis(t *testing.T) {
	got := browser.BindThis(browser.ScriptClick)
	assert.Equal(t, "function(...args) { return (function(el) { el.click(); return true; })(this, ...args); }", got)
}

func TestPoll(t *testing.T) {
	t.Run("returns once check is done", func(t *testing.T) {
		calls := 0
		err := browser.Poll(context.Background(), time.Millisecond, func(context.Context) (bool, error) {
			calls++
			return calls == 3, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("propagates check errors", func(t *testing.T) {
		boom := errors.New("boom")
		err := browser.Poll(context.Background(), time.Millisecond, func(context.Context) (bool, error) {
			return false, boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("stops at the deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := browser.Poll(ctx, time.Millisecond, func(context.Context) (bool, error) { return false, nil })
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestWaitFor_FindsLateElement(t *testing.T) {
	page := fakepage.New(`<body></body>`)
	go func() {
		time.Sleep(20 * time.Millisecond)
		page.SetHTML(`<body><button id="save">Save</button></body>`)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	el, err := browser.WaitFor(ctx, page, browser.CSS("#save"), 5*time.Millisecond)
	require.NoError(t, err)
	text, err := el.Text(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Save", text)
}

func TestSleep(t *testing.T) {
	assert.NoError(t, browser.Sleep(context.Background(), 0))
	assert.NoError(t, browser.Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, browser.Sleep(ctx, time.Hour), context.Canceled)
}

func TestPaced_SpacesMutatingActions(t *testing.T) {
	page := fakepage.New(`<body><input id="q"></body>`)
	assert.Same(t, browser.Page(page), browser.Paced(page, 0), "a zero interval does not wrap")

	paced := browser.Paced(page, 30*time.Millisecond)
	ctx := context.Background()
	els, err := paced.Query(ctx, browser.CSS("#q"))
	require.NoError(t, err)
	require.Len(t, els, 1)

	start := time.Now()
	require.NoError(t, els[0].Fill(ctx, "a"))
	require.NoError(t, els[0].Fill(ctx, "b"))
	require.NoError(t, paced.Navigate(ctx, "https://portal.example"))
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
	assert.Equal(t, 2, page.Count(fakepage.ActionFill, "q"))
}

func TestPaced_CanceledWaitSkipsAction(t *testing.T) {
	page := fakepage.New(`<body></body>`)
	paced := browser.Paced(page, time.Hour)
	require.NoError(t, paced.Navigate(context.Background(), "https://a.example"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, paced.Navigate(ctx, "https://b.example"))
	assert.Equal(t, 1, page.Count(fakepage.ActionNavigate, ""))
}
