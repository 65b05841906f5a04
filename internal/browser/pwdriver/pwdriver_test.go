package pwdriver

import (
	"context"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"go.uber.org/zap/zaptest"
)

func TestSelectorString(t *testing.T) {
	assert.Equal(t, "css=#save", selectorString(browser.CSS("#save")))
	assert.Equal(t, "xpath=//button", selectorString(browser.XPath("//button")))
	assert.Equal(t, `xpath=//*[text()[contains(normalize-space(.), "Save")]]`, selectorString(browser.Text("Save")))
}

func TestTimeoutMs(t *testing.T) {
	assert.Nil(t, timeoutMs(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ms := timeoutMs(ctx)
	require.NotNil(t, ms)
	assert.InDelta(t, 5000, *ms, 200)

	expired, cancel2 := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel2()
	assert.Equal(t, 1.0, *timeoutMs(expired))
}

func TestKeyName(t *testing.T) {
	assert.Equal(t, "Enter", keyName(browser.KeyEnter))
	assert.Equal(t, "Escape", keyName(browser.KeyEscape))
	assert.Equal(t, "a", keyName("a"))
}

func TestLaunchOptions(t *testing.T) {
	l := NewLauncher(Options{Headless: true, ExecPath: "/opt/chrome", Args: []string{"--lang=th"}}, zaptest.NewLogger(t))
	opts := l.launchOptions()
	require.NotNil(t, opts.Headless)
	assert.True(t, *opts.Headless)
	assert.Equal(t, []string{"--start-maximized", "--lang=th"}, opts.Args)
	require.NotNil(t, opts.ExecutablePath)
	assert.Equal(t, "/opt/chrome", *opts.ExecutablePath)

	bare := NewLauncher(Options{}, zaptest.NewLogger(t)).launchOptions()
	assert.Nil(t, bare.ExecutablePath)
}

func TestStorageStateConversion(t *testing.T) {
	in := &browser.StorageState{
		Cookies: []browser.Cookie{{Name: "XASSESSIONID", Value: "abc", Domain: "ta.example.test", Path: "/", Expires: 1.7e9, HTTPOnly: true}},
		Origins: []browser.OriginStorage{{Origin: "https://ta.example.test", LocalStorage: map[string]string{"mx.session": "1"}}},
	}
	opt := toPlaywrightState(in)
	require.Len(t, opt.Cookies, 1)
	assert.Equal(t, "ta.example.test", *opt.Cookies[0].Domain)
	assert.Equal(t, 1.7e9, *opt.Cookies[0].Expires)
	require.Len(t, opt.Origins, 1)
	assert.Equal(t, []playwright.NameValue{{Name: "mx.session", Value: "1"}}, opt.Origins[0].LocalStorage)

	lax := playwright.SameSiteAttributeLax
	back := fromPlaywrightState(&playwright.StorageState{
		Cookies: []playwright.Cookie{{Name: "XASSESSIONID", Value: "abc", Domain: "ta.example.test", Path: "/", HttpOnly: true, SameSite: lax}},
		Origins: opt.Origins,
	})
	require.Len(t, back.Cookies, 1)
	assert.Equal(t, "Lax", back.Cookies[0].SameSite)
	assert.True(t, back.Cookies[0].HTTPOnly)
	assert.Equal(t, in.Origins, back.Origins)
}

func TestSessionCookieHasNoExpiry(t *testing.T) {
	opt := toPlaywrightState(&browser.StorageState{Cookies: []browser.Cookie{{Name: "s", Value: "v"}}})
	assert.Nil(t, opt.Cookies[0].Expires)
}
