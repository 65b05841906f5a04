// File: internal/testing/fakeapp/app.go

// Package fakeapp scripts a fakepage.Page into a small replica of the
// trading agreement application: SSO login, menu, search listing, edit view
// with an upload dialog, and save.
package fakeapp

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/xkilldash9x/courier-cli/internal/browser/fakepage"
)

// BaseURL is the application entry point.
const BaseURL = "https://ta.example.test/"

// ListingURL and SavedURL are where the listing renders before and after a save.
const (
	ListingURL = BaseURL + "index.html#/summary"
	SavedURL   = BaseURL + "p/ta-summary"
)

// ErrCrashed is returned by the action that crashed the page.
var ErrCrashed = errors.New("target crashed")

// Upload records one attached document.
type Upload struct {
	Identifier string
	Document   string
}

// App is the server-side state shared by every page it creates.
type App struct {
	Username string
	Password string
	// Results maps identifier to number of matching records. Missing
	// identifiers have none.
	Results map[string]int
	// FailUpload makes the upload of these identifiers report an error.
	FailUpload map[string]bool
	// QuietUpload accepts uploads of these identifiers but closes the
	// dialog without a success message.
	QuietUpload map[string]bool
	// CrashOnUpload crashes the page when these identifiers are uploaded.
	CrashOnUpload map[string]bool
	// BrokenOK makes pointer clicks on the success dialog's OK button fail.
	BrokenOK bool
	// NoPaging omits the pagination status from results.
	NoPaging bool
	// SilentSave saves without redirect or confirmation text.
	SilentSave bool

	mu      sync.Mutex
	uploads []Upload
	saves   []string
	logins  int
}

// New returns an app with credentials user/pass.
func New() *App {
	return &App{
		Username:      "user",
		Password:      "pass",
		Results:       map[string]int{},
		FailUpload:    map[string]bool{},
		QuietUpload:   map[string]bool{},
		CrashOnUpload: map[string]bool{},
	}
}

// Uploads lists attached documents in order.
func (a *App) Uploads() []Upload {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Upload(nil), a.uploads...)
}

// Saves lists the identifiers of saved records in order.
func (a *App) Saves() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.saves...)
}

// Logins counts successful credential submissions.
func (a *App) Logins() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logins
}

// Launcher hands out a fresh, logged-out page per launch.
func (a *App) Launcher() *fakepage.Launcher {
	return &fakepage.Launcher{Factory: func(int) *fakepage.Page { return a.NewPage() }}
}

// pageState is the client-side state of one page.
type pageState struct {
	authed     bool
	identifier string
	pending    string
}

// NewPage returns a logged-out page at about:blank.
func (a *App) NewPage() *fakepage.Page {
	st := &pageState{}
	p := fakepage.New(`<body></body>`)

	p.On(fakepage.ActionNavigate, "", func(p *fakepage.Page, _ *goquery.Selection, url string) error {
		if url != BaseURL {
			return nil
		}
		if st.authed {
			p.SetHTML(dashboardView(false))
		} else {
			p.SetHTML(loginView)
		}
		return nil
	})
	p.On(fakepage.ActionClick, "#sso", func(p *fakepage.Page, _ *goquery.Selection, _ string) error {
		p.SetHTML(loginFormView(""))
		return nil
	})
	p.On(fakepage.ActionClick, "#submit", func(p *fakepage.Page, _ *goquery.Selection, _ string) error {
		doc := p.Doc()
		user := doc.Find("#username").AttrOr("value", "")
		pass := doc.Find("#password").AttrOr("value", "")
		if user != a.Username || pass != a.Password {
			p.SetHTML(loginFormView("Invalid credentials"))
			return nil
		}
		a.mu.Lock()
		a.logins++
		a.mu.Unlock()
		st.authed = true
		p.SetHTML(dashboardView(false))
		return nil
	})
	p.On(fakepage.ActionClick, "#menu-setup", func(p *fakepage.Page, _ *goquery.Selection, _ string) error {
		p.SetHTML(dashboardView(true))
		return nil
	})
	p.On(fakepage.ActionClick, "#menu-summary", func(p *fakepage.Page, _ *goquery.Selection, _ string) error {
		p.SetURL(ListingURL)
		p.SetHTML(listingView(searchForm("", ""), ""))
		return nil
	})
	p.On(fakepage.ActionClick, "#search", func(p *fakepage.Page, _ *goquery.Selection, _ string) error {
		doc := p.Doc()
		year := doc.Find("#mxui_widget_SearchInput_0_input").AttrOr("value", "")
		ident := doc.Find("#mxui_widget_SearchInput_4_input").AttrOr("value", "")
		st.identifier = ident
		p.SetHTML(listingView(searchForm(year, ident), a.results(ident)))
		return nil
	})
	p.On(fakepage.ActionClick, "#edit", func(p *fakepage.Page, _ *goquery.Selection, _ string) error {
		p.SetHTML(editView(st.identifier, ""))
		return nil
	})
	p.On(fakepage.ActionClick, "#open-upload", func(p *fakepage.Page, _ *goquery.Selection, _ string) error {
		p.SetHTML(editView(st.identifier, uploadDialog("")))
		return nil
	})
	p.On(fakepage.ActionSetFiles, "#file", func(p *fakepage.Page, _ *goquery.Selection, files string) error {
		st.pending = files
		return nil
	})
	p.On(fakepage.ActionClick, "#confirm-upload", func(p *fakepage.Page, _ *goquery.Selection, _ string) error {
		return a.confirmUpload(p, st)
	})
	okClick := func(p *fakepage.Page, _ *goquery.Selection, _ string) error {
		if a.BrokenOK {
			return errors.New("click intercepted by overlay")
		}
		p.SetHTML(editView(st.identifier, ""))
		return nil
	}
	p.On(fakepage.ActionClick, "#ok", okClick)
	p.On(fakepage.ActionForceClick, "#ok", okClick)
	p.On(fakepage.ActionScriptClick, "#ok", func(p *fakepage.Page, _ *goquery.Selection, _ string) error {
		p.SetHTML(editView(st.identifier, ""))
		return nil
	})
	p.On(fakepage.ActionClick, "#save", func(p *fakepage.Page, _ *goquery.Selection, _ string) error {
		a.mu.Lock()
		a.saves = append(a.saves, st.identifier)
		a.mu.Unlock()
		if a.SilentSave {
			return nil
		}
		p.SetURL(SavedURL)
		p.SetHTML(listingView(searchForm("", ""), `<div class="alert">Record saved</div>`))
		return nil
	})
	return p
}

func (a *App) confirmUpload(p *fakepage.Page, st *pageState) error {
	if a.CrashOnUpload[st.identifier] {
		p.Crash()
		return ErrCrashed
	}
	if st.pending == "" || a.FailUpload[st.identifier] {
		p.SetHTML(editView(st.identifier, uploadDialog("Upload failed")))
		return nil
	}
	a.mu.Lock()
	a.uploads = append(a.uploads, Upload{Identifier: st.identifier, Document: st.pending})
	a.mu.Unlock()
	st.pending = ""
	if a.QuietUpload[st.identifier] {
		p.SetHTML(editView(st.identifier, ""))
		return nil
	}
	p.SetHTML(editView(st.identifier, successDialog))
	return nil
}

func (a *App) results(ident string) string {
	n := a.Results[ident]
	var b strings.Builder
	if !a.NoPaging {
		if n == 0 {
			b.WriteString(`<div class="mx-grid-paging-status">0 to 0 of 0</div>`)
		} else {
			fmt.Fprintf(&b, `<div class="mx-grid-paging-status">1 to %d of %d</div>`, n, n)
		}
	}
	b.WriteString(`<table class="mx-datagrid"><thead><tr><th>Supplier</th><th>Name</th></tr></thead><tbody>`)
	if n == 0 {
		b.WriteString(`<tr><td colspan="2">No data</td></tr>`)
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<tr class="row" id="row-%d"><td>%s</td><td>Supplier Trading Co., Ltd.</td></tr>`, i, html.EscapeString(ident))
	}
	b.WriteString(`</tbody></table>`)
	if n > 0 {
		b.WriteString(`<button id="edit" class="btn">View TA detail</button>`)
	}
	return b.String()
}

const loginView = `<body>
<div class="login-page">
	<h1>Welcome</h1>
	<div role="button" class="mx-name-container24" id="sso">SSO Login</div>
</div>
</body>`

func loginFormView(msg string) string {
	return fmt.Sprintf(`<body>
<form id="login">
	<p class="error">%s</p>
	<input type="text" name="username" id="username">
	<input type="password" name="password" id="password">
	<button type="submit" id="submit">Sign in</button>
</form>
</body>`, html.EscapeString(msg))
}

const header = `<div class="main-menu"><span class="brand">Trading Agreement</span><a id="logout">Logout</a></div>`

func dashboardView(expanded bool) string {
	sub := ""
	if expanded {
		sub = `<ul class="submenu"><li><a class="mx-link" id="menu-summary">TA Summary</a></li></ul>`
	}
	return `<body>` + header + `<nav><a class="mx-link" id="menu-setup">Setup</a>` + sub + `</nav></body>`
}

func searchForm(year, ident string) string {
	return fmt.Sprintf(`<div class="search">
	<div class="mx-grid-search-input"><div><label>TA Year</label><input type="text" id="mxui_widget_SearchInput_0_input" value="%s"></div></div>
	<div class="mx-grid-search-input"><div><label>Main Supplier Code</label><input type="text" id="mxui_widget_SearchInput_4_input" value="%s"></div></div>
	<button id="search" class="btn">Search</button>
</div>`, html.EscapeString(year), html.EscapeString(ident))
}

func listingView(form, results string) string {
	return `<body>` + header + form + results + `</body>`
}

func editView(ident, dialog string) string {
	return fmt.Sprintf(`<body>%s
<h2>TA detail %s</h2>
<section><h3>Internal Attachment</h3><button id="open-upload">Upload new Internal Attachment</button></section>
<button id="save" class="btn btn-success">Save</button>
%s
</body>`, header, html.EscapeString(ident), dialog)
}

func uploadDialog(msg string) string {
	return fmt.Sprintf(`<div class="modal-dialog" id="upload-dialog">
	<p class="error">%s</p>
	<input type="file" id="file" style="display: none">
	<button id="confirm-upload">Upload File</button>
</div>`, html.EscapeString(msg))
}

const successDialog = `<div class="modal-dialog" id="success-dialog">
	<p>Upload new Additional Document succeed!</p>
	<button id="ok">OK</button>
</div>`
