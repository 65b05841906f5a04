// File: internal/stages/navigate_test.go
package stages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/courier-cli/api/schemas"
	"github.com/xkilldash9x/courier-cli/internal/browser/fakepage"
	"github.com/xkilldash9x/courier-cli/internal/testing/fakeapp"
)

func TestNavigate_ReachesListing(t *testing.T) {
	f, _ := appFixture(t)
	f.advance(t, task("1001"), Authenticate{}, Navigate{})

	url, err := f.env.Page.URL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fakeapp.ListingURL, url)
	assert.False(t, f.warned("Search form not detected; proceeding anyway."))
}

func TestNavigate_DashboardNotLoaded(t *testing.T) {
	f, _ := appFixture(t)

	_, err := Navigate{}.Execute(context.Background(), f.env, task("1001"))
	se := requireKind(t, err, schemas.KindNavigationFailure)
	assert.Equal(t, "dashboard not loaded", se.Detail)
}

func TestNavigate_MissingMenu(t *testing.T) {
	f := newFixture(t, fakepage.New(`<body><div class="main-menu">Logout</div><a class="mx-link">Reports</a></body>`))

	_, err := Navigate{}.Execute(context.Background(), f.env, task("1001"))
	se := requireKind(t, err, schemas.KindNavigationFailure)
	assert.Equal(t, RoleMenuSetup.Name, se.Role)
	assert.Equal(t, RoleMenuSetup.Descriptions(), se.Candidates)
}

func TestNavigate_ReadinessMarkerIsAdvisory(t *testing.T) {
	page := fakepage.New(`<body><div class="main-menu">Logout</div><a class="mx-link" id="s">Setup</a><a class="mx-link" id="m">TA Summary</a></body>`)
	page.On(fakepage.ActionClick, "#m", func(p *fakepage.Page, _ *goquerySel, _ string) error {
		p.SetHTML(`<body><div class="main-menu">Logout</div><p>Loading…</p></body>`)
		return nil
	})
	f := newFixture(t, page)

	_, err := Navigate{}.Execute(context.Background(), f.env, task("1001"))
	require.NoError(t, err)
	assert.True(t, f.warned("Search form not detected; proceeding anyway."))
}

func TestNavigate_SettleFailureIsNavigationFailure(t *testing.T) {
	f, _ := appFixture(t)
	f.advance(t, task("1001"), Authenticate{})
	f.env.Page.(*fakepage.Page).SettleErr = context.DeadlineExceeded

	_, err := Navigate{}.Execute(context.Background(), f.env, task("1001"))
	requireKind(t, err, schemas.KindNavigationFailure)
}
