// File: internal/stages/select_test.go
package stages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/courier-cli/api/schemas"
	"github.com/xkilldash9x/courier-cli/internal/browser/fakepage"
)

func TestSelectRecord_OpensFirstRow(t *testing.T) {
	f, app := appFixture(t)
	app.Results["1001"] = 2
	f.advance(t, task("1001"), Authenticate{}, Navigate{}, Search{}, SelectRecord{})

	page := f.env.Page.(*fakepage.Page)
	assert.Equal(t, 1, page.Count(fakepage.ActionClick, "row-0"))
	assert.Equal(t, 0, page.Count(fakepage.ActionClick, "row-1"))
	assert.Equal(t, 1, page.Doc().Find("#open-upload").Length())
}

func TestSelectRecord_ZeroResultsSkipped(t *testing.T) {
	f, _ := appFixture(t)
	f.advance(t, task("2002"), Authenticate{}, Navigate{}, Search{})

	res, err := SelectRecord{}.Execute(context.Background(), f.env, task("2002"))
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, "No data found", res.Reason)
}

func TestSelectRecord_NoPaging(t *testing.T) {
	t.Run("no rows is skipped", func(t *testing.T) {
		f, app := appFixture(t)
		app.NoPaging = true
		f.advance(t, task("2002"), Authenticate{}, Navigate{}, Search{})

		res, err := SelectRecord{}.Execute(context.Background(), f.env, task("2002"))
		require.NoError(t, err)
		assert.True(t, res.Skipped)
	})

	t.Run("rows still open", func(t *testing.T) {
		f, app := appFixture(t)
		app.NoPaging = true
		app.Results["1001"] = 1
		f.advance(t, task("1001"), Authenticate{}, Navigate{}, Search{}, SelectRecord{})
	})
}

func TestSelectRecord_NonzeroCountWithoutQualifyingRow(t *testing.T) {
	f := newFixture(t, fakepage.New(`<body>
		<div class="mx-grid-paging-status">1 to 1 of 1</div>
		<table><tbody><tr><td>short</td></tr></tbody></table>
	</body>`))

	_, err := SelectRecord{}.Execute(context.Background(), f.env, task("1001"))
	se := requireKind(t, err, schemas.KindElementNotFound)
	assert.Equal(t, RoleResultRow.Name, se.Role)
}

func TestSelectRecord_MissingEditControl(t *testing.T) {
	f := newFixture(t, fakepage.New(`<body>
		<div class="mx-grid-paging-status">1 to 1 of 1</div>
		<table><tbody><tr><td>1001</td><td>Supplier Trading Co.</td></tr></tbody></table>
	</body>`))

	_, err := SelectRecord{}.Execute(context.Background(), f.env, task("1001"))
	se := requireKind(t, err, schemas.KindElementNotFound)
	assert.Equal(t, RoleEditControl.Name, se.Role)
}

func TestZeroResults(t *testing.T) {
	tests := map[string]bool{
		"0 to 0 of 0":                   true,
		"  0   to 0 of 0 ":              true,
		"Currently showing 0 to 0 of 0": true,
		"0 of 0":                        true,
		"1 to 10 of 25":                 false,
		"Currently showing 1 to 1 of 1": false,
		"":                              false,
	}
	for in, want := range tests {
		assert.Equal(t, want, ZeroResults(in), "status %q", in)
	}
}
