// File: internal/selector/predicate_test.go
package selector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"github.com/xkilldash9x/courier-cli/internal/browser/fakepage"
)

func first(t *testing.T, page *fakepage.Page, css string) browser.Element {
	t.Helper()
	els, err := page.Query(context.Background(), browser.CSS(css))
	require.NoError(t, err)
	require.NotEmpty(t, els)
	return els[0]
}

func TestPredicates(t *testing.T) {
	page := fakepage.New(`<body>
		<button id="ok">  OK </button>
		<button id="okay">OK, continue</button>
		<input id="edit" type="button" value="Edit record" disabled>
		<table><tbody>
			<tr id="empty"><td>No data</td></tr>
			<tr id="row"><td>2002</td><td>ACME Trading Co.</td></tr>
		</tbody></table>
	</body>`)
	ctx := context.Background()

	tests := []struct {
		name string
		pred Predicate
		css  string
		want bool
	}{
		{"text equals trims", TextEquals("ok"), "#ok", true},
		{"text equals is exact", TextEquals("OK"), "#okay", false},
		{"text contains", TextContains("continue"), "#okay", true},
		{"attr contains", AttrContains("value", "edit"), "#edit", true},
		{"attr missing", AttrContains("title", "edit"), "#edit", false},
		{"enabled", Enabled(), "#edit", false},
		{"min length", MinTextLength(10), "#row", true},
		{"min length short", MinTextLength(10), "#empty", false},
		{"exclude no data", ExcludeText("No data", "No records found"), "#empty", false},
		{"exclude passes", ExcludeText("No data"), "#row", true},
		{"all", All(MinTextLength(4), ExcludeText("No data")), "#row", true},
		{"all fails on one", All(MinTextLength(4), Enabled()), "#edit", false},
		{"any of", AnyOf(TextContains("edit"), AttrContains("value", "edit")), "#edit", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := tt.pred.Match(ctx, first(t, page, tt.css))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}
