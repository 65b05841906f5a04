// internal/reporting/reporter_test.go
package reporting_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/courier-cli/api/schemas"
	"github.com/xkilldash9x/courier-cli/internal/reporting"
)

func sampleReport() *schemas.RunReport {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return &schemas.RunReport{
		RunID:      "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Total:      2,
		Succeeded:  1,
		Failed:     1,
		Skipped:    1,
		Errors: []schemas.ErrorRecord{
			{Document: "2002,2003.pdf", Identifier: "2002", Message: "No data found"},
			{Document: ".pdf", Message: "no identifier in file name", Kind: schemas.KindFatal},
		},
	}
}

func TestText_RendersSummary(t *testing.T) {
	var buf bytes.Buffer
	r := reporting.NewText(&buf)
	require.NoError(t, r.Write(sampleReport()))
	require.NoError(t, r.Close())

	out := buf.String()
	assert.Contains(t, out, "Execution time:  1m30s")
	assert.Contains(t, out, "Total documents: 2")
	assert.Contains(t, out, "Skipped:         1")
	assert.Contains(t, out, "Success rate:    50%")
	assert.Contains(t, out, "  1. 2002,2003.pdf (2002): No data found")
	assert.Contains(t, out, "  2. .pdf: no identifier in file name")
	assert.NotContains(t, out, "Aborted")
	assert.NotContains(t, out, "Not processed")
}

func TestText_AbortedRunShowsUnprocessedDocuments(t *testing.T) {
	report := sampleReport()
	report.Found = 4
	report.Aborted = "session lost: browser would not start"

	var buf bytes.Buffer
	require.NoError(t, reporting.NewText(&buf).Write(report))

	out := buf.String()
	assert.Contains(t, out, "Not processed:   2")
	assert.Contains(t, out, "Success rate:    25%")
	assert.Contains(t, out, "Aborted:         session lost: browser would not start")
}

func TestNew_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	r, err := reporting.New("json", path)
	require.NoError(t, err)
	require.NoError(t, r.Write(sampleReport()))
	require.NoError(t, r.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got schemas.RunReport
	require.NoError(t, jsoniter.Unmarshal(data, &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 1, got.Skipped)
	require.Len(t, got.Errors, 2)
	assert.Equal(t, "2002", got.Errors[0].Identifier)
}

func TestNew_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	r, err := reporting.New("YAML", path)
	require.NoError(t, err)
	require.NoError(t, r.Write(sampleReport()))
	require.NoError(t, r.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, 2, got["total"])
}

func TestNew_Stdout(t *testing.T) {
	r, err := reporting.New("text", "")
	require.NoError(t, err)
	assert.NoError(t, r.Close())
}

func TestNew_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.sarif")
	r, err := reporting.New("sarif", path)
	assert.Error(t, err)
	assert.Nil(t, r)
	assert.Contains(t, err.Error(), "unsupported output format: sarif")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
