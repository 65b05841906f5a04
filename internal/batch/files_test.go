package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("%PDF-1.4 "+n), 0o644))
	}
}

func TestScan_FiltersAndOrders(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.pdf", "A.PDF", ".hidden.pdf", "notes.txt", "a.pdf")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755))

	docs, err := Scan(dir, []string{".pdf"})
	require.NoError(t, err)

	want := []string{
		filepath.Join(dir, "A.PDF"),
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "b.pdf"),
	}
	if diff := cmp.Diff(want, docs); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_MissingFolder(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"), []string{".pdf"})
	assert.Error(t, err)
}

func TestSplitIdentifiers(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/in/1001.pdf", []string{"1001"}},
		{"/in/2002,2003.pdf", []string{"2002", "2003"}},
		{"/in/ 2002 , ,2003 .pdf", []string{"2002", "2003"}},
		{"/in/,.pdf", nil},
		{"/in/A-1.v2.pdf", []string{"A-1.v2"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitIdentifiers(tt.path, ","))
		})
	}
}

func TestMoveUnique_ResolvesCollisions(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(in, "done")
	require.NoError(t, os.MkdirAll(out, 0o755))
	touch(t, out, "X.pdf", "X_1.pdf")
	touch(t, in, "X.pdf")

	dst, err := MoveUnique(filepath.Join(in, "X.pdf"), out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "X_2.pdf"), dst)

	data, err := os.ReadFile(filepath.Join(out, "X.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 X.pdf", string(data), "existing file must not be overwritten")
	assert.NoFileExists(t, filepath.Join(in, "X.pdf"))
}

func TestMoveUnique_CreatesDestination(t *testing.T) {
	in := t.TempDir()
	touch(t, in, "1001.pdf")

	dst, err := MoveUnique(filepath.Join(in, "1001.pdf"), filepath.Join(in, "fail"))
	require.NoError(t, err)
	assert.FileExists(t, dst)
}
