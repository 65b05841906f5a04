package batch

import (
	"strings"
	"testing"
)

func FuzzSplitIdentifiers(f *testing.F) {
	f.Add("1001", ",")
	f.Add("2002, 2003", ",")
	f.Add(" ,, 4004 ,", ",")
	f.Add("5005;5006", ";")
	f.Fuzz(func(t *testing.T, stem, delimiter string) {
		if delimiter == "" || strings.ContainsAny(stem, "/\x00") {
			return
		}
		ids := SplitIdentifiers("/in/"+stem+".pdf", delimiter)
		if len(ids) > strings.Count(stem, delimiter)+1 {
			t.Fatalf("%d identifiers from %d segments", len(ids), strings.Count(stem, delimiter)+1)
		}
		for _, id := range ids {
			if id == "" || id != strings.TrimSpace(id) {
				t.Fatalf("identifier %q is empty or untrimmed", id)
			}
			if strings.Contains(id, delimiter) {
				t.Fatalf("identifier %q contains delimiter %q", id, delimiter)
			}
		}
	})
}
