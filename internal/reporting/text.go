package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xkilldash9x/courier-cli/api/schemas"
)

const rule = "=================================================="

// renderText writes the end-of-run summary.
func renderText(w io.Writer, r *schemas.RunReport) error {
	var b strings.Builder
	b.WriteString(rule + "\n")
	if r.Rehearsal {
		b.WriteString("Run summary (rehearsal)\n")
	} else {
		b.WriteString("Run summary\n")
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Execution time:  %s\n", r.Duration().Round(time.Second))
	fmt.Fprintf(&b, "Total documents: %d\n", r.Total)
	if r.Found > r.Total {
		fmt.Fprintf(&b, "Not processed:   %d\n", r.Found-r.Total)
	}
	fmt.Fprintf(&b, "Succeeded:       %d\n", r.Succeeded)
	fmt.Fprintf(&b, "Failed:          %d\n", r.Failed)
	fmt.Fprintf(&b, "Skipped:         %d\n", r.Skipped)
	fmt.Fprintf(&b, "Success rate:    %d%%\n", r.SuccessRate())
	if r.Aborted != "" {
		fmt.Fprintf(&b, "Aborted:         %s\n", r.Aborted)
	}
	if len(r.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for i, e := range r.Errors {
			if e.Identifier != "" {
				fmt.Fprintf(&b, "  %d. %s (%s): %s\n", i+1, e.Document, e.Identifier, e.Message)
			} else {
				fmt.Fprintf(&b, "  %d. %s: %s\n", i+1, e.Document, e.Message)
			}
		}
	}
	b.WriteString(rule + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}
