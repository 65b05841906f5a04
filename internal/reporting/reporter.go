// -- internal/reporting/reporter.go --
package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/xkilldash9x/courier-cli/api/schemas"
	"gopkg.in/yaml.v3"
)

// Supported report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Reporter writes a run report to an output.
type Reporter interface {
	// Write renders one report.
	Write(report *schemas.RunReport) error
	// Close finalizes the report and closes any underlying file.
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a reporter for format, writing to outputPath. An empty path or
// "stdout" writes to standard output.
func New(format, outputPath string) (Reporter, error) {
	var encode func(io.Writer, *schemas.RunReport) error
	switch strings.ToLower(format) {
	case FormatText:
		encode = renderText
	case FormatJSON:
		encode = encodeJSON
	case FormatYAML:
		encode = encodeYAML
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	var writer io.WriteCloser
	if outputPath == "" || outputPath == "stdout" {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}
	return &reporter{w: writer, encode: encode}, nil
}

// NewText renders the human-readable summary to w.
func NewText(w io.Writer) Reporter {
	return &reporter{w: &nopWriteCloser{w}, encode: renderText}
}

type reporter struct {
	w      io.WriteCloser
	encode func(io.Writer, *schemas.RunReport) error
}

func (r *reporter) Write(report *schemas.RunReport) error {
	return r.encode(r.w, report)
}

func (r *reporter) Close() error {
	return r.w.Close()
}

func encodeJSON(w io.Writer, report *schemas.RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return nil
}

func encodeYAML(w io.Writer, report *schemas.RunReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode YAML report: %w", err)
	}
	return enc.Close()
}
