// File: internal/orchestrator/diagnostics.go
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/xkilldash9x/courier-cli/api/schemas"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"go.uber.org/zap"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Diagnostics saves a screenshot of the page when a task does not succeed.
// It never returns errors; problems are logged.
type Diagnostics struct {
	dir     string
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewDiagnostics writes screenshots into dir.
func NewDiagnostics(dir string, timeout time.Duration, logger *zap.Logger) *Diagnostics {
	return &Diagnostics{dir: dir, timeout: timeout, logger: logger.Named("diagnostics"), now: time.Now}
}

// Capture stores a screenshot named after the status and identifier.
func (d *Diagnostics) Capture(ctx context.Context, page browser.Page, task schemas.Task, status schemas.OutcomeStatus) {
	if page.Closed() {
		d.logger.Debug("Page closed; no screenshot.", zap.String("identifier", task.Identifier))
		return
	}
	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	data, err := page.Screenshot(shotCtx)
	if err != nil {
		d.logger.Warn("Screenshot failed.", zap.String("identifier", task.Identifier), zap.Error(err))
		return
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		d.logger.Warn("Could not create screenshot directory.", zap.String("dir", d.dir), zap.Error(err))
		return
	}
	name := fmt.Sprintf("%s_%s_%d.png",
		strings.ToLower(string(status)),
		unsafeChars.ReplaceAllString(task.Identifier, "_"),
		d.now().UnixMilli())
	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		d.logger.Warn("Could not write screenshot.", zap.String("path", path), zap.Error(err))
		return
	}
	d.logger.Info("Screenshot saved.", zap.String("path", path))
}
