// File: internal/stages/select.go
package stages

import (
	"context"
	"regexp"
	"strings"

	"github.com/xkilldash9x/courier-cli/api/schemas"
	"github.com/xkilldash9x/courier-cli/internal/selector"
	"go.uber.org/zap"
)

var pagingTotal = regexp.MustCompile(`(\d+)\s+to\s+(\d+)\s+of\s+(\d+)`)

// SelectRecord opens the first qualifying search result in its edit view.
// A search with zero results is skipped.
type SelectRecord struct{}

func (SelectRecord) Name() string                 { return "select-record" }
func (SelectRecord) State() schemas.WorkflowState { return schemas.StateSelectingRecord }

func (s SelectRecord) Execute(ctx context.Context, env *Env, task schemas.Task) (Result, error) {
	log := env.Logger.With(zap.String("stage", s.Name()), zap.String("identifier", task.Identifier))

	paging, hasPaging := "", false
	if m, err := env.Resolver.Resolve(ctx, env.Page, RolePagination); err == nil {
		paging, _ = m.Element.Text(ctx)
		hasPaging = true
		log.Debug("Pagination status.", zap.String("text", paging))
		if ZeroResults(paging) {
			return Result{Skipped: true, Reason: "No data found"}, nil
		}
	}

	row, err := env.Resolver.Resolve(ctx, env.Page, RoleResultRow)
	if err != nil {
		if !hasPaging {
			log.Info("No pagination status and no result rows; treating as no data.")
			return Result{Skipped: true, Reason: "No data found"}, nil
		}
		return Result{}, notFound(schemas.KindElementNotFound, s.State(), RoleResultRow,
			"no qualifying row despite results ("+paging+")", err)
	}
	if _, err := selector.Activate(ctx, env.Page, row.Element, selector.Clicks...); err != nil {
		return Result{}, schemas.NewStageError(schemas.KindElementNotFound, s.State(), "could not select result row", err)
	}
	if err := pause(ctx, env.Timing.AfterClick); err != nil {
		return Result{}, err
	}

	edit, err := env.Resolver.Await(ctx, env.Page, RoleEditControl, env.Timing.Wait)
	if err != nil {
		return Result{}, notFound(schemas.KindElementNotFound, s.State(), RoleEditControl, "edit control not found", err)
	}
	if _, err := selector.Activate(ctx, env.Page, edit.Element, selector.Clicks...); err != nil {
		return Result{}, schemas.NewStageError(schemas.KindElementNotFound, s.State(), "could not open edit view", err)
	}

	settleOrWarn(ctx, env, "open record")
	if _, err := env.Resolver.Await(ctx, env.Page, RoleEditView, env.Timing.Readiness); err != nil {
		log.Warn("Edit view marker not found; proceeding anyway.")
	}
	log.Info("Record opened.")
	return Result{}, nil
}

// ZeroResults reports whether a pagination status text means no results.
func ZeroResults(status string) bool {
	text := strings.Join(strings.Fields(status), " ")
	if m := pagingTotal.FindStringSubmatch(text); m != nil {
		return m[3] == "0"
	}
	for _, phrase := range zeroResultPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
