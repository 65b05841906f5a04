// File: internal/stages/search.go
package stages

import (
	"context"
	"time"

	"github.com/xkilldash9x/courier-cli/api/schemas"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"github.com/xkilldash9x/courier-cli/internal/selector"
	"go.uber.org/zap"
)

// Search fills the year and identifier criteria and runs the search.
type Search struct{}

func (Search) Name() string                 { return "search" }
func (Search) State() schemas.WorkflowState { return schemas.StateSearching }

func (s Search) Execute(ctx context.Context, env *Env, task schemas.Task) (Result, error) {
	log := env.Logger.With(zap.String("stage", s.Name()), zap.String("identifier", task.Identifier))

	if err := s.probe(ctx, env, log); err != nil {
		return Result{}, err
	}

	year, err := env.Resolver.Resolve(ctx, env.Page, RoleYearInput)
	if err != nil {
		return Result{}, notFound(schemas.KindElementNotFound, s.State(), RoleYearInput, "year field not found", err)
	}
	if err := year.Element.Fill(ctx, env.Settings.Year); err != nil {
		return Result{}, schemas.NewStageError(schemas.KindElementNotFound, s.State(), "could not enter year", err)
	}

	ident, err := env.Resolver.Resolve(ctx, env.Page, RoleIdentifierInput)
	if err != nil {
		return Result{}, notFound(schemas.KindElementNotFound, s.State(), RoleIdentifierInput, "identifier field not found", err)
	}
	if err := ident.Element.Fill(ctx, task.Identifier); err != nil {
		return Result{}, schemas.NewStageError(schemas.KindElementNotFound, s.State(), "could not enter identifier", err)
	}

	if btn, err := env.Resolver.Resolve(ctx, env.Page, RoleSearchButton); err == nil {
		if _, err := selector.Activate(ctx, env.Page, btn.Element, selector.Clicks...); err != nil {
			return Result{}, schemas.NewStageError(schemas.KindElementNotFound, s.State(), "could not run search", err)
		}
	} else {
		log.Warn("Search button not found; submitting with Enter.")
		if err := ident.Element.Press(ctx, browser.KeyEnter); err != nil {
			return Result{}, notFound(schemas.KindElementNotFound, s.State(), RoleSearchButton, "could not run search", err)
		}
	}

	settleOrWarn(ctx, env, "search")
	if err := pause(ctx, env.Timing.AfterClick); err != nil {
		return Result{}, err
	}
	log.Info("Search submitted.", zap.String("year", env.Settings.Year))
	return Result{}, nil
}

// probe waits for the asynchronously rendered search form with linear
// backoff. An exhausted probe is not fatal; field resolution decides.
func (s Search) probe(ctx context.Context, env *Env, log *zap.Logger) error {
	attempts := env.Timing.ProbeAttempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 1; i <= attempts; i++ {
		if _, err := env.Resolver.Resolve(ctx, env.Page, RoleSearchReady); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		log.Debug("Search form not ready yet.", zap.Int("attempt", i))
		if err := pause(ctx, env.Timing.ProbeBackoff*time.Duration(i)); err != nil {
			return err
		}
	}
	log.Warn("Search form probe exhausted.", zap.Int("attempts", attempts))
	return nil
}
