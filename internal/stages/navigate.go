// File: internal/stages/navigate.go
package stages

import (
	"context"

	"github.com/xkilldash9x/courier-cli/api/schemas"
	"github.com/xkilldash9x/courier-cli/internal/selector"
	"go.uber.org/zap"
)

// Navigate clicks through the menu from the dashboard to the listing page.
type Navigate struct {
	// Menu is the ordered click path. Defaults to Setup then Summary.
	Menu []selector.Role
}

func (Navigate) Name() string                 { return "navigate" }
func (Navigate) State() schemas.WorkflowState { return schemas.StateNavigating }

func (n Navigate) menu() []selector.Role {
	if len(n.Menu) > 0 {
		return n.Menu
	}
	return []selector.Role{RoleMenuSetup, RoleMenuSummary}
}

func (n Navigate) Execute(ctx context.Context, env *Env, task schemas.Task) (Result, error) {
	log := env.Logger.With(zap.String("stage", n.Name()))

	if _, err := env.Resolver.Await(ctx, env.Page, RoleLoggedIn, env.Timing.Wait); err != nil {
		return Result{}, notFound(schemas.KindNavigationFailure, n.State(), RoleLoggedIn, "dashboard not loaded", err)
	}

	for _, role := range n.menu() {
		m, err := env.Resolver.Await(ctx, env.Page, role, env.Timing.Wait)
		if err != nil {
			return Result{}, notFound(schemas.KindNavigationFailure, n.State(), role, "menu control not found", err)
		}
		if _, err := selector.Activate(ctx, env.Page, m.Element, selector.Clicks...); err != nil {
			return Result{}, schemas.NewStageError(schemas.KindNavigationFailure, n.State(), "could not open "+role.Name, err)
		}
		log.Debug("Menu opened.", zap.String("role", role.Name))
		if err := pause(ctx, env.Timing.AfterClick); err != nil {
			return Result{}, err
		}
	}

	if err := settle(ctx, env); err != nil {
		return Result{}, schemas.NewStageError(schemas.KindNavigationFailure, n.State(), "listing page did not settle", err)
	}
	if _, err := env.Resolver.Await(ctx, env.Page, RoleSearchReady, env.Timing.Readiness); err != nil {
		log.Warn("Search form not detected; proceeding anyway.")
	}
	return Result{}, nil
}
