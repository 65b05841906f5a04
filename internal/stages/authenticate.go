// File: internal/stages/authenticate.go
package stages

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/courier-cli/api/schemas"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"github.com/xkilldash9x/courier-cli/internal/selector"
	"go.uber.org/zap"
)

// Authenticate logs in unless the page already shows an authenticated view.
// Without configured credentials authentication is skipped, not failed.
type Authenticate struct{}

func (Authenticate) Name() string                 { return "authenticate" }
func (Authenticate) State() schemas.WorkflowState { return schemas.StateAuthenticating }

func (a Authenticate) Execute(ctx context.Context, env *Env, task schemas.Task) (Result, error) {
	log := env.Logger.With(zap.String("stage", a.Name()))

	if cand, ok := env.Resolver.Present(ctx, env.Page, RoleLoggedIn); ok {
		log.Debug("Already authenticated.", zap.Stringer("indicator", cand))
		return Result{}, nil
	}
	if !env.Settings.CredentialsConfigured() {
		log.Warn("Credentials not configured; skipping authentication.")
		return Result{}, nil
	}

	if m, err := env.Resolver.Resolve(ctx, env.Page, RoleLoginStart); err == nil {
		method, err := selector.Activate(ctx, env.Page, m.Element, selector.Clicks...)
		if err != nil {
			return Result{}, a.fail("could not open the login form", err)
		}
		log.Info("Login initiated.", zap.Stringer("method", method))
		if err := pause(ctx, env.Timing.AfterClick); err != nil {
			return Result{}, err
		}
	} else {
		log.Debug("No login button; looking for the form directly.")
	}

	if _, err := env.Resolver.Await(ctx, env.Page, RoleLoginForm, env.Timing.Wait); err != nil {
		return Result{}, notFound(schemas.KindAuthenticationFailure, a.State(), RoleLoginForm, "no login form appeared", err)
	}

	user, err := env.Resolver.Resolve(ctx, env.Page, RoleUsername)
	if err != nil {
		return Result{}, notFound(schemas.KindAuthenticationFailure, a.State(), RoleUsername, "username field not found", err)
	}
	if err := user.Element.Fill(ctx, env.Settings.Username); err != nil {
		return Result{}, a.fail("could not enter username", err)
	}
	pass, err := env.Resolver.Resolve(ctx, env.Page, RolePassword)
	if err != nil {
		return Result{}, notFound(schemas.KindAuthenticationFailure, a.State(), RolePassword, "password field not found", err)
	}
	if err := pass.Element.Fill(ctx, env.Settings.Password); err != nil {
		return Result{}, a.fail("could not enter password", err)
	}

	if submit, err := env.Resolver.Resolve(ctx, env.Page, RoleLoginSubmit); err == nil {
		if _, err := selector.Activate(ctx, env.Page, submit.Element, selector.Clicks...); err != nil {
			return Result{}, a.fail("could not submit credentials", err)
		}
	} else {
		log.Debug("No submit control; submitting with Enter.")
		if err := pass.Element.Press(ctx, browser.KeyEnter); err != nil {
			return Result{}, a.fail("could not submit credentials", err)
		}
	}

	if err := settle(ctx, env); err != nil {
		return Result{}, a.fail("page did not settle after login", err)
	}
	if _, err := env.Resolver.Await(ctx, env.Page, RoleLoggedIn, env.Timing.Readiness); err != nil {
		return Result{}, notFound(schemas.KindAuthenticationFailure, a.State(), RoleLoggedIn, "login did not reach an authenticated page", err)
	}
	log.Info("Authenticated.")
	return Result{}, nil
}

func (a Authenticate) fail(detail string, err error) error {
	return schemas.NewStageError(schemas.KindAuthenticationFailure, a.State(), detail, fmt.Errorf("%s: %w", a.Name(), err))
}
