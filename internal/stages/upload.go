// File: internal/stages/upload.go
package stages

import (
	"context"
	"strings"

	"github.com/xkilldash9x/courier-cli/api/schemas"
	"github.com/xkilldash9x/courier-cli/internal/browser"
	"github.com/xkilldash9x/courier-cli/internal/selector"
	"go.uber.org/zap"
)

// SavedURLFragment marks the listing page the application returns to after
// a successful save.
const SavedURLFragment = "ta-summary"

// UploadAndSave attaches the task's document to the open record and saves
// it. It moves the workflow from Uploading to Saving on its own.
type UploadAndSave struct{}

func (UploadAndSave) Name() string                 { return "upload-and-save" }
func (UploadAndSave) State() schemas.WorkflowState { return schemas.StateUploading }

func (u UploadAndSave) Execute(ctx context.Context, env *Env, task schemas.Task) (Result, error) {
	log := env.Logger.With(zap.String("stage", u.Name()), zap.String("identifier", task.Identifier))

	input, err := u.fileInput(ctx, env)
	if err != nil {
		return Result{}, err
	}
	if err := input.SetFiles(ctx, task.Document); err != nil {
		return Result{}, schemas.NewStageError(schemas.KindUploadFailure, schemas.StateUploading, "could not select document", err)
	}
	log.Debug("Document selected.", zap.String("document", task.Document))

	if confirm, err := env.Resolver.Resolve(ctx, env.Page, RoleConfirmUpload); err == nil {
		if _, err := selector.Activate(ctx, env.Page, confirm.Element, selector.Clicks...); err != nil {
			log.Warn("Confirm upload control could not be activated.", zap.Error(err))
		}
	}

	confirmed, rejection := u.awaitUpload(ctx, env)
	switch {
	case rejection != "":
		se := schemas.NewStageError(schemas.KindUploadFailure, schemas.StateUploading, "upload rejected: "+rejection, nil)
		se.Role = RoleUploadError.Name
		return Result{}, se
	case env.Page.Closed():
		return Result{}, schemas.NewStageError(schemas.KindUploadFailure, schemas.StateUploading, "page closed during upload", nil)
	case confirmed:
		log.Info("Upload confirmed.")
		u.dismissModal(ctx, env, log)
	default:
		// Portals word the success message freely; only a visible error
		// fails the upload.
		log.Warn("Upload success not observed; continuing to save.")
		u.dismissModal(ctx, env, log)
	}

	env.enter(schemas.StateSaving)
	save, err := env.Resolver.Await(ctx, env.Page, RoleSave, env.Timing.Wait)
	if err != nil {
		return Result{}, notFound(schemas.KindElementNotFound, schemas.StateSaving, RoleSave, "save control not found", err)
	}
	if _, err := selector.Activate(ctx, env.Page, save.Element, selector.Clicks...); err != nil {
		return Result{}, schemas.NewStageError(schemas.KindElementNotFound, schemas.StateSaving, "could not activate save", err)
	}
	settleOrWarn(ctx, env, "save")

	if u.awaitSaved(ctx, env) {
		log.Info("Save confirmed.")
	} else {
		// Some successful saves render no signal, so this cannot be told
		// apart from a failed save.
		log.Warn("Save confirmation not observed; assuming the record was saved.")
	}
	return Result{}, nil
}

// fileInput resolves the file input, opening the upload dialog first when
// none is present yet.
func (u UploadAndSave) fileInput(ctx context.Context, env *Env) (browser.Element, error) {
	if m, err := env.Resolver.Resolve(ctx, env.Page, RoleFileInput); err == nil {
		return m.Element, nil
	}
	open, err := env.Resolver.Resolve(ctx, env.Page, RoleOpenUpload)
	if err != nil {
		return nil, notFound(schemas.KindUploadFailure, schemas.StateUploading, RoleOpenUpload, "no file input and no upload control", err)
	}
	if _, err := selector.Activate(ctx, env.Page, open.Element, selector.Clicks...); err != nil {
		return nil, schemas.NewStageError(schemas.KindUploadFailure, schemas.StateUploading, "could not open upload dialog", err)
	}
	if err := pause(ctx, env.Timing.AfterClick); err != nil {
		return nil, err
	}
	m, err := env.Resolver.Await(ctx, env.Page, RoleFileInput, env.Timing.Wait)
	if err != nil {
		return nil, notFound(schemas.KindUploadFailure, schemas.StateUploading, RoleFileInput, "file input did not appear", err)
	}
	return m.Element, nil
}

// dismissModal closes a success dialog if one is showing. Failure is logged
// only; the record may already be savable.
func (u UploadAndSave) dismissModal(ctx context.Context, env *Env, log *zap.Logger) {
	if _, err := env.Resolver.Resolve(ctx, env.Page, RoleModal); err != nil {
		return
	}
	var ok browser.Element
	if m, err := env.Resolver.Resolve(ctx, env.Page, RoleModalOK); err == nil {
		ok = m.Element
	}
	method, err := selector.Activate(ctx, env.Page, ok, selector.Escalating...)
	if err != nil {
		log.Warn("Could not dismiss success dialog; continuing to save.", zap.Error(err))
		return
	}
	log.Debug("Success dialog dismissed.", zap.Stringer("method", method))
	if err := pause(ctx, env.Timing.AfterClick); err != nil {
		log.Debug("Interrupted after dismissing dialog.", zap.Error(err))
	}
}

// awaitUpload waits for the upload dialog to report success or an error.
// rejection carries the error text when one is shown.
func (u UploadAndSave) awaitUpload(ctx context.Context, env *Env) (confirmed bool, rejection string) {
	check := func(ctx context.Context) (bool, error) {
		if m, err := env.Resolver.Resolve(ctx, env.Page, RoleUploadError); err == nil {
			text, _ := m.Element.Text(ctx)
			rejection = strings.TrimSpace(text)
			if rejection == "" {
				rejection = "error shown in upload dialog"
			}
			return true, nil
		}
		_, err := env.Resolver.Resolve(ctx, env.Page, RoleUploadSuccess)
		confirmed = err == nil
		return confirmed, nil
	}
	if done, _ := check(ctx); done || env.Timing.Readiness <= 0 {
		return confirmed, rejection
	}
	waitCtx, cancel := context.WithTimeout(ctx, env.Timing.Readiness)
	defer cancel()
	_ = browser.Poll(waitCtx, browser.DefaultPollInterval, check)
	return confirmed, rejection
}

// awaitSaved races the save confirmation marker against a redirect to the
// listing page.
func (u UploadAndSave) awaitSaved(ctx context.Context, env *Env) bool {
	check := func(ctx context.Context) (bool, error) {
		if url, err := env.Page.URL(ctx); err == nil && strings.Contains(strings.ToLower(url), SavedURLFragment) {
			return true, nil
		}
		_, err := env.Resolver.Resolve(ctx, env.Page, RoleSaveConfirmation)
		return err == nil, nil
	}
	if ok, _ := check(ctx); ok || env.Timing.Readiness <= 0 {
		return ok
	}
	waitCtx, cancel := context.WithTimeout(ctx, env.Timing.Readiness)
	defer cancel()
	return browser.Poll(waitCtx, browser.DefaultPollInterval, check) == nil
}
