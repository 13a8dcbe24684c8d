package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/clipworks/shortform-backend/internal/apierr"
	"github.com/clipworks/shortform-backend/internal/types"
)

func TestRequestTransitionRequiresAdmin(t *testing.T) {
	fx := newWorkflowFixture(t)
	short := seedShort(t, fx.db, types.ShortStatusIdea)

	_, err := fx.workflow.RequestTransition(context.Background(), short.ID, types.ShortStatusScript)
	if err == nil {
		t.Fatal("expected an error for an unauthenticated caller")
	}
	apiErr, ok := apierr.From(err)
	if !ok || apiErr.Status != http.StatusForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	user := seedUser(t, fx.db, "worker@example.com")
	_, err = fx.workflow.RequestTransition(userCtx(user.ID), short.ID, types.ShortStatusScript)
	apiErr, ok = apierr.From(err)
	if !ok || apiErr.Status != http.StatusForbidden {
		t.Fatalf("expected forbidden for a non-admin, got %v", err)
	}
}

func TestRequestTransitionUnknownTarget(t *testing.T) {
	fx := newWorkflowFixture(t)
	short := seedShort(t, fx.db, types.ShortStatusIdea)

	_, err := fx.workflow.RequestTransition(adminCtx(), short.ID, types.ShortStatus("published"))
	apiErr, ok := apierr.From(err)
	if !ok || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRequestTransitionMissingArtifactsListsAll(t *testing.T) {
	fx := newWorkflowFixture(t)
	short := seedShort(t, fx.db, types.ShortStatusScript)

	_, err := fx.workflow.RequestTransition(adminCtx(), short.ID, types.ShortStatusClipping)
	apiErr, ok := apierr.From(err)
	if !ok || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected validation error, got %v", err)
	}
	missing, ok := apiErr.Details.([]types.FileType)
	if !ok {
		t.Fatalf("expected missing artifact details, got %T", apiErr.Details)
	}
	if len(missing) != 2 || missing[0] != types.FileTypeScript || missing[1] != types.FileTypeAudio {
		t.Fatalf("expected script and audio to be reported missing, got %v", missing)
	}

	// Adding only the script still leaves audio outstanding.
	seedFile(t, fx.db, short.ID, types.FileTypeScript)
	_, err = fx.workflow.RequestTransition(adminCtx(), short.ID, types.ShortStatusClipping)
	apiErr, ok = apierr.From(err)
	if !ok {
		t.Fatalf("expected api error, got %v", err)
	}
	missing, _ = apiErr.Details.([]types.FileType)
	if len(missing) != 1 || missing[0] != types.FileTypeAudio {
		t.Fatalf("expected only audio to be reported missing, got %v", missing)
	}
}

func TestRequestTransitionSucceedsWithArtifacts(t *testing.T) {
	fx := newWorkflowFixture(t)
	short := seedShort(t, fx.db, types.ShortStatusScript)
	seedFile(t, fx.db, short.ID, types.FileTypeScript)
	seedFile(t, fx.db, short.ID, types.FileTypeAudio)

	updated, err := fx.workflow.RequestTransition(adminCtx(), short.ID, types.ShortStatusClipping)
	if err != nil {
		t.Fatalf("RequestTransition: %v", err)
	}
	if updated.Status != types.ShortStatusClipping {
		t.Fatalf("expected status clipping, got %s", updated.Status)
	}

	var reloaded types.Short
	if err := fx.db.First(&reloaded, "id = ?", short.ID).Error; err != nil {
		t.Fatalf("reload short: %v", err)
	}
	if reloaded.Status != types.ShortStatusClipping {
		t.Fatalf("expected persisted status clipping, got %s", reloaded.Status)
	}
}

func TestRequestTransitionEditingNeedsCompletedClips(t *testing.T) {
	fx := newWorkflowFixture(t)
	short := seedShort(t, fx.db, types.ShortStatusClips)
	seedFile(t, fx.db, short.ID, types.FileTypeClipsZip)

	// Artifact present but clips work never marked complete.
	_, err := fx.workflow.RequestTransition(adminCtx(), short.ID, types.ShortStatusEditing)
	apiErr, ok := apierr.From(err)
	if !ok || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected validation error, got %v", err)
	}

	user := seedUser(t, fx.db, "clipper@example.com")
	seedAssignment(t, fx.db, short.ID, user.ID, types.RoleClipper)
	seedRate(t, fx.db, user.ID, types.RoleClipper, 25)
	fx.db.Model(&types.Short{}).Where("id = ?", short.ID).Update("status", types.ShortStatusClipping)
	if _, err := fx.workflow.MarkRoleComplete(userCtx(user.ID), short.ID, types.RoleClipper); err != nil {
		t.Fatalf("MarkRoleComplete: %v", err)
	}
	fx.db.Model(&types.Short{}).Where("id = ?", short.ID).Update("status", types.ShortStatusClips)

	updated, err := fx.workflow.RequestTransition(adminCtx(), short.ID, types.ShortStatusEditing)
	if err != nil {
		t.Fatalf("RequestTransition after completion: %v", err)
	}
	if updated.Status != types.ShortStatusEditing {
		t.Fatalf("expected status editing, got %s", updated.Status)
	}
}

func TestRequestTransitionReadyToUploadGate(t *testing.T) {
	fx := newWorkflowFixture(t)
	short := seedShort(t, fx.db, types.ShortStatusEditing)

	// No final video yet.
	_, err := fx.workflow.RequestTransition(adminCtx(), short.ID, types.ShortStatusReadyToUpload)
	apiErr, ok := apierr.From(err)
	if !ok || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected validation error, got %v", err)
	}
	missing, ok := apiErr.Details.([]types.FileType)
	if !ok || len(missing) != 1 || missing[0] != types.FileTypeFinalVideo {
		t.Fatalf("expected final_video to be reported missing, got %v", apiErr.Details)
	}

	// Video present but editing work never marked complete.
	seedFile(t, fx.db, short.ID, types.FileTypeFinalVideo)
	_, err = fx.workflow.RequestTransition(adminCtx(), short.ID, types.ShortStatusReadyToUpload)
	apiErr, ok = apierr.From(err)
	if !ok || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected validation error for incomplete editing, got %v", err)
	}

	user := seedUser(t, fx.db, "editor@example.com")
	seedAssignment(t, fx.db, short.ID, user.ID, types.RoleEditor)
	seedRate(t, fx.db, user.ID, types.RoleEditor, 40)
	if _, err := fx.workflow.MarkRoleComplete(userCtx(user.ID), short.ID, types.RoleEditor); err != nil {
		t.Fatalf("MarkRoleComplete: %v", err)
	}

	updated, err := fx.workflow.RequestTransition(adminCtx(), short.ID, types.ShortStatusReadyToUpload)
	if err != nil {
		t.Fatalf("RequestTransition after editing completion: %v", err)
	}
	if updated.Status != types.ShortStatusReadyToUpload {
		t.Fatalf("expected status ready_to_upload, got %s", updated.Status)
	}

	// Uploaded has no gate beyond admin and existence.
	updated, err = fx.workflow.RequestTransition(adminCtx(), short.ID, types.ShortStatusUploaded)
	if err != nil {
		t.Fatalf("RequestTransition to uploaded: %v", err)
	}
	if updated.Status != types.ShortStatusUploaded {
		t.Fatalf("expected status uploaded, got %s", updated.Status)
	}
}

func TestRequestTransitionChangeRequestsStampTimestamps(t *testing.T) {
	fx := newWorkflowFixture(t)
	short := seedShort(t, fx.db, types.ShortStatusClips)
	seedFile(t, fx.db, short.ID, types.FileTypeScript)
	seedFile(t, fx.db, short.ID, types.FileTypeAudio)

	updated, err := fx.workflow.RequestTransition(adminCtx(), short.ID, types.ShortStatusClipChanges)
	if err != nil {
		t.Fatalf("RequestTransition: %v", err)
	}
	if updated.ClipChangesRequestedAt == nil {
		t.Fatal("expected clip_changes_requested_at to be set")
	}
}

func TestMarkRoleCompleteGateOrder(t *testing.T) {
	fx := newWorkflowFixture(t)
	user := seedUser(t, fx.db, "clipper@example.com")

	// Wrong status comes first.
	short := seedShort(t, fx.db, types.ShortStatusScript)
	_, err := fx.workflow.MarkRoleComplete(userCtx(user.ID), short.ID, types.RoleClipper)
	apiErr, ok := apierr.From(err)
	if !ok || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected validation error for wrong status, got %v", err)
	}

	// Right status, missing artifact.
	fx.db.Model(&types.Short{}).Where("id = ?", short.ID).Update("status", types.ShortStatusClipping)
	_, err = fx.workflow.MarkRoleComplete(userCtx(user.ID), short.ID, types.RoleClipper)
	apiErr, ok = apierr.From(err)
	if !ok || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected validation error for missing artifact, got %v", err)
	}
	if apiErr.Details == nil {
		t.Fatal("expected the missing artifact to be named in details")
	}

	// Artifact present, no assignment.
	seedFile(t, fx.db, short.ID, types.FileTypeClipsZip)
	_, err = fx.workflow.MarkRoleComplete(userCtx(user.ID), short.ID, types.RoleClipper)
	apiErr, ok = apierr.From(err)
	if !ok || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected validation error for missing assignment, got %v", err)
	}

	// Assignment present, no rate.
	seedAssignment(t, fx.db, short.ID, user.ID, types.RoleClipper)
	_, err = fx.workflow.MarkRoleComplete(userCtx(user.ID), short.ID, types.RoleClipper)
	apiErr, ok = apierr.From(err)
	if !ok || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected validation error for missing rate, got %v", err)
	}

	// Rate configured; completion goes through.
	seedRate(t, fx.db, user.ID, types.RoleClipper, 25)
	updated, err := fx.workflow.MarkRoleComplete(userCtx(user.ID), short.ID, types.RoleClipper)
	if err != nil {
		t.Fatalf("MarkRoleComplete: %v", err)
	}
	if updated.ClipsCompletedAt == nil {
		t.Fatal("expected clips_completed_at to be set")
	}

	var assignment types.Assignment
	if err := fx.db.First(&assignment, "short_id = ? AND role = ?", short.ID, types.RoleClipper).Error; err != nil {
		t.Fatalf("reload assignment: %v", err)
	}
	if assignment.CompletedAt == nil {
		t.Fatal("expected assignment completed_at to be set")
	}
	if assignment.RateAmount == nil || *assignment.RateAmount != 25 {
		t.Fatalf("expected rate snapshot of 25, got %v", assignment.RateAmount)
	}

	var payments []types.Payment
	if err := fx.db.Find(&payments, "short_id = ? AND role = ?", short.ID, types.RoleClipper).Error; err != nil {
		t.Fatalf("load payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected exactly one derived payment, got %d", len(payments))
	}
	if payments[0].Amount != 25 || payments[0].Status != types.PaymentStatusPending {
		t.Fatalf("unexpected payment %+v", payments[0])
	}
}

func TestMarkRoleCompleteIsIdempotent(t *testing.T) {
	fx := newWorkflowFixture(t)
	user := seedUser(t, fx.db, "editor@example.com")
	short := seedShort(t, fx.db, types.ShortStatusEditing)
	seedFile(t, fx.db, short.ID, types.FileTypeFinalVideo)
	seedAssignment(t, fx.db, short.ID, user.ID, types.RoleEditor)
	seedRate(t, fx.db, user.ID, types.RoleEditor, 40)

	first, err := fx.workflow.MarkRoleComplete(userCtx(user.ID), short.ID, types.RoleEditor)
	if err != nil {
		t.Fatalf("first MarkRoleComplete: %v", err)
	}
	second, err := fx.workflow.MarkRoleComplete(userCtx(user.ID), short.ID, types.RoleEditor)
	if err != nil {
		t.Fatalf("second MarkRoleComplete: %v", err)
	}
	if first.EditingCompletedAt == nil || second.EditingCompletedAt == nil {
		t.Fatal("expected editing_completed_at on both calls")
	}
	if !first.EditingCompletedAt.Equal(*second.EditingCompletedAt) {
		t.Fatal("expected the completion timestamp to be unchanged on repeat")
	}

	var count int64
	if err := fx.db.Model(&types.Payment{}).Where("short_id = ? AND role = ?", short.ID, types.RoleEditor).Count(&count).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one payment after repeat completion, got %d", count)
	}
}

func TestMarkRoleCompleteRejectsUnknownRole(t *testing.T) {
	fx := newWorkflowFixture(t)
	short := seedShort(t, fx.db, types.ShortStatusClipping)

	_, err := fx.workflow.MarkRoleComplete(context.Background(), short.ID, types.RoleScriptWriter)
	apiErr, ok := apierr.From(err)
	if !ok || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected validation error for a role with no gate, got %v", err)
	}
}
