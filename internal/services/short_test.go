package services

import (
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/clipworks/shortform-backend/internal/apierr"
	"github.com/clipworks/shortform-backend/internal/repos"
	"github.com/clipworks/shortform-backend/internal/types"
)

type shortFixture struct {
	db     *gorm.DB
	shorts ShortService
}

func newShortFixture(t *testing.T) *shortFixture {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)

	shortRepo := repos.NewShortRepo(db, log)
	shortFileRepo := repos.NewShortFileRepo(db, log)
	assignmentRepo := repos.NewAssignmentRepo(db, log)
	payRateRepo := repos.NewPayRateRepo(db, log)
	userRepo := repos.NewUserRepo(db, log)

	return &shortFixture{
		db:     db,
		shorts: NewShortService(db, log, shortRepo, shortFileRepo, assignmentRepo, payRateRepo, userRepo),
	}
}

func TestAssignRoleOnePerShortAndRole(t *testing.T) {
	fx := newShortFixture(t)
	short := seedShort(t, fx.db, types.ShortStatusScript)
	first := seedUser(t, fx.db, "a@example.com")
	second := seedUser(t, fx.db, "b@example.com")

	assignment, err := fx.shorts.AssignRole(adminCtx(), short.ID, first.ID, types.RoleClipper, nil)
	if err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	if assignment.UserID != first.ID || assignment.Role != types.RoleClipper {
		t.Fatalf("unexpected assignment %+v", assignment)
	}

	_, err = fx.shorts.AssignRole(adminCtx(), short.ID, second.ID, types.RoleClipper, nil)
	apiErr, ok := apierr.From(err)
	if !ok || apiErr.Status != http.StatusConflict {
		t.Fatalf("expected conflict on a second clipper, got %v", err)
	}

	// A different role on the same short is fine.
	if _, err := fx.shorts.AssignRole(adminCtx(), short.ID, second.ID, types.RoleEditor, nil); err != nil {
		t.Fatalf("AssignRole editor: %v", err)
	}
}

func TestAssignRoleScriptWriterSetsOwner(t *testing.T) {
	fx := newShortFixture(t)
	short := seedShort(t, fx.db, types.ShortStatusIdea)
	writer := seedUser(t, fx.db, "writer@example.com")

	if _, err := fx.shorts.AssignRole(adminCtx(), short.ID, writer.ID, types.RoleScriptWriter, nil); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}

	var reloaded types.Short
	if err := fx.db.First(&reloaded, "id = ?", short.ID).Error; err != nil {
		t.Fatalf("reload short: %v", err)
	}
	if reloaded.ScriptWriterID == nil || *reloaded.ScriptWriterID != writer.ID {
		t.Fatal("expected script_writer_id to be set on the short")
	}
}

func TestAssignRoleRejectsIncentive(t *testing.T) {
	fx := newShortFixture(t)
	short := seedShort(t, fx.db, types.ShortStatusIdea)
	user := seedUser(t, fx.db, "a@example.com")

	_, err := fx.shorts.AssignRole(adminCtx(), short.ID, user.ID, types.RoleIncentive, nil)
	apiErr, ok := apierr.From(err)
	if !ok || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetRateUpserts(t *testing.T) {
	fx := newShortFixture(t)
	user := seedUser(t, fx.db, "clipper@example.com")

	if _, err := fx.shorts.SetRate(adminCtx(), user.ID, types.RoleClipper, 20, "per short"); err != nil {
		t.Fatalf("SetRate: %v", err)
	}
	if _, err := fx.shorts.SetRate(adminCtx(), user.ID, types.RoleClipper, 30, "raised"); err != nil {
		t.Fatalf("second SetRate: %v", err)
	}

	var rates []types.PayRate
	if err := fx.db.Find(&rates, "user_id = ? AND role = ?", user.ID, types.RoleClipper).Error; err != nil {
		t.Fatalf("load rates: %v", err)
	}
	if len(rates) != 1 {
		t.Fatalf("expected a single rate row after upsert, got %d", len(rates))
	}
	if rates[0].Amount != 30 {
		t.Fatalf("expected the updated amount 30, got %v", rates[0].Amount)
	}
}

func TestSetRateValidation(t *testing.T) {
	fx := newShortFixture(t)
	user := seedUser(t, fx.db, "clipper@example.com")

	_, err := fx.shorts.SetRate(adminCtx(), user.ID, types.RoleClipper, 0, "")
	apiErr, ok := apierr.From(err)
	if !ok || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}

	_, err = fx.shorts.SetRate(userCtx(user.ID), user.ID, types.RoleClipper, 20, "")
	apiErr, ok = apierr.From(err)
	if !ok || apiErr.Status != http.StatusForbidden {
		t.Fatalf("expected forbidden for a non-admin, got %v", err)
	}
}

func TestDeleteShortRemovesChildren(t *testing.T) {
	fx := newShortFixture(t)
	short := seedShort(t, fx.db, types.ShortStatusClipping)
	user := seedUser(t, fx.db, "clipper@example.com")
	seedFile(t, fx.db, short.ID, types.FileTypeScript)
	seedAssignment(t, fx.db, short.ID, user.ID, types.RoleClipper)

	if err := fx.shorts.DeleteShort(adminCtx(), short.ID); err != nil {
		t.Fatalf("DeleteShort: %v", err)
	}

	var shortCount, fileCount, assignmentCount int64
	fx.db.Model(&types.Short{}).Unscoped().Where("id = ?", short.ID).Count(&shortCount)
	fx.db.Model(&types.ShortFile{}).Where("short_id = ?", short.ID).Count(&fileCount)
	fx.db.Model(&types.Assignment{}).Where("short_id = ?", short.ID).Count(&assignmentCount)
	if shortCount != 0 || fileCount != 0 || assignmentCount != 0 {
		t.Fatalf("expected everything removed, got short=%d files=%d assignments=%d", shortCount, fileCount, assignmentCount)
	}
}

func TestListBoardExcludesDrafts(t *testing.T) {
	fx := newShortFixture(t)
	onBoard := seedShort(t, fx.db, types.ShortStatusScript)

	stage := types.DraftStageFirst
	draft := seedShort(t, fx.db, types.ShortStatusIdea)
	fx.db.Model(&types.Short{}).Where("id = ?", draft.ID).Update("script_draft_stage", stage)

	board, err := fx.shorts.ListBoard(adminCtx())
	if err != nil {
		t.Fatalf("ListBoard: %v", err)
	}
	if len(board) != 1 || board[0].ID != onBoard.ID {
		t.Fatalf("expected only the non-draft short on the board, got %d rows", len(board))
	}
}
