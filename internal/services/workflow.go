package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clipworks/shortform-backend/internal/apierr"
	"github.com/clipworks/shortform-backend/internal/logger"
	"github.com/clipworks/shortform-backend/internal/repos"
	"github.com/clipworks/shortform-backend/internal/requestdata"
	"github.com/clipworks/shortform-backend/internal/types"
)

type WorkflowService interface {
	// RequestTransition moves a short to the target status. Admin only.
	// Every gate in the requirement table is checked before any write.
	RequestTransition(ctx context.Context, shortID uuid.UUID, target types.ShortStatus) (*types.Short, error)
	// MarkRoleComplete records a clipper's or editor's finished work,
	// snapshots the rate onto the assignment and derives the payment.
	// A second call after success is a no-op returning the completed state.
	MarkRoleComplete(ctx context.Context, shortID uuid.UUID, role types.Role) (*types.Short, error)
}

// priorStage names a completion timestamp that must already be set before
// a transition is allowed.
type priorStage string

const (
	priorNone    priorStage = ""
	priorClips   priorStage = "clips"
	priorEditing priorStage = "editing"
)

type transitionRequirement struct {
	artifacts []types.FileType
	prior     priorStage
}

// transitionRequirements is the precondition table keyed by target status.
// Statuses absent from the table have no gate beyond admin + existence.
var transitionRequirements = map[types.ShortStatus]transitionRequirement{
	types.ShortStatusClipping:       {artifacts: []types.FileType{types.FileTypeScript, types.FileTypeAudio}},
	types.ShortStatusClips:          {artifacts: []types.FileType{types.FileTypeScript, types.FileTypeAudio}},
	types.ShortStatusEditing:        {artifacts: []types.FileType{types.FileTypeClipsZip}, prior: priorClips},
	types.ShortStatusEditingChanges: {artifacts: []types.FileType{types.FileTypeClipsZip}, prior: priorClips},
	types.ShortStatusReadyToUpload:  {artifacts: []types.FileType{types.FileTypeFinalVideo}, prior: priorEditing},
}

// roleGate describes the completion gate for a role that works inside the
// main workflow.
type roleGate struct {
	allowedStatuses []types.ShortStatus
	artifact        types.FileType
}

var roleGates = map[types.Role]roleGate{
	types.RoleClipper: {
		allowedStatuses: []types.ShortStatus{types.ShortStatusClipping, types.ShortStatusClipChanges},
		artifact:        types.FileTypeClipsZip,
	},
	types.RoleEditor: {
		allowedStatuses: []types.ShortStatus{types.ShortStatusEditing, types.ShortStatusEditingChanges},
		artifact:        types.FileTypeFinalVideo,
	},
}

type workflowService struct {
	db             *gorm.DB
	log            *logger.Logger
	shortRepo      repos.ShortRepo
	assignmentRepo repos.AssignmentRepo
	payRateRepo    repos.PayRateRepo
	artifacts      ArtifactStore
	payments       PaymentService
}

func NewWorkflowService(
	db *gorm.DB,
	baseLog *logger.Logger,
	shortRepo repos.ShortRepo,
	assignmentRepo repos.AssignmentRepo,
	payRateRepo repos.PayRateRepo,
	artifacts ArtifactStore,
	payments PaymentService,
) WorkflowService {
	serviceLog := baseLog.With("service", "WorkflowService")
	return &workflowService{
		db:             db,
		log:            serviceLog,
		shortRepo:      shortRepo,
		assignmentRepo: assignmentRepo,
		payRateRepo:    payRateRepo,
		artifacts:      artifacts,
		payments:       payments,
	}
}

func (ws *workflowService) RequestTransition(ctx context.Context, shortID uuid.UUID, target types.ShortStatus) (*types.Short, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || !rd.IsAdmin {
		return nil, apierr.Forbidden("only admins can move shorts through the pipeline")
	}
	if !target.Valid() {
		return nil, apierr.Validation("unknown target status %q", target)
	}

	var result *types.Short
	err := ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		short, err := ws.shortRepo.GetByID(ctx, tx, shortID)
		if err != nil {
			return fmt.Errorf("load short: %w", err)
		}
		if short == nil {
			return apierr.NotFound("short %s not found", shortID)
		}

		// All gate checks run before any write.
		if err := ws.checkTransition(ctx, tx, short, target); err != nil {
			return err
		}

		now := time.Now()
		short.Status = target
		short.UpdatedAt = now
		switch target {
		case types.ShortStatusClipChanges:
			short.ClipChangesRequestedAt = &now
		case types.ShortStatusEditingChanges:
			short.EditingChangesRequestedAt = &now
		}
		if err := ws.shortRepo.Save(ctx, tx, short); err != nil {
			return fmt.Errorf("save short: %w", err)
		}
		result = short
		return nil
	})
	if err != nil {
		return nil, err
	}
	ws.log.Info("RequestTransition", "short_id", shortID, "target", target)
	return result, nil
}

func (ws *workflowService) checkTransition(ctx context.Context, tx *gorm.DB, short *types.Short, target types.ShortStatus) error {
	req, ok := transitionRequirements[target]
	if !ok {
		return nil
	}

	var missing []types.FileType
	for _, artifact := range req.artifacts {
		present, err := ws.artifacts.HasArtifact(ctx, tx, short.ID, artifact)
		if err != nil {
			return fmt.Errorf("check artifact %s: %w", artifact, err)
		}
		if !present {
			missing = append(missing, artifact)
		}
	}
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i] = string(m)
		}
		return apierr.ValidationWithDetails(missing,
			"cannot move to %s: missing required artifacts: %s", target, strings.Join(names, ", "))
	}

	switch req.prior {
	case priorClips:
		if short.ClipsCompletedAt == nil {
			return apierr.Validation("cannot move to %s: clips work has not been marked complete", target)
		}
	case priorEditing:
		if short.EditingCompletedAt == nil {
			return apierr.Validation("cannot move to %s: editing work has not been marked complete", target)
		}
	}
	return nil
}

func (ws *workflowService) MarkRoleComplete(ctx context.Context, shortID uuid.UUID, role types.Role) (*types.Short, error) {
	gate, ok := roleGates[role]
	if !ok {
		return nil, apierr.Validation("role %q has no completion gate", role)
	}

	var result *types.Short
	err := ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		short, err := ws.shortRepo.GetByID(ctx, tx, shortID)
		if err != nil {
			return fmt.Errorf("load short: %w", err)
		}
		if short == nil {
			return apierr.NotFound("short %s not found", shortID)
		}

		statusOK := false
		for _, allowed := range gate.allowedStatuses {
			if short.Status == allowed {
				statusOK = true
				break
			}
		}
		if !statusOK {
			return apierr.Validation("%s work cannot be completed while the short is in %s", role, short.Status)
		}

		present, err := ws.artifacts.HasArtifact(ctx, tx, short.ID, gate.artifact)
		if err != nil {
			return fmt.Errorf("check artifact %s: %w", gate.artifact, err)
		}
		if !present {
			return apierr.ValidationWithDetails([]types.FileType{gate.artifact},
				"%s work cannot be completed: missing required artifact %s", role, gate.artifact)
		}

		assignment, err := ws.assignmentRepo.GetByShortAndRole(ctx, tx, short.ID, role)
		if err != nil {
			return fmt.Errorf("load assignment: %w", err)
		}
		if assignment == nil {
			return apierr.Validation("no %s assignment exists for this short", role)
		}

		rate, err := ws.payRateRepo.GetByUserAndRole(ctx, tx, assignment.UserID, role)
		if err != nil {
			return fmt.Errorf("load rate: %w", err)
		}
		if rate == nil || rate.Amount <= 0 {
			return apierr.Validation("no positive %s rate is configured for the assignee", role)
		}

		// Gates passed. Re-running after success is a no-op.
		completedAt := short.ClipsCompletedAt
		if role == types.RoleEditor {
			completedAt = short.EditingCompletedAt
		}
		if completedAt != nil && assignment.CompletedAt != nil {
			result = short
			return nil
		}

		now := time.Now()
		switch role {
		case types.RoleClipper:
			if short.ClipsCompletedAt == nil {
				short.ClipsCompletedAt = &now
			}
		case types.RoleEditor:
			if short.EditingCompletedAt == nil {
				short.EditingCompletedAt = &now
			}
		}
		short.UpdatedAt = now
		if err := ws.shortRepo.Save(ctx, tx, short); err != nil {
			return fmt.Errorf("save short: %w", err)
		}

		if assignment.CompletedAt == nil {
			amount := rate.Amount
			assignment.CompletedAt = &now
			assignment.RateAmount = &amount
			assignment.RateDescription = rate.Description
			assignment.UpdatedAt = now
			if err := ws.assignmentRepo.Save(ctx, tx, assignment); err != nil {
				return fmt.Errorf("save assignment: %w", err)
			}
		}

		if _, err := ws.payments.DeriveCompletionPayment(ctx, tx, short, assignment, rate); err != nil {
			return err
		}
		result = short
		return nil
	})
	if err != nil {
		return nil, err
	}
	ws.log.Info("MarkRoleComplete", "short_id", shortID, "role", role)
	return result, nil
}
