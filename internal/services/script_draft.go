package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/clipworks/shortform-backend/internal/apierr"
	"github.com/clipworks/shortform-backend/internal/logger"
	"github.com/clipworks/shortform-backend/internal/repos"
	"github.com/clipworks/shortform-backend/internal/requestdata"
	"github.com/clipworks/shortform-backend/internal/types"
)

type ChecklistRule struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// draftChecklist is the fixed validation checklist. The same nine rules
// gate every stage advance.
var draftChecklist = []ChecklistRule{
	{ID: "hook_quality", Description: "Hook lands inside the first two seconds"},
	{ID: "factual_accuracy", Description: "Every claim checks out against the source material"},
	{ID: "viral_potential", Description: "Concept has a clear shareable angle"},
	{ID: "reading_level", Description: "Language is plain enough to follow at speed"},
	{ID: "pacing", Description: "No dead sections; each beat earns the next"},
	{ID: "runtime", Description: "Script reads comfortably inside the target runtime"},
	{ID: "call_to_action", Description: "Ends with a concrete call to action"},
	{ID: "tone", Description: "Voice stays consistent start to finish"},
	{ID: "originality", Description: "Does not rehash an already-published short"},
}

type ScriptDraftService interface {
	Checklist() []ChecklistRule
	// CreateDraftShort opens a new short inside the draft pipeline at
	// first_draft. Admin only.
	CreateDraftShort(ctx context.Context, title, description, idea string) (*types.Short, error)
	// UpdateDraft writes text and/or notes into the given stage's field
	// without moving the stage.
	UpdateDraft(ctx context.Context, shortID uuid.UUID, stage types.DraftStage, text, notes *string) (*types.Short, error)
	// AdvanceStage moves the draft one stage forward, copying the current
	// text into the next stage's field. The final advance exits the
	// pipeline into the main workflow at status script.
	AdvanceStage(ctx context.Context, shortID uuid.UUID, validatedRuleIDs []string) (*types.Short, error)
	ListDrafts(ctx context.Context) ([]*types.Short, error)
}

type scriptDraftService struct {
	db             *gorm.DB
	log            *logger.Logger
	shortRepo      repos.ShortRepo
	assignmentRepo repos.AssignmentRepo
	payRateRepo    repos.PayRateRepo
	payments       PaymentService
}

func NewScriptDraftService(
	db *gorm.DB,
	baseLog *logger.Logger,
	shortRepo repos.ShortRepo,
	assignmentRepo repos.AssignmentRepo,
	payRateRepo repos.PayRateRepo,
	payments PaymentService,
) ScriptDraftService {
	serviceLog := baseLog.With("service", "ScriptDraftService")
	return &scriptDraftService{
		db:             db,
		log:            serviceLog,
		shortRepo:      shortRepo,
		assignmentRepo: assignmentRepo,
		payRateRepo:    payRateRepo,
		payments:       payments,
	}
}

func (sd *scriptDraftService) Checklist() []ChecklistRule {
	out := make([]ChecklistRule, len(draftChecklist))
	copy(out, draftChecklist)
	return out
}

func (sd *scriptDraftService) CreateDraftShort(ctx context.Context, title, description, idea string) (*types.Short, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || !rd.IsAdmin {
		return nil, apierr.Forbidden("only admins can create shorts")
	}
	if title == "" {
		return nil, apierr.Validation("a title is required")
	}

	ideaText := idea
	if ideaText == "" {
		ideaText = description
	}
	stage := types.DraftStageFirst
	now := time.Now()
	short := &types.Short{
		ID:         uuid.New(),
		Title:      title,
		Idea:       ideaText,
		Status:     types.ShortStatusIdea,
		DraftStage: &stage,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := sd.shortRepo.Create(ctx, nil, []*types.Short{short}); err != nil {
		return nil, fmt.Errorf("create draft short: %w", err)
	}
	sd.log.Info("CreateDraftShort", "short_id", short.ID, "title", title)
	return short, nil
}

func (sd *scriptDraftService) UpdateDraft(ctx context.Context, shortID uuid.UUID, stage types.DraftStage, text, notes *string) (*types.Short, error) {
	if !stage.Valid() {
		return nil, apierr.Validation("unknown draft stage %q", stage)
	}

	var result *types.Short
	err := sd.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		short, err := sd.shortRepo.GetByID(ctx, tx, shortID)
		if err != nil {
			return fmt.Errorf("load short: %w", err)
		}
		if short == nil {
			return apierr.NotFound("short %s not found", shortID)
		}
		if short.DraftStage == nil {
			return apierr.Validation("short %s is not in the draft pipeline", shortID)
		}

		if text != nil {
			switch stage {
			case types.DraftStageFirst:
				short.FirstDraft = *text
			case types.DraftStageSecond:
				short.SecondDraft = *text
			case types.DraftStageFinal:
				short.FinalDraft = *text
			}
		}
		if notes != nil {
			short.DraftNotes = *notes
		}
		short.UpdatedAt = time.Now()
		if err := sd.shortRepo.Save(ctx, tx, short); err != nil {
			return fmt.Errorf("save short: %w", err)
		}
		result = short
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (sd *scriptDraftService) AdvanceStage(ctx context.Context, shortID uuid.UUID, validatedRuleIDs []string) (*types.Short, error) {
	if len(validatedRuleIDs) < len(draftChecklist) {
		return nil, apierr.ValidationWithDetails(sd.Checklist(),
			"all %d checklist rules must be validated before advancing, got %d", len(draftChecklist), len(validatedRuleIDs))
	}

	var result *types.Short
	err := sd.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		short, err := sd.shortRepo.GetByID(ctx, tx, shortID)
		if err != nil {
			return fmt.Errorf("load short: %w", err)
		}
		if short == nil {
			return apierr.NotFound("short %s not found", shortID)
		}
		if short.DraftStage == nil {
			return apierr.Validation("short %s is not in the draft pipeline", shortID)
		}

		now := time.Now()
		switch *short.DraftStage {
		case types.DraftStageFirst:
			short.SecondDraft = short.FirstDraft
			short.FirstDraftCompletedAt = &now
			next := types.DraftStageSecond
			short.DraftStage = &next
		case types.DraftStageSecond:
			short.FinalDraft = short.SecondDraft
			short.SecondDraftCompletedAt = &now
			next := types.DraftStageFinal
			short.DraftStage = &next
		case types.DraftStageFinal:
			short.ScriptContent = short.FinalDraft
			short.FinalDraftCompletedAt = &now
			short.Status = types.ShortStatusScript
			short.DraftStage = nil
		default:
			return apierr.Validation("short %s has an unknown draft stage %q", shortID, *short.DraftStage)
		}

		validation := map[string]any{
			"validated_rules": validatedRuleIDs,
			"validated_at":    now,
		}
		if raw, marshalErr := json.Marshal(validation); marshalErr == nil {
			short.Metadata = datatypes.JSON(raw)
		}

		short.UpdatedAt = now
		// Save rather than Updates so the cleared stage pointer is
		// written back as NULL.
		if err := sd.shortRepo.Save(ctx, tx, short); err != nil {
			return fmt.Errorf("save short: %w", err)
		}

		// Exiting the pipeline is the script writer's completion gate.
		if short.DraftStage == nil {
			if err := sd.completeScriptWriter(ctx, tx, short, now); err != nil {
				return err
			}
		}
		result = short
		return nil
	})
	if err != nil {
		return nil, err
	}
	sd.log.Info("AdvanceStage", "short_id", shortID)
	return result, nil
}

// completeScriptWriter mirrors the clipper/editor completion gate, but a
// missing assignment or rate never blocks the draft from exiting; it only
// skips the payment.
func (sd *scriptDraftService) completeScriptWriter(ctx context.Context, tx *gorm.DB, short *types.Short, now time.Time) error {
	assignment, err := sd.assignmentRepo.GetByShortAndRole(ctx, tx, short.ID, types.RoleScriptWriter)
	if err != nil {
		return fmt.Errorf("load script writer assignment: %w", err)
	}
	if assignment == nil || assignment.CompletedAt != nil {
		return nil
	}
	rate, err := sd.payRateRepo.GetByUserAndRole(ctx, tx, assignment.UserID, types.RoleScriptWriter)
	if err != nil {
		return fmt.Errorf("load script writer rate: %w", err)
	}
	if rate == nil || rate.Amount <= 0 {
		return nil
	}

	amount := rate.Amount
	assignment.CompletedAt = &now
	assignment.RateAmount = &amount
	assignment.RateDescription = rate.Description
	assignment.UpdatedAt = now
	if err := sd.assignmentRepo.Save(ctx, tx, assignment); err != nil {
		return fmt.Errorf("save script writer assignment: %w", err)
	}
	if _, err := sd.payments.DeriveCompletionPayment(ctx, tx, short, assignment, rate); err != nil {
		return err
	}
	return nil
}

func (sd *scriptDraftService) ListDrafts(ctx context.Context) ([]*types.Short, error) {
	return sd.shortRepo.ListDrafts(ctx, nil)
}
