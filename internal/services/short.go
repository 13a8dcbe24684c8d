package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/clipworks/shortform-backend/internal/apierr"
	"github.com/clipworks/shortform-backend/internal/logger"
	"github.com/clipworks/shortform-backend/internal/repos"
	"github.com/clipworks/shortform-backend/internal/requestdata"
	"github.com/clipworks/shortform-backend/internal/types"
)

type ShortDetail struct {
	Short       *types.Short        `json:"short"`
	Files       []*types.ShortFile  `json:"files"`
	Assignments []*types.Assignment `json:"assignments"`
}

type ShortService interface {
	CreateShort(ctx context.Context, title, idea string) (*types.Short, error)
	GetShort(ctx context.Context, id uuid.UUID) (*ShortDetail, error)
	ListBoard(ctx context.Context) ([]*types.Short, error)
	ListByStatus(ctx context.Context, status types.ShortStatus) ([]*types.Short, error)
	DeleteShort(ctx context.Context, id uuid.UUID) error
	AssignRole(ctx context.Context, shortID, userID uuid.UUID, role types.Role, dueDate *time.Time) (*types.Assignment, error)
	SetRate(ctx context.Context, userID uuid.UUID, role types.Role, amount float64, description string) (*types.PayRate, error)
	RatesForUser(ctx context.Context, userID uuid.UUID) ([]*types.PayRate, error)
}

type shortService struct {
	db             *gorm.DB
	log            *logger.Logger
	shortRepo      repos.ShortRepo
	shortFileRepo  repos.ShortFileRepo
	assignmentRepo repos.AssignmentRepo
	payRateRepo    repos.PayRateRepo
	userRepo       repos.UserRepo
}

func NewShortService(
	db *gorm.DB,
	baseLog *logger.Logger,
	shortRepo repos.ShortRepo,
	shortFileRepo repos.ShortFileRepo,
	assignmentRepo repos.AssignmentRepo,
	payRateRepo repos.PayRateRepo,
	userRepo repos.UserRepo,
) ShortService {
	serviceLog := baseLog.With("service", "ShortService")
	return &shortService{
		db:             db,
		log:            serviceLog,
		shortRepo:      shortRepo,
		shortFileRepo:  shortFileRepo,
		assignmentRepo: assignmentRepo,
		payRateRepo:    payRateRepo,
		userRepo:       userRepo,
	}
}

func (ss *shortService) CreateShort(ctx context.Context, title, idea string) (*types.Short, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || !rd.IsAdmin {
		return nil, apierr.Forbidden("only admins can create shorts")
	}
	if title == "" {
		return nil, apierr.Validation("a title is required")
	}

	now := time.Now()
	short := &types.Short{
		ID:        uuid.New(),
		Title:     title,
		Idea:      idea,
		Status:    types.ShortStatusIdea,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := ss.shortRepo.Create(ctx, nil, []*types.Short{short}); err != nil {
		return nil, fmt.Errorf("create short: %w", err)
	}
	ss.log.Info("CreateShort", "short_id", short.ID, "title", title)
	return short, nil
}

func (ss *shortService) GetShort(ctx context.Context, id uuid.UUID) (*ShortDetail, error) {
	short, err := ss.shortRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load short: %w", err)
	}
	if short == nil {
		return nil, apierr.NotFound("short %s not found", id)
	}

	var (
		files       []*types.ShortFile
		assignments []*types.Assignment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		files, err = ss.shortFileRepo.GetByShortID(gctx, nil, id)
		if err != nil {
			return fmt.Errorf("load short files: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assignments, err = ss.assignmentRepo.GetByShortID(gctx, nil, id)
		if err != nil {
			return fmt.Errorf("load assignments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ShortDetail{Short: short, Files: files, Assignments: assignments}, nil
}

func (ss *shortService) ListBoard(ctx context.Context) ([]*types.Short, error) {
	return ss.shortRepo.ListBoard(ctx, nil)
}

func (ss *shortService) ListByStatus(ctx context.Context, status types.ShortStatus) ([]*types.Short, error) {
	if !status.Valid() {
		return nil, apierr.Validation("unknown status %q", status)
	}
	return ss.shortRepo.ListByStatus(ctx, nil, status)
}

// DeleteShort removes a short and everything hanging off it. Children are
// deleted explicitly inside the transaction rather than relying on FK
// cascade order.
func (ss *shortService) DeleteShort(ctx context.Context, id uuid.UUID) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || !rd.IsAdmin {
		return apierr.Forbidden("only admins can delete shorts")
	}

	return ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		short, err := ss.shortRepo.GetByID(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("load short: %w", err)
		}
		if short == nil {
			return apierr.NotFound("short %s not found", id)
		}
		if err := tx.Unscoped().Where("short_id = ?", id).Delete(&types.Payment{}).Error; err != nil {
			return fmt.Errorf("delete payments: %w", err)
		}
		if err := ss.assignmentRepo.FullDeleteByShortIDs(ctx, tx, []uuid.UUID{id}); err != nil {
			return fmt.Errorf("delete assignments: %w", err)
		}
		if err := ss.shortFileRepo.FullDeleteByShortIDs(ctx, tx, []uuid.UUID{id}); err != nil {
			return fmt.Errorf("delete short files: %w", err)
		}
		if err := ss.shortRepo.FullDeleteByID(ctx, tx, id); err != nil {
			return fmt.Errorf("delete short: %w", err)
		}
		ss.log.Info("DeleteShort", "short_id", id)
		return nil
	})
}

func (ss *shortService) AssignRole(ctx context.Context, shortID, userID uuid.UUID, role types.Role, dueDate *time.Time) (*types.Assignment, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || !rd.IsAdmin {
		return nil, apierr.Forbidden("only admins can assign roles")
	}
	if !role.Assignable() {
		return nil, apierr.Validation("role %q is not assignable", role)
	}

	var assignment *types.Assignment
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		short, err := ss.shortRepo.GetByID(ctx, tx, shortID)
		if err != nil {
			return fmt.Errorf("load short: %w", err)
		}
		if short == nil {
			return apierr.NotFound("short %s not found", shortID)
		}
		user, err := ss.userRepo.GetByID(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if user == nil {
			return apierr.NotFound("user %s not found", userID)
		}

		existing, err := ss.assignmentRepo.GetByShortAndRole(ctx, tx, shortID, role)
		if err != nil {
			return fmt.Errorf("check existing assignment: %w", err)
		}
		if existing != nil {
			return apierr.Conflict("short %s already has a %s assignment", shortID, role)
		}

		now := time.Now()
		row := &types.Assignment{
			ID:        uuid.New(),
			ShortID:   shortID,
			UserID:    userID,
			Role:      role,
			DueDate:   dueDate,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := ss.assignmentRepo.Create(ctx, tx, row); err != nil {
			// The unique index on (short_id, role) is authoritative.
			return apierr.Conflict("short %s already has a %s assignment: %v", shortID, role, err)
		}

		if role == types.RoleScriptWriter {
			short.ScriptWriterID = &userID
			short.UpdatedAt = now
			if err := ss.shortRepo.Save(ctx, tx, short); err != nil {
				return fmt.Errorf("save short: %w", err)
			}
		}
		assignment = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	ss.log.Info("AssignRole", "short_id", shortID, "user_id", userID, "role", role)
	return assignment, nil
}

func (ss *shortService) SetRate(ctx context.Context, userID uuid.UUID, role types.Role, amount float64, description string) (*types.PayRate, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || !rd.IsAdmin {
		return nil, apierr.Forbidden("only admins can set rates")
	}
	if !role.Assignable() {
		return nil, apierr.Validation("role %q is not payable by rate", role)
	}
	if amount <= 0 {
		return nil, apierr.Validation("rate amount must be positive")
	}
	user, err := ss.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, apierr.NotFound("user %s not found", userID)
	}

	now := time.Now()
	rate := &types.PayRate{
		ID:          uuid.New(),
		UserID:      userID,
		Role:        role,
		Amount:      amount,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := ss.payRateRepo.Upsert(ctx, nil, rate); err != nil {
		return nil, fmt.Errorf("upsert rate: %w", err)
	}
	ss.log.Info("SetRate", "user_id", userID, "role", role, "amount", amount)
	return rate, nil
}

func (ss *shortService) RatesForUser(ctx context.Context, userID uuid.UUID) ([]*types.PayRate, error) {
	return ss.payRateRepo.GetByUserID(ctx, nil, userID)
}
