package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clipworks/shortform-backend/internal/logger"
	"github.com/clipworks/shortform-backend/internal/types"
)

type AssignmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Assignment) (*types.Assignment, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assignment, error)
	GetByShortAndRole(ctx context.Context, tx *gorm.DB, shortID uuid.UUID, role types.Role) (*types.Assignment, error)
	GetByShortID(ctx context.Context, tx *gorm.DB, shortID uuid.UUID) ([]*types.Assignment, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.Assignment) error
	FullDeleteByShortIDs(ctx context.Context, tx *gorm.DB, shortIDs []uuid.UUID) error
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	repoLog := baseLog.With("repo", "AssignmentRepo")
	return &assignmentRepo{db: db, log: repoLog}
}

func (r *assignmentRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Assignment) (*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil, nil
	}

	if err := transaction.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *assignmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Assignment
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *assignmentRepo) GetByShortAndRole(ctx context.Context, tx *gorm.DB, shortID uuid.UUID, role types.Role) (*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Assignment
	if err := transaction.WithContext(ctx).
		Where("short_id = ? AND role = ?", shortID, role).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *assignmentRepo) GetByShortID(ctx context.Context, tx *gorm.DB, shortID uuid.UUID) ([]*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Assignment
	if shortID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("short_id = ?", shortID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assignmentRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Assignment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	if err := transaction.WithContext(ctx).Save(row).Error; err != nil {
		return err
	}
	return nil
}

func (r *assignmentRepo) FullDeleteByShortIDs(ctx context.Context, tx *gorm.DB, shortIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(shortIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("short_id IN ?", shortIDs).
		Delete(&types.Assignment{}).Error; err != nil {
		return err
	}
	return nil
}
