package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clipworks/shortform-backend/internal/logger"
	"github.com/clipworks/shortform-backend/internal/types"
)

type ShortRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Short) ([]*types.Short, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Short, error)
	ListByStatus(ctx context.Context, tx *gorm.DB, status types.ShortStatus) ([]*types.Short, error)
	ListBoard(ctx context.Context, tx *gorm.DB) ([]*types.Short, error)
	ListDrafts(ctx context.Context, tx *gorm.DB) ([]*types.Short, error)
	Updates(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	Save(ctx context.Context, tx *gorm.DB, row *types.Short) error
	FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type shortRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShortRepo(db *gorm.DB, baseLog *logger.Logger) ShortRepo {
	repoLog := baseLog.With("repo", "ShortRepo")
	return &shortRepo{db: db, log: repoLog}
}

func (r *shortRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Short) ([]*types.Short, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Short{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *shortRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Short, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Short
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

func (r *shortRepo) ListByStatus(ctx context.Context, tx *gorm.DB, status types.ShortStatus) ([]*types.Short, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Short
	if err := transaction.WithContext(ctx).
		Where("status = ? AND script_draft_stage IS NULL", status).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListBoard returns every short visible on the main workflow board, i.e.
// everything not currently held inside the draft pipeline.
func (r *shortRepo) ListBoard(ctx context.Context, tx *gorm.DB) ([]*types.Short, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Short
	if err := transaction.WithContext(ctx).
		Where("script_draft_stage IS NULL").
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *shortRepo) ListDrafts(ctx context.Context, tx *gorm.DB) ([]*types.Short, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Short
	if err := transaction.WithContext(ctx).
		Where("script_draft_stage IS NOT NULL").
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *shortRepo) Updates(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(updates) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Short{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return err
	}
	return nil
}

func (r *shortRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Short) error {
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

func (r *shortRepo) FullDeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("id = ?", id).
		Delete(&types.Short{}).Error; err != nil {
		return err
	}
	return nil
}
