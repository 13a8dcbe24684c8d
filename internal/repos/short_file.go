package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clipworks/shortform-backend/internal/logger"
	"github.com/clipworks/shortform-backend/internal/types"
)

type ShortFileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ShortFile) ([]*types.ShortFile, error)
	GetByShortID(ctx context.Context, tx *gorm.DB, shortID uuid.UUID) ([]*types.ShortFile, error)
	ExistsByShortAndType(ctx context.Context, tx *gorm.DB, shortID uuid.UUID, fileType types.FileType) (bool, error)
	FullDeleteByShortIDs(ctx context.Context, tx *gorm.DB, shortIDs []uuid.UUID) error
}

type shortFileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShortFileRepo(db *gorm.DB, baseLog *logger.Logger) ShortFileRepo {
	repoLog := baseLog.With("repo", "ShortFileRepo")
	return &shortFileRepo{db: db, log: repoLog}
}

func (r *shortFileRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ShortFile) ([]*types.ShortFile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.ShortFile{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *shortFileRepo) GetByShortID(ctx context.Context, tx *gorm.DB, shortID uuid.UUID) ([]*types.ShortFile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ShortFile
	if shortID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("short_id = ?", shortID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *shortFileRepo) ExistsByShortAndType(ctx context.Context, tx *gorm.DB, shortID uuid.UUID, fileType types.FileType) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ShortFile{}).
		Where("short_id = ? AND file_type = ?", shortID, fileType).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *shortFileRepo) FullDeleteByShortIDs(ctx context.Context, tx *gorm.DB, shortIDs []uuid.UUID) error {
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
		Delete(&types.ShortFile{}).Error; err != nil {
		return err
	}
	return nil
}
