package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clipworks/shortform-backend/internal/logger"
	"github.com/clipworks/shortform-backend/internal/types"
)

type AnalyzedShortRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.AnalyzedShort) ([]*types.AnalyzedShort, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AnalyzedShort, error)
	CountWithViews(ctx context.Context, tx *gorm.DB) (int64, error)
	CountViewsBelow(ctx context.Context, tx *gorm.DB, views int64) (int64, error)
	PickRandomUnreviewedBy(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.AnalyzedShort, error)
	ListReviewedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.AnalyzedShort, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.AnalyzedShort) error
}

type analyzedShortRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnalyzedShortRepo(db *gorm.DB, baseLog *logger.Logger) AnalyzedShortRepo {
	repoLog := baseLog.With("repo", "AnalyzedShortRepo")
	return &analyzedShortRepo{db: db, log: repoLog}
}

func (r *analyzedShortRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.AnalyzedShort) ([]*types.AnalyzedShort, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.AnalyzedShort{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *analyzedShortRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AnalyzedShort, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.AnalyzedShort
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

// CountWithViews counts the qualifying corpus: rows with views > 0.
func (r *analyzedShortRepo) CountWithViews(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.AnalyzedShort{}).
		Where("views > 0").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountViewsBelow counts qualifying corpus rows with strictly fewer views.
// Ties do not count.
func (r *analyzedShortRepo) CountViewsBelow(ctx context.Context, tx *gorm.DB, views int64) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.AnalyzedShort{}).
		Where("views > 0 AND views < ?", views).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// PickRandomUnreviewedBy samples one corpus row with a non-empty transcript
// that this user has not reviewed. Rows reviewed by other users still
// qualify.
func (r *analyzedShortRepo) PickRandomUnreviewedBy(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.AnalyzedShort, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.AnalyzedShort
	if err := transaction.WithContext(ctx).
		Where("transcript IS NOT NULL AND transcript <> ''").
		Where("review_user_id IS NULL OR review_user_id <> ?", userID).
		Order("RANDOM()").
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *analyzedShortRepo) ListReviewedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.AnalyzedShort, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AnalyzedShort
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("review_user_id = ?", userID).
		Order("reviewed_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *analyzedShortRepo) Save(ctx context.Context, tx *gorm.DB, row *types.AnalyzedShort) error {
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
