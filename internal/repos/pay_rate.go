package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clipworks/shortform-backend/internal/logger"
	"github.com/clipworks/shortform-backend/internal/types"
)

type PayRateRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, row *types.PayRate) error
	GetByUserAndRole(ctx context.Context, tx *gorm.DB, userID uuid.UUID, role types.Role) (*types.PayRate, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PayRate, error)
}

type payRateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPayRateRepo(db *gorm.DB, baseLog *logger.Logger) PayRateRepo {
	repoLog := baseLog.With("repo", "PayRateRepo")
	return &payRateRepo{db: db, log: repoLog}
}

// Upsert by unique user_id + role.
func (r *payRateRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.PayRate) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	var existing types.PayRate
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND role = ?", row.UserID, row.Role).
		First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return transaction.WithContext(ctx).Create(row).Error
	}

	existing.Amount = row.Amount
	existing.Description = row.Description
	if err := transaction.WithContext(ctx).Save(&existing).Error; err != nil {
		return err
	}
	*row = existing
	return nil
}

func (r *payRateRepo) GetByUserAndRole(ctx context.Context, tx *gorm.DB, userID uuid.UUID, role types.Role) (*types.PayRate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.PayRate
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND role = ?", userID, role).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *payRateRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.PayRate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.PayRate
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
