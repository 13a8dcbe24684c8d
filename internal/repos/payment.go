package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clipworks/shortform-backend/internal/logger"
	"github.com/clipworks/shortform-backend/internal/types"
)

type PaymentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Payment) (*types.Payment, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Payment, error)
	GetRoleDerived(ctx context.Context, tx *gorm.DB, shortID uuid.UUID, role types.Role) (*types.Payment, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Payment, error)
	ListByStatus(ctx context.Context, tx *gorm.DB, status types.PaymentStatus) ([]*types.Payment, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.Payment) error
}

type paymentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPaymentRepo(db *gorm.DB, baseLog *logger.Logger) PaymentRepo {
	repoLog := baseLog.With("repo", "PaymentRepo")
	return &paymentRepo{db: db, log: repoLog}
}

func (r *paymentRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Payment) (*types.Payment, error) {
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

func (r *paymentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Payment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Payment
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

// GetRoleDerived looks up the one role-derived payment for a (short, role)
// pair. Incentive rows never match because incentive is not an assignable
// role.
func (r *paymentRepo) GetRoleDerived(ctx context.Context, tx *gorm.DB, shortID uuid.UUID, role types.Role) (*types.Payment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Payment
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

func (r *paymentRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Payment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Payment
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *paymentRepo) ListByStatus(ctx context.Context, tx *gorm.DB, status types.PaymentStatus) ([]*types.Payment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Payment
	if err := transaction.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *paymentRepo) Save(ctx context.Context, tx *gorm.DB, row *types.Payment) error {
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
