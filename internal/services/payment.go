package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clipworks/shortform-backend/internal/apierr"
	"github.com/clipworks/shortform-backend/internal/logger"
	"github.com/clipworks/shortform-backend/internal/repos"
	"github.com/clipworks/shortform-backend/internal/requestdata"
	"github.com/clipworks/shortform-backend/internal/types"
)

type PaymentService interface {
	// DeriveCompletionPayment is the only writer of role-derived payments.
	// It is idempotent per (short, role): a second derivation returns the
	// existing record unchanged.
	DeriveCompletionPayment(ctx context.Context, tx *gorm.DB, short *types.Short, assignment *types.Assignment, rate *types.PayRate) (*types.Payment, error)
	MarkPaid(ctx context.Context, paymentID uuid.UUID, transactionRef string) (*types.Payment, error)
	CreateIncentive(ctx context.Context, userID uuid.UUID, shortID *uuid.UUID, amount float64, note string) (*types.Payment, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.Payment, error)
	ListByStatus(ctx context.Context, status types.PaymentStatus) ([]*types.Payment, error)
}

type paymentService struct {
	db          *gorm.DB
	log         *logger.Logger
	paymentRepo repos.PaymentRepo
}

func NewPaymentService(db *gorm.DB, baseLog *logger.Logger, paymentRepo repos.PaymentRepo) PaymentService {
	serviceLog := baseLog.With("service", "PaymentService")
	return &paymentService{db: db, log: serviceLog, paymentRepo: paymentRepo}
}

func (ps *paymentService) DeriveCompletionPayment(ctx context.Context, tx *gorm.DB, short *types.Short, assignment *types.Assignment, rate *types.PayRate) (*types.Payment, error) {
	if short == nil || assignment == nil || rate == nil {
		return nil, apierr.Validation("payment derivation requires a short, an assignment and a rate")
	}

	// Optimistic check. The partial unique index on (short_id, role) is
	// the real guarantee under concurrency.
	existing, err := ps.paymentRepo.GetRoleDerived(ctx, tx, short.ID, assignment.Role)
	if err != nil {
		return nil, fmt.Errorf("lookup existing payment: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now()
	shortID := short.ID
	assignmentID := assignment.ID
	payment := &types.Payment{
		ID:           uuid.New(),
		UserID:       assignment.UserID,
		ShortID:      &shortID,
		AssignmentID: &assignmentID,
		Role:         assignment.Role,
		Amount:       rate.Amount,
		Status:       types.PaymentStatusPending,
		Note:         rate.Description,
		CompletedAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := ps.paymentRepo.Create(ctx, tx, payment); err != nil {
		// A concurrent derivation may have won the unique index race.
		// Re-fetch and return the winner where the driver still accepts
		// reads; on Postgres the violation aborts the enclosing
		// transaction, the re-fetch fails and the loser gets Conflict.
		// Either way a single ledger entry exists and a retry of the
		// completion call lands on the idempotent path.
		winner, lookupErr := ps.paymentRepo.GetRoleDerived(ctx, tx, short.ID, assignment.Role)
		if lookupErr == nil && winner != nil {
			return winner, nil
		}
		return nil, apierr.Conflict("create payment for short %s role %s: %v", short.ID, assignment.Role, err)
	}
	ps.log.Info("DeriveCompletionPayment", "short_id", short.ID, "role", assignment.Role, "amount", rate.Amount)
	return payment, nil
}

func (ps *paymentService) MarkPaid(ctx context.Context, paymentID uuid.UUID, transactionRef string) (*types.Payment, error) {
	if transactionRef == "" {
		return nil, apierr.Validation("a transaction reference is required to mark a payment paid")
	}

	var payment *types.Payment
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := ps.paymentRepo.GetByID(ctx, tx, paymentID)
		if err != nil {
			return fmt.Errorf("load payment: %w", err)
		}
		if row == nil {
			return apierr.NotFound("payment %s not found", paymentID)
		}
		if row.Status == types.PaymentStatusPaid {
			// One-way transition stays settled.
			payment = row
			return nil
		}
		now := time.Now()
		row.Status = types.PaymentStatusPaid
		row.PaidAt = &now
		row.TransactionRef = transactionRef
		row.UpdatedAt = now
		if err := ps.paymentRepo.Save(ctx, tx, row); err != nil {
			return fmt.Errorf("save payment: %w", err)
		}
		payment = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// CreateIncentive is the manual admin path, exempt from the one-per-role
// invariant and always tagged with the incentive role.
func (ps *paymentService) CreateIncentive(ctx context.Context, userID uuid.UUID, shortID *uuid.UUID, amount float64, note string) (*types.Payment, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || !rd.IsAdmin {
		return nil, apierr.Forbidden("only admins can create incentive payments")
	}
	if userID == uuid.Nil {
		return nil, apierr.Validation("a recipient user is required")
	}
	if amount <= 0 {
		return nil, apierr.Validation("incentive amount must be positive")
	}

	now := time.Now()
	payment := &types.Payment{
		ID:        uuid.New(),
		UserID:    userID,
		ShortID:   shortID,
		Role:      types.RoleIncentive,
		Amount:    amount,
		Status:    types.PaymentStatusPending,
		Note:      note,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := ps.paymentRepo.Create(ctx, nil, payment); err != nil {
		return nil, fmt.Errorf("create incentive payment: %w", err)
	}
	ps.log.Info("CreateIncentive", "user_id", userID, "amount", amount)
	return payment, nil
}

func (ps *paymentService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*types.Payment, error) {
	return ps.paymentRepo.ListByUserID(ctx, nil, userID)
}

func (ps *paymentService) ListByStatus(ctx context.Context, status types.PaymentStatus) ([]*types.Payment, error) {
	if status != types.PaymentStatusPending && status != types.PaymentStatusPaid {
		return nil, apierr.Validation("unknown payment status %q", status)
	}
	return ps.paymentRepo.ListByStatus(ctx, nil, status)
}
