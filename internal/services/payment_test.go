package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clipworks/shortform-backend/internal/apierr"
	"github.com/clipworks/shortform-backend/internal/repos"
	"github.com/clipworks/shortform-backend/internal/types"
)

type paymentFixture struct {
	db       *gorm.DB
	payments PaymentService
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	paymentRepo := repos.NewPaymentRepo(db, log)
	return &paymentFixture{db: db, payments: NewPaymentService(db, log, paymentRepo)}
}

func completedAssignment(t *testing.T, db *gorm.DB, shortID, userID uuid.UUID, role types.Role) *types.Assignment {
	t.Helper()
	assignment := seedAssignment(t, db, shortID, userID, role)
	now := time.Now()
	assignment.CompletedAt = &now
	if err := db.Save(assignment).Error; err != nil {
		t.Fatalf("complete assignment: %v", err)
	}
	return assignment
}

func TestDeriveCompletionPaymentIsExactlyOnce(t *testing.T) {
	fx := newPaymentFixture(t)
	user := seedUser(t, fx.db, "clipper@example.com")
	short := seedShort(t, fx.db, types.ShortStatusClipping)
	assignment := completedAssignment(t, fx.db, short.ID, user.ID, types.RoleClipper)
	rate := seedRate(t, fx.db, user.ID, types.RoleClipper, 25)

	first, err := fx.payments.DeriveCompletionPayment(context.Background(), nil, short, assignment, rate)
	if err != nil {
		t.Fatalf("first derivation: %v", err)
	}
	if first.Amount != 25 || first.Status != types.PaymentStatusPending {
		t.Fatalf("unexpected payment %+v", first)
	}

	// A rate change after derivation never rewrites the ledger.
	rate.Amount = 99
	second, err := fx.payments.DeriveCompletionPayment(context.Background(), nil, short, assignment, rate)
	if err != nil {
		t.Fatalf("second derivation: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("expected the existing payment to be returned")
	}
	if second.Amount != 25 {
		t.Fatalf("expected the original amount to stand, got %v", second.Amount)
	}

	var count int64
	if err := fx.db.Model(&types.Payment{}).Where("short_id = ?", short.ID).Count(&count).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one ledger entry, got %d", count)
	}
}

func TestDeriveCompletionPaymentPerRole(t *testing.T) {
	fx := newPaymentFixture(t)
	user := seedUser(t, fx.db, "multi@example.com")
	short := seedShort(t, fx.db, types.ShortStatusEditing)

	clipAssignment := completedAssignment(t, fx.db, short.ID, user.ID, types.RoleClipper)
	clipRate := seedRate(t, fx.db, user.ID, types.RoleClipper, 25)
	editAssignment := completedAssignment(t, fx.db, short.ID, user.ID, types.RoleEditor)
	editRate := seedRate(t, fx.db, user.ID, types.RoleEditor, 40)

	if _, err := fx.payments.DeriveCompletionPayment(context.Background(), nil, short, clipAssignment, clipRate); err != nil {
		t.Fatalf("clipper derivation: %v", err)
	}
	if _, err := fx.payments.DeriveCompletionPayment(context.Background(), nil, short, editAssignment, editRate); err != nil {
		t.Fatalf("editor derivation: %v", err)
	}

	var count int64
	if err := fx.db.Model(&types.Payment{}).Where("short_id = ?", short.ID).Count(&count).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected one entry per role, got %d", count)
	}
}

func TestPaymentUniqueIndexIsAuthoritative(t *testing.T) {
	fx := newPaymentFixture(t)
	user := seedUser(t, fx.db, "clipper@example.com")
	short := seedShort(t, fx.db, types.ShortStatusClipping)
	assignment := completedAssignment(t, fx.db, short.ID, user.ID, types.RoleClipper)
	rate := seedRate(t, fx.db, user.ID, types.RoleClipper, 25)

	if _, err := fx.payments.DeriveCompletionPayment(context.Background(), nil, short, assignment, rate); err != nil {
		t.Fatalf("derive payment: %v", err)
	}

	// The store constraint rejects a duplicate row even when the
	// service-level lookup is bypassed.
	now := time.Now()
	shortID := short.ID
	dup := &types.Payment{
		ID:        uuid.New(),
		UserID:    user.ID,
		ShortID:   &shortID,
		Role:      types.RoleClipper,
		Amount:    25,
		Status:    types.PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := fx.db.Create(dup).Error; err == nil {
		t.Fatal("expected the unique index to reject a duplicate (short, role) row")
	}
}

func TestMarkPaidRequiresTransactionRef(t *testing.T) {
	fx := newPaymentFixture(t)

	_, err := fx.payments.MarkPaid(context.Background(), uuid.New(), "")
	apiErr, ok := apierr.From(err)
	if !ok || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMarkPaidUnknownPayment(t *testing.T) {
	fx := newPaymentFixture(t)

	_, err := fx.payments.MarkPaid(context.Background(), uuid.New(), "wise-123")
	apiErr, ok := apierr.From(err)
	if !ok || apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMarkPaidIsOneWay(t *testing.T) {
	fx := newPaymentFixture(t)
	user := seedUser(t, fx.db, "clipper@example.com")
	short := seedShort(t, fx.db, types.ShortStatusClipping)
	assignment := completedAssignment(t, fx.db, short.ID, user.ID, types.RoleClipper)
	rate := seedRate(t, fx.db, user.ID, types.RoleClipper, 25)

	payment, err := fx.payments.DeriveCompletionPayment(context.Background(), nil, short, assignment, rate)
	if err != nil {
		t.Fatalf("derive payment: %v", err)
	}

	paid, err := fx.payments.MarkPaid(context.Background(), payment.ID, "wise-123")
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if paid.Status != types.PaymentStatusPaid || paid.PaidAt == nil || paid.TransactionRef != "wise-123" {
		t.Fatalf("unexpected paid payment %+v", paid)
	}

	// Repeating keeps the original settlement.
	again, err := fx.payments.MarkPaid(context.Background(), payment.ID, "wise-456")
	if err != nil {
		t.Fatalf("repeat MarkPaid: %v", err)
	}
	if again.TransactionRef != "wise-123" {
		t.Fatalf("expected the original transaction ref to stand, got %q", again.TransactionRef)
	}
	if !again.PaidAt.Equal(*paid.PaidAt) {
		t.Fatal("expected paid_at to be unchanged on repeat")
	}
}

func TestCreateIncentiveBypassesRoleUniqueness(t *testing.T) {
	fx := newPaymentFixture(t)
	user := seedUser(t, fx.db, "star@example.com")
	short := seedShort(t, fx.db, types.ShortStatusUploaded)
	shortID := short.ID

	for i := 0; i < 2; i++ {
		if _, err := fx.payments.CreateIncentive(adminCtx(), user.ID, &shortID, 10, "viral bonus"); err != nil {
			t.Fatalf("incentive %d: %v", i, err)
		}
	}

	var count int64
	if err := fx.db.Model(&types.Payment{}).Where("short_id = ? AND role = ?", short.ID, types.RoleIncentive).Count(&count).Error; err != nil {
		t.Fatalf("count incentives: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected two incentive entries for the same short, got %d", count)
	}
}

func TestCreateIncentiveRequiresAdmin(t *testing.T) {
	fx := newPaymentFixture(t)
	user := seedUser(t, fx.db, "star@example.com")

	_, err := fx.payments.CreateIncentive(userCtx(user.ID), user.ID, nil, 10, "bonus")
	apiErr, ok := apierr.From(err)
	if !ok || apiErr.Status != http.StatusForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateIncentiveValidatesAmount(t *testing.T) {
	fx := newPaymentFixture(t)
	user := seedUser(t, fx.db, "star@example.com")

	_, err := fx.payments.CreateIncentive(adminCtx(), user.ID, nil, 0, "bonus")
	apiErr, ok := apierr.From(err)
	if !ok || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected validation error, got %v", err)
	}
}
