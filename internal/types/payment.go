package types

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Payment is a ledger entry. Role-derived payments are unique per
// (short, role); the partial unique index below is the correctness
// guarantee, the service-level lookup is only an optimization.
// Incentive payments are exempt.
type Payment struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *User         `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ShortID      *uuid.UUID    `gorm:"type:uuid;index:idx_payment_short_role,unique,where:role <> 'incentive'" json:"short_id,omitempty"`
	Short        *Short        `gorm:"constraint:OnDelete:CASCADE;foreignKey:ShortID;references:ID" json:"short,omitempty"`
	AssignmentID *uuid.UUID    `gorm:"type:uuid;column:assignment_id" json:"assignment_id,omitempty"`
	Assignment   *Assignment   `gorm:"foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
	Role         Role          `gorm:"type:varchar(32);not null;index:idx_payment_short_role,unique,where:role <> 'incentive';column:role" json:"role"`
	Amount       float64       `gorm:"not null;column:amount" json:"amount"`
	Status       PaymentStatus `gorm:"type:varchar(16);not null;default:'pending';column:status" json:"status"`
	Note         string        `gorm:"column:note" json:"note"`

	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	PaidAt         *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`
	TransactionRef string     `gorm:"column:transaction_ref" json:"transaction_ref"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payment"
}
