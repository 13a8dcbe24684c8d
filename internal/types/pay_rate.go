package types

import (
	"time"

	"github.com/google/uuid"
)

// PayRate is the per (user, role) rate read at completion time. Edits
// before completion affect the derived payment; edits after do not.
type PayRate struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_pay_rate_user_role,unique" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Role        Role      `gorm:"type:varchar(32);not null;index:idx_pay_rate_user_role,unique;column:role" json:"role"`
	Amount      float64   `gorm:"not null;column:amount" json:"amount"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (PayRate) TableName() string {
	return "pay_rate"
}
