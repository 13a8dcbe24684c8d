package types

import (
	"time"

	"github.com/google/uuid"
)

// Role is a kind of paid work on a short. RoleIncentive only appears on
// manually created payments, never on assignments.
type Role string

const (
	RoleScriptWriter Role = "script_writer"
	RoleClipper      Role = "clipper"
	RoleEditor       Role = "editor"
	RoleIncentive    Role = "incentive"
)

func (r Role) Assignable() bool {
	return r == RoleScriptWriter || r == RoleClipper || r == RoleEditor
}

// Assignment binds one (short, role) pair to one user. The unique index
// on (short_id, role) is the invariant; duplicates surface as Conflict.
type Assignment struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ShortID uuid.UUID `gorm:"type:uuid;not null;index:idx_assignment_short_role,unique" json:"short_id"`
	Short   *Short    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ShortID;references:ID" json:"short,omitempty"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User    *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Role    Role      `gorm:"type:varchar(32);not null;index:idx_assignment_short_role,unique;column:role" json:"role"`
	DueDate *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`

	// Rate snapshot, copied from the rate table at completion time.
	RateAmount      *float64 `gorm:"column:rate_amount" json:"rate_amount,omitempty"`
	RateDescription string   `gorm:"column:rate_description" json:"rate_description"`

	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (Assignment) TableName() string {
	return "assignment"
}
