package types

import (
	"time"

	"github.com/google/uuid"
)

// AnalyzedShort is a historical benchmark video used for percentile
// calibration. Percentile is computed once and then permanently reused,
// even if later corpus additions change the distribution.
type AnalyzedShort struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string    `gorm:"column:title" json:"title"`
	ExternalID string    `gorm:"column:external_id" json:"external_id"`
	Views      int64     `gorm:"not null;default:0;column:views" json:"views"`
	Likes      int64     `gorm:"not null;default:0;column:likes" json:"likes"`
	Comments   int64     `gorm:"not null;default:0;column:comments" json:"comments"`
	Transcript string    `gorm:"type:text;column:transcript" json:"transcript"`

	// Write-once: never recomputed after first non-null value.
	Percentile *float64 `gorm:"column:percentile" json:"percentile,omitempty"`

	UserGuessPercentile *float64   `gorm:"column:user_guess_percentile" json:"user_guess_percentile,omitempty"`
	ReviewNotes         string     `gorm:"type:text;column:review_notes" json:"review_notes"`
	ReviewedAt          *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	ReviewUserID        *uuid.UUID `gorm:"type:uuid;index;column:review_user_id" json:"review_user_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AnalyzedShort) TableName() string {
	return "analyzed_short"
}
