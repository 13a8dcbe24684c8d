package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ShortStatus is the single source of truth for the production pipeline
// state set. Both the workflow service and the persistence layer use it;
// transition gating lives in the workflow service's requirement table.
type ShortStatus string

const (
	ShortStatusIdea           ShortStatus = "idea"
	ShortStatusScript         ShortStatus = "script"
	ShortStatusClipping       ShortStatus = "clipping"
	ShortStatusClips          ShortStatus = "clips"
	ShortStatusClipChanges    ShortStatus = "clip_changes"
	ShortStatusEditing        ShortStatus = "editing"
	ShortStatusEditingChanges ShortStatus = "editing_changes"
	ShortStatusReadyToUpload  ShortStatus = "ready_to_upload"
	ShortStatusUploaded       ShortStatus = "uploaded"
)

var AllShortStatuses = []ShortStatus{
	ShortStatusIdea,
	ShortStatusScript,
	ShortStatusClipping,
	ShortStatusClips,
	ShortStatusClipChanges,
	ShortStatusEditing,
	ShortStatusEditingChanges,
	ShortStatusReadyToUpload,
	ShortStatusUploaded,
}

func (s ShortStatus) Valid() bool {
	for _, known := range AllShortStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// DraftStage is the script-draft sub-pipeline stage. A nil stage on a
// Short means the short is not in the draft pipeline.
type DraftStage string

const (
	DraftStageFirst  DraftStage = "first_draft"
	DraftStageSecond DraftStage = "second_draft"
	DraftStageFinal  DraftStage = "final_draft"
)

func (d DraftStage) Valid() bool {
	return d == DraftStageFirst || d == DraftStageSecond || d == DraftStageFinal
}

type Short struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string      `gorm:"not null;column:title" json:"title"`
	Idea           string      `gorm:"type:text;column:idea" json:"idea"`
	Status         ShortStatus `gorm:"type:varchar(32);not null;default:'idea';column:status" json:"status"`
	ScriptWriterID *uuid.UUID  `gorm:"type:uuid;column:script_writer_id" json:"script_writer_id,omitempty"`
	ScriptWriter   *User       `gorm:"constraint:OnDelete:SET NULL;foreignKey:ScriptWriterID;references:ID" json:"script_writer,omitempty"`
	ScriptContent  string      `gorm:"type:text;column:script_content" json:"script_content"`

	// Script draft sub-pipeline. Stage is nil once the draft exits into
	// the main workflow.
	DraftStage             *DraftStage `gorm:"type:varchar(32);column:script_draft_stage" json:"script_draft_stage,omitempty"`
	FirstDraft             string      `gorm:"type:text;column:first_draft" json:"first_draft"`
	SecondDraft            string      `gorm:"type:text;column:second_draft" json:"second_draft"`
	FinalDraft             string      `gorm:"type:text;column:final_draft" json:"final_draft"`
	DraftNotes             string      `gorm:"type:text;column:draft_notes" json:"draft_notes"`
	FirstDraftCompletedAt  *time.Time  `gorm:"column:first_draft_completed_at" json:"first_draft_completed_at,omitempty"`
	SecondDraftCompletedAt *time.Time  `gorm:"column:second_draft_completed_at" json:"second_draft_completed_at,omitempty"`
	FinalDraftCompletedAt  *time.Time  `gorm:"column:final_draft_completed_at" json:"final_draft_completed_at,omitempty"`

	// Stage completion / entry timestamps. Once set they are never cleared.
	ClipsCompletedAt          *time.Time `gorm:"column:clips_completed_at" json:"clips_completed_at,omitempty"`
	EditingCompletedAt        *time.Time `gorm:"column:editing_completed_at" json:"editing_completed_at,omitempty"`
	ClipChangesRequestedAt    *time.Time `gorm:"column:clip_changes_requested_at" json:"clip_changes_requested_at,omitempty"`
	EditingChangesRequestedAt *time.Time `gorm:"column:editing_changes_requested_at" json:"editing_changes_requested_at,omitempty"`

	Metadata  datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Short) TableName() string {
	return "short"
}
