package types

import (
	"time"

	"github.com/google/uuid"
)

// FileType is the artifact kind attached to a short. Stage transitions
// gate on the presence of specific types.
type FileType string

const (
	FileTypeScript     FileType = "script"
	FileTypeAudio      FileType = "audio"
	FileTypeClipsZip   FileType = "clips_zip"
	FileTypeFinalVideo FileType = "final_video"
)

func (f FileType) Valid() bool {
	switch f {
	case FileTypeScript, FileTypeAudio, FileTypeClipsZip, FileTypeFinalVideo:
		return true
	}
	return false
}

type ShortFile struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ShortID      uuid.UUID `gorm:"type:uuid;not null;index" json:"short_id"`
	Short        *Short    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ShortID;references:ID" json:"short,omitempty"`
	FileType     FileType  `gorm:"type:varchar(32);not null;column:file_type" json:"file_type"`
	OriginalName string    `gorm:"column:original_name" json:"original_name"`
	StorageKey   string    `gorm:"not null;column:storage_key" json:"storage_key"`
	MimeType     string    `gorm:"column:mime_type" json:"mime_type"`
	SizeBytes    int64     `gorm:"column:size_bytes" json:"size_bytes"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (ShortFile) TableName() string {
	return "short_file"
}
