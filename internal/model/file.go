// internal/model/file.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileVisibility string

const (
	FileVisibilityAll                FileVisibility = "all"
	FileVisibilityOpportunityViewers FileVisibility = "opportunity_viewers"
	FileVisibilitySpecificUsers      FileVisibility = "specific_users"
)

func (v FileVisibility) Valid() bool {
	switch v {
	case FileVisibilityAll, FileVisibilityOpportunityViewers, FileVisibilitySpecificUsers:
		return true
	}
	return false
}

type File struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OpportunityID *uuid.UUID     `gorm:"type:uuid" json:"opportunity_id"`
	Name          string         `gorm:"type:text;not null" json:"name"`
	Size          int64          `gorm:"not null;default:0" json:"size"`
	URL           string         `gorm:"type:text;not null" json:"url"`
	StoragePath   string         `gorm:"type:text;not null" json:"storage_path" szlr:"scope:admin"`
	Visibility    FileVisibility `gorm:"type:file_visibility;not null;default:'all'" json:"visibility"`
	UploadedBy    uuid.UUID      `gorm:"type:uuid;not null" json:"uploaded_by" szlr:"scope:admin"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (File) TableName() string {
	return "files"
}

// BelongsTo reports whether the file is attached to the given opportunity.
func (f *File) BelongsTo(opportunityID uuid.UUID) bool {
	return f.OpportunityID != nil && *f.OpportunityID == opportunityID
}

// BeforeSave hook for File
func (f *File) BeforeSave(tx *gorm.DB) error {
	if f.Visibility == "" {
		f.Visibility = FileVisibilityAll
	}
	if !f.Visibility.Valid() {
		return fmt.Errorf("invalid file visibility: %s", f.Visibility)
	}
	return nil
}

// BeforeCreate hook for File
func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
