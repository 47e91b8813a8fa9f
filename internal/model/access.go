// internal/model/access.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// OpportunityAccess lets a user read a private opportunity.
type OpportunityAccess struct {
	OpportunityID uuid.UUID `gorm:"type:uuid;primaryKey" json:"opportunity_id"`
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

func (OpportunityAccess) TableName() string {
	return "private_investment_access"
}

// FileAccess lets a user read a specific_users file.
type FileAccess struct {
	FileID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"file_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (FileAccess) TableName() string {
	return "file_user_access"
}
