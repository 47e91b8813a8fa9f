// internal/model/profile.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UserType struct {
	ID          int     `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
}

func (UserType) TableName() string {
	return "user_types"
}

// UserProfile is the investor-side profile, keyed by the identity id.
type UserProfile struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	FirstName   string         `gorm:"type:text;not null" json:"first_name"`
	LastName    string         `gorm:"type:text;not null" json:"last_name"`
	DateOfBirth datatypes.Date `gorm:"not null" json:"date_of_birth"`
	Nationality string         `gorm:"type:text;not null" json:"nationality"`
	Location    datatypes.JSON `gorm:"type:jsonb;not null" json:"location"`
	UpdatedAt   time.Time      `json:"updated_at"`

	UserTypes []UserType `gorm:"many2many:user_to_user_type;joinForeignKey:UserID;joinReferences:UserTypeID" json:"user_types"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

type UserToUserType struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserTypeID int       `gorm:"primaryKey"`
}

func (UserToUserType) TableName() string {
	return "user_to_user_type"
}

// AdminProfile marks an identity as an admin; the row itself is the membership test.
type AdminProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FirstName string    `gorm:"type:text;not null" json:"first_name"`
	LastName  string    `gorm:"type:text;not null" json:"last_name"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AdminProfile) TableName() string {
	return "admin_profiles"
}
