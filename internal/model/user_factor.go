// internal/model/user_factor.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FactorType string

const (
	FactorHashpass         FactorType = "hashpass"
	FactorVerificationCode FactorType = "verification_code"
)

type UserFactor struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;column:user_id"`
	FactorType FactorType `gorm:"type:user_factor_type;not null"`
	Material   string     `gorm:"type:text"`
	IsActive   bool       `gorm:"default:true"`
	VerifiedAt *time.Time
	LastUsedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User User `gorm:"foreignKey:UserID"`
}

func (UserFactor) TableName() string {
	return "auth_user_factors"
}

// BeforeCreate hook for UserFactor
func (uf *UserFactor) BeforeCreate(tx *gorm.DB) error {
	if uf.ID == uuid.Nil {
		uf.ID = uuid.New()
	}

	switch uf.FactorType {
	case FactorHashpass, FactorVerificationCode:
	default:
		return fmt.Errorf("invalid factor type: %s", uf.FactorType)
	}

	return nil
}
