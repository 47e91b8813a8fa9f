// internal/repository/profile.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepositoryIface interface {
	CreateUserProfile(ctx context.Context, profile *model.UserProfile, userTypeID int) error
	FindUserProfile(ctx context.Context, id uuid.UUID) (*model.UserProfile, error)
	HasUserType(ctx context.Context, id uuid.UUID) (bool, error)
	ListUserProfiles(ctx context.Context, limit int) ([]model.UserProfile, error)
	CountUserProfiles(ctx context.Context) (int64, error)

	CreateAdminProfile(ctx context.Context, profile *model.AdminProfile) error
	FindAdminProfile(ctx context.Context, id uuid.UUID) (*model.AdminProfile, error)
	AdminExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// CreateUserProfile inserts the profile and its user type link together.
func (r *ProfileRepository) CreateUserProfile(ctx context.Context, profile *model.UserProfile, userTypeID int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("UserTypes").Create(profile).Error; err != nil {
			return fmt.Errorf("creating user profile: %w", err)
		}

		link := model.UserToUserType{UserID: profile.ID, UserTypeID: userTypeID}
		if err := tx.Create(&link).Error; err != nil {
			return fmt.Errorf("linking user type: %w", err)
		}
		return nil
	})

	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrProfileExists
	case isForeignKeyViolation(err):
		return domain.ErrUnknownUserType
	default:
		return err
	}
}

func (r *ProfileRepository) FindUserProfile(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	var profile model.UserProfile
	result := r.db.WithContext(ctx).Preload("UserTypes").First(&profile, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("finding user profile: %w", result.Error)
	}
	return &profile, nil
}

// HasUserType reports whether the user has picked at least one user type.
func (r *ProfileRepository) HasUserType(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.UserToUserType{}).
		Where("user_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking user type: %w", err)
	}
	return count > 0, nil
}

// ListUserProfiles returns profiles with their user types, most recently
// updated first. A non-positive limit returns all of them.
func (r *ProfileRepository) ListUserProfiles(ctx context.Context, limit int) ([]model.UserProfile, error) {
	query := r.db.WithContext(ctx).Preload("UserTypes").Order("updated_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	profiles := []model.UserProfile{}
	if err := query.Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("listing user profiles: %w", err)
	}
	return profiles, nil
}

func (r *ProfileRepository) CountUserProfiles(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.UserProfile{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting user profiles: %w", err)
	}
	return count, nil
}

func (r *ProfileRepository) CreateAdminProfile(ctx context.Context, profile *model.AdminProfile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrProfileExists
		}
		return fmt.Errorf("creating admin profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) FindAdminProfile(ctx context.Context, id uuid.UUID) (*model.AdminProfile, error) {
	var profile model.AdminProfile
	result := r.db.WithContext(ctx).First(&profile, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("finding admin profile: %w", result.Error)
	}
	return &profile, nil
}

// AdminExists is the admin role test: the role is held iff the row exists.
func (r *ProfileRepository) AdminExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AdminProfile{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking admin profile: %w", err)
	}
	return count > 0, nil
}
