// internal/repository/access.go
package repository

import (
	"context"
	"fmt"

	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessRepositoryIface is the grant store for private opportunities and
// specific_users files.
type AccessRepositoryIface interface {
	ListOpportunityGrants(ctx context.Context, opportunityID uuid.UUID) ([]uuid.UUID, error)
	ReplaceOpportunityGrants(ctx context.Context, opportunityID uuid.UUID, userIDs []uuid.UUID) error
	HasOpportunityGrant(ctx context.Context, opportunityID, userID uuid.UUID) (bool, error)
	GrantedOpportunityIDs(ctx context.Context, userID uuid.UUID, opportunityIDs []uuid.UUID) (map[uuid.UUID]bool, error)

	ListFileGrants(ctx context.Context, fileID uuid.UUID) ([]uuid.UUID, error)
	ReplaceFileGrants(ctx context.Context, fileID uuid.UUID, userIDs []uuid.UUID) error
	HasFileGrant(ctx context.Context, fileID, userID uuid.UUID) (bool, error)
	GrantedFileIDs(ctx context.Context, userID uuid.UUID, fileIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type AccessRepository struct {
	db *gorm.DB
}

func NewAccessRepository(db *gorm.DB) *AccessRepository {
	return &AccessRepository{db: db}
}

func (r *AccessRepository) ListOpportunityGrants(ctx context.Context, opportunityID uuid.UUID) ([]uuid.UUID, error) {
	userIDs := []uuid.UUID{}
	err := r.db.WithContext(ctx).
		Model(&model.OpportunityAccess{}).
		Where("opportunity_id = ?", opportunityID).
		Order("created_at ASC").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, fmt.Errorf("listing opportunity grants: %w", err)
	}
	return userIDs, nil
}

// ReplaceOpportunityGrants makes userIDs the exact grant set of the opportunity.
// The delete and the insert commit together, so readers never see an empty set
// in between.
func (r *AccessRepository) ReplaceOpportunityGrants(ctx context.Context, opportunityID uuid.UUID, userIDs []uuid.UUID) error {
	userIDs = uniqueIDs(userIDs)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("opportunity_id = ?", opportunityID).Delete(&model.OpportunityAccess{}).Error; err != nil {
			return fmt.Errorf("clearing opportunity grants: %w", err)
		}

		if len(userIDs) == 0 {
			return nil
		}

		grants := make([]model.OpportunityAccess, len(userIDs))
		for i, userID := range userIDs {
			grants[i] = model.OpportunityAccess{OpportunityID: opportunityID, UserID: userID}
		}
		if err := tx.Create(&grants).Error; err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: %v", domain.ErrUserNotFound, err)
			}
			return fmt.Errorf("inserting opportunity grants: %w", err)
		}
		return nil
	})
}

func (r *AccessRepository) HasOpportunityGrant(ctx context.Context, opportunityID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.OpportunityAccess{}).
		Where("opportunity_id = ? AND user_id = ?", opportunityID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking opportunity grant: %w", err)
	}
	return count > 0, nil
}

// GrantedOpportunityIDs reports which of the given opportunities the user holds a grant for.
func (r *AccessRepository) GrantedOpportunityIDs(ctx context.Context, userID uuid.UUID, opportunityIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	granted := make(map[uuid.UUID]bool)
	if len(opportunityIDs) == 0 {
		return granted, nil
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.OpportunityAccess{}).
		Where("user_id = ? AND opportunity_id IN ?", userID, opportunityIDs).
		Pluck("opportunity_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("finding granted opportunities: %w", err)
	}

	for _, id := range ids {
		granted[id] = true
	}
	return granted, nil
}

func (r *AccessRepository) ListFileGrants(ctx context.Context, fileID uuid.UUID) ([]uuid.UUID, error) {
	userIDs := []uuid.UUID{}
	err := r.db.WithContext(ctx).
		Model(&model.FileAccess{}).
		Where("file_id = ?", fileID).
		Order("created_at ASC").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, fmt.Errorf("listing file grants: %w", err)
	}
	return userIDs, nil
}

func (r *AccessRepository) ReplaceFileGrants(ctx context.Context, fileID uuid.UUID, userIDs []uuid.UUID) error {
	userIDs = uniqueIDs(userIDs)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", fileID).Delete(&model.FileAccess{}).Error; err != nil {
			return fmt.Errorf("clearing file grants: %w", err)
		}

		if len(userIDs) == 0 {
			return nil
		}

		grants := make([]model.FileAccess, len(userIDs))
		for i, userID := range userIDs {
			grants[i] = model.FileAccess{FileID: fileID, UserID: userID}
		}
		if err := tx.Create(&grants).Error; err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: %v", domain.ErrUserNotFound, err)
			}
			return fmt.Errorf("inserting file grants: %w", err)
		}
		return nil
	})
}

func (r *AccessRepository) HasFileGrant(ctx context.Context, fileID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.FileAccess{}).
		Where("file_id = ? AND user_id = ?", fileID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking file grant: %w", err)
	}
	return count > 0, nil
}

func (r *AccessRepository) GrantedFileIDs(ctx context.Context, userID uuid.UUID, fileIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	granted := make(map[uuid.UUID]bool)
	if len(fileIDs) == 0 {
		return granted, nil
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.FileAccess{}).
		Where("user_id = ? AND file_id IN ?", userID, fileIDs).
		Pluck("file_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("finding granted files: %w", err)
	}

	for _, id := range ids {
		granted[id] = true
	}
	return granted, nil
}
