// internal/repository/opportunity.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OpportunityRepositoryIface interface {
	Create(ctx context.Context, opportunity *model.Opportunity) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Opportunity, error)
	List(ctx context.Context, viewer policy.Viewer, params ListParams) ([]model.Opportunity, error)
	Count(ctx context.Context, visibilities ...model.OpportunityVisibility) (int64, error)
	ApplyUpdate(ctx context.Context, update *AggregateUpdate) error
	UpdateVisibility(ctx context.Context, id uuid.UUID, visibility model.OpportunityVisibility, baseVersion *int) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateImage(ctx context.Context, image *model.Image) error
}

// ListParams controls paging and eager loading of opportunity lists.
type ListParams struct {
	Limit        int
	Offset       int
	WithSections bool
}

// AggregateUpdate is a fully planned edit of one opportunity. It is applied
// atomically and only if the stored version still equals BaseVersion.
type AggregateUpdate struct {
	Opportunity *model.Opportunity
	BaseVersion int

	InsertSections []model.Section
	UpdateSections []model.Section

	InsertImages   []model.Image
	UpdateImages   []model.Image
	DeleteImageIDs []uuid.UUID
}

type OpportunityRepository struct {
	db *gorm.DB
}

func NewOpportunityRepository(db *gorm.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

func withAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sections.order_number ASC")
		}).
		Preload("Sections.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("images.order_number ASC")
		})
}

// Create inserts the opportunity with its sections and their images in one transaction.
func (r *OpportunityRepository) Create(ctx context.Context, opportunity *model.Opportunity) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Sections").Create(opportunity).Error; err != nil {
			return fmt.Errorf("creating opportunity: %w", err)
		}

		for i := range opportunity.Sections {
			section := &opportunity.Sections[i]
			section.OpportunityID = opportunity.ID
			if err := tx.Omit("Images").Create(section).Error; err != nil {
				return fmt.Errorf("creating %s section: %w", section.SectionType, err)
			}

			for j := range section.Images {
				section.Images[j].SectionID = section.ID
			}
			if len(section.Images) > 0 {
				if err := tx.Create(&section.Images).Error; err != nil {
					return fmt.Errorf("creating %s section images: %w", section.SectionType, err)
				}
			}
		}

		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrDuplicateSectionType, err)
		}
		return err
	}
	return nil
}

func (r *OpportunityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Opportunity, error) {
	var opportunity model.Opportunity
	result := withAggregate(r.db.WithContext(ctx)).First(&opportunity, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOpportunityNotFound
		}
		return nil, fmt.Errorf("finding opportunity: %w", result.Error)
	}
	return &opportunity, nil
}

// List returns the opportunities the viewer may read, newest first.
func (r *OpportunityRepository) List(ctx context.Context, viewer policy.Viewer, params ListParams) ([]model.Opportunity, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Opportunity{}).
		Scopes(policy.OpportunityScope(viewer)).
		Order("investment_opportunities.created_at DESC")

	if params.WithSections {
		query = withAggregate(query)
	}
	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	}
	if params.Offset > 0 {
		query = query.Offset(params.Offset)
	}

	var opportunities []model.Opportunity
	if err := query.Find(&opportunities).Error; err != nil {
		return nil, fmt.Errorf("listing opportunities: %w", err)
	}
	return opportunities, nil
}

func (r *OpportunityRepository) Count(ctx context.Context, visibilities ...model.OpportunityVisibility) (int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Opportunity{})
	if len(visibilities) > 0 {
		query = query.Where("visibility IN ?", visibilities)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting opportunities: %w", err)
	}
	return count, nil
}

func (r *OpportunityRepository) ApplyUpdate(ctx context.Context, update *AggregateUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		o := update.Opportunity

		result := tx.Model(&model.Opportunity{}).
			Where("id = ? AND version = ?", o.ID, update.BaseVersion).
			Updates(map[string]interface{}{
				"title":             o.Title,
				"location":          o.Location,
				"visibility":        o.Visibility,
				"external_url":      o.ExternalURL,
				"external_platform": o.ExternalPlatform,
				"version":           gorm.Expr("version + 1"),
				"updated_at":        now,
			})
		if result.Error != nil {
			return fmt.Errorf("updating opportunity: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return r.missingOrStale(tx, o.ID)
		}

		for i := range update.InsertSections {
			section := &update.InsertSections[i]
			section.OpportunityID = o.ID
			if err := tx.Omit("Images").Create(section).Error; err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: %s", domain.ErrDuplicateSectionType, section.SectionType)
				}
				return fmt.Errorf("creating %s section: %w", section.SectionType, err)
			}
			for j := range section.Images {
				section.Images[j].SectionID = section.ID
			}
			if len(section.Images) > 0 {
				if err := tx.Create(&section.Images).Error; err != nil {
					return fmt.Errorf("creating %s section images: %w", section.SectionType, err)
				}
			}
		}

		for _, section := range update.UpdateSections {
			err := tx.Model(&model.Section{}).
				Where("id = ? AND opportunity_id = ?", section.ID, o.ID).
				Updates(map[string]interface{}{
					"custom_title":   section.CustomTitle,
					"custom_content": section.CustomContent,
					"order_number":   section.OrderNumber,
					"updated_at":     now,
				}).Error
			if err != nil {
				return fmt.Errorf("updating %s section: %w", section.SectionType, err)
			}
		}

		if len(update.DeleteImageIDs) > 0 {
			if err := tx.Where("id IN ?", update.DeleteImageIDs).Delete(&model.Image{}).Error; err != nil {
				return fmt.Errorf("deleting images: %w", err)
			}
		}

		for _, image := range update.UpdateImages {
			err := tx.Model(&model.Image{}).
				Where("id = ?", image.ID).
				Updates(map[string]interface{}{
					"image_url":    image.ImageURL,
					"caption":      image.Caption,
					"details":      image.Details,
					"order_number": image.OrderNumber,
				}).Error
			if err != nil {
				return fmt.Errorf("updating image: %w", err)
			}
		}

		if len(update.InsertImages) > 0 {
			if err := tx.Create(&update.InsertImages).Error; err != nil {
				return fmt.Errorf("creating images: %w", err)
			}
		}

		return nil
	})
}

// UpdateVisibility changes only the visibility. A nil baseVersion skips the
// concurrency check.
func (r *OpportunityRepository) UpdateVisibility(ctx context.Context, id uuid.UUID, visibility model.OpportunityVisibility, baseVersion *int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&model.Opportunity{}).Where("id = ?", id)
		if baseVersion != nil {
			query = query.Where("version = ?", *baseVersion)
		}

		result := query.Updates(map[string]interface{}{
			"visibility": visibility,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
		if result.Error != nil {
			return fmt.Errorf("updating opportunity visibility: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return r.missingOrStale(tx, id)
		}
		return nil
	})
}

func (r *OpportunityRepository) missingOrStale(tx *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := tx.Model(&model.Opportunity{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("checking opportunity: %w", err)
	}
	if count == 0 {
		return domain.ErrOpportunityNotFound
	}
	return domain.ErrStaleVersion
}

// Delete removes the opportunity; sections, images, files and grants go with it.
func (r *OpportunityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Opportunity{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("deleting opportunity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrOpportunityNotFound
	}
	return nil
}

func (r *OpportunityRepository) CreateImage(ctx context.Context, image *model.Image) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrSectionNotFound
		}
		return fmt.Errorf("creating image: %w", err)
	}
	return nil
}
