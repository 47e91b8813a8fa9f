// internal/repository/file.go
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

type FileRepositoryIface interface {
	Create(ctx context.Context, file *model.File) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.File, error)
	ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]model.File, error)
	UpdateVisibility(ctx context.Context, id uuid.UUID, visibility model.FileVisibility) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *model.File) error {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrOpportunityNotFound
		}
		return fmt.Errorf("creating file: %w", err)
	}
	return nil
}

func (r *FileRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.File, error) {
	var file model.File
	if err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFileNotFound
		}
		return nil, fmt.Errorf("finding file: %w", err)
	}
	return &file, nil
}

// ListByOpportunity returns the files attached to an opportunity, newest first.
func (r *FileRepository) ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]model.File, error) {
	files := []model.File{}
	err := r.db.WithContext(ctx).
		Where("opportunity_id = ?", opportunityID).
		Order("created_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return files, nil
}

func (r *FileRepository) UpdateVisibility(ctx context.Context, id uuid.UUID, visibility model.FileVisibility) error {
	result := r.db.WithContext(ctx).
		Model(&model.File{}).
		Where("id = ?", id).
		Update("visibility", visibility)
	if result.Error != nil {
		return fmt.Errorf("updating file visibility: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.File{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("deleting file: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}
