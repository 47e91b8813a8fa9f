package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dangerclosesec/dealroom/internal/audit"
	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/dangerclosesec/dealroom/internal/repository"
	"github.com/dangerclosesec/dealroom/internal/storage"
	"github.com/google/uuid"
)

// StorageError wraps a failed object storage call so handlers can report the
// storage message.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

type FileService struct {
	repo          repository.FileRepositoryIface
	access        repository.AccessRepositoryIface
	opportunities *OpportunityService
	store         storage.ObjectStore
	recorder      audit.Recorder
	now           func() time.Time
}

func NewFileService(
	repo repository.FileRepositoryIface,
	access repository.AccessRepositoryIface,
	opportunities *OpportunityService,
	store storage.ObjectStore,
	recorder audit.Recorder,
) *FileService {
	return &FileService{
		repo:          repo,
		access:        access,
		opportunities: opportunities,
		store:         store,
		recorder:      recorder,
		now:           time.Now,
	}
}

// FileMetadata is the JSON metadata part of an upload.
type FileMetadata struct {
	Name          string               `json:"name"`
	Size          int64                `json:"size"`
	Visibility    model.FileVisibility `json:"visibility"`
	OpportunityID *uuid.UUID           `json:"opportunityId"`
}

type UploadInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Metadata    FileMetadata
}

type UploadOutput struct {
	PublicURL string
	FilePath  string
	File      *model.File
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Upload stores the file object and records it.
func (s *FileService) Upload(ctx context.Context, caller policy.Caller, input UploadInput) (*UploadOutput, error) {
	visibility := input.Metadata.Visibility
	if visibility == "" {
		visibility = model.FileVisibilityAll
	}
	if !visibility.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidVisibility, visibility)
	}

	name := strings.TrimSpace(input.Metadata.Name)
	if name == "" {
		name = input.Filename
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.FileKey(s.now(), input.Filename)
	body := &countingReader{r: input.Body}
	if err := s.store.Put(ctx, storage.FilesBucket, key, body, contentType); err != nil {
		return nil, &StorageError{Err: err}
	}

	size := input.Metadata.Size
	if size <= 0 {
		size = body.n
	}

	publicURL := s.store.PublicURL(storage.FilesBucket, key)
	file := &model.File{
		ID:            uuid.New(),
		OpportunityID: input.Metadata.OpportunityID,
		Name:          name,
		Size:          size,
		URL:           publicURL,
		StoragePath:   key,
		Visibility:    visibility,
		UploadedBy:    caller.UserID,
	}

	if err := s.repo.Create(ctx, file); err != nil {
		if delErr := s.store.Delete(ctx, storage.FilesBucket, key); delErr != nil {
			slog.WarnContext(ctx, "failed to remove orphaned upload", "error", delErr, "path", key)
		}
		return nil, err
	}

	return &UploadOutput{PublicURL: publicURL, FilePath: key, File: file}, nil
}

// ListForOpportunity returns all files of the opportunity, newest first.
func (s *FileService) ListForOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]model.File, error) {
	return s.repo.ListByOpportunity(ctx, opportunityID)
}

// Delete removes the stored object and the file row.
func (s *FileService) Delete(ctx context.Context, caller policy.Caller, opportunityID, fileID uuid.UUID) error {
	file, err := fileInOpportunity(ctx, s.repo, opportunityID, fileID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, storage.FilesBucket, file.StoragePath); err != nil {
		slog.WarnContext(ctx, "failed to delete stored file", "error", err, "fileID", file.ID, "path", file.StoragePath)
	}

	if err := s.repo.Delete(ctx, file.ID); err != nil {
		return err
	}

	recordAudit(ctx, s.recorder, audit.Entry{
		Action:     model.ActionFileDelete,
		ActorID:    caller.UserID,
		EntityType: model.EntityFile,
		EntityID:   file.ID,
		Context:    map[string]interface{}{"opportunity_id": opportunityID.String(), "name": file.Name},
	})
	return nil
}

// SetVisibility changes who can read a file. Existing grants are kept.
func (s *FileService) SetVisibility(ctx context.Context, caller policy.Caller, opportunityID, fileID uuid.UUID, visibility model.FileVisibility) error {
	if !visibility.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidVisibility, visibility)
	}

	file, err := fileInOpportunity(ctx, s.repo, opportunityID, fileID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateVisibility(ctx, file.ID, visibility); err != nil {
		return err
	}

	recordAudit(ctx, s.recorder, audit.Entry{
		Action:     model.ActionFileVisibility,
		ActorID:    caller.UserID,
		EntityType: model.EntityFile,
		EntityID:   file.ID,
		Context: map[string]interface{}{
			"opportunity_id": opportunityID.String(),
			"from":           file.Visibility,
			"to":             visibility,
		},
	})
	return nil
}

// VisibleFiles returns the files of an opportunity the viewer may read. A
// hidden opportunity still exposes its all and granted specific_users files;
// it reads as not found only when none of them pass.
func (s *FileService) VisibleFiles(ctx context.Context, viewer policy.Viewer, opportunityID uuid.UUID) ([]model.File, error) {
	parentVisible, err := s.opportunities.IsVisible(ctx, viewer, opportunityID)
	if err != nil {
		return nil, err
	}

	files, err := s.repo.ListByOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}

	var restricted []uuid.UUID
	for _, f := range files {
		if f.Visibility == model.FileVisibilitySpecificUsers {
			restricted = append(restricted, f.ID)
		}
	}

	granted := map[uuid.UUID]bool{}
	if len(restricted) > 0 && viewer.UserID != uuid.Nil && viewer.Audience != policy.AudienceAdmin {
		granted, err = s.access.GrantedFileIDs(ctx, viewer.UserID, restricted)
		if err != nil {
			return nil, err
		}
	}

	visible := make([]model.File, 0, len(files))
	for _, f := range files {
		if policy.FileVisibleTo(f.Visibility, parentVisible, granted[f.ID], viewer) {
			visible = append(visible, f)
		}
	}
	if !parentVisible && len(visible) == 0 {
		return nil, domain.ErrOpportunityNotFound
	}
	return visible, nil
}
