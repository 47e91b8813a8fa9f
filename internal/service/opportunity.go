package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dangerclosesec/dealroom/internal/audit"
	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/dangerclosesec/dealroom/internal/repository"
	"github.com/dangerclosesec/dealroom/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FeaturedLimit caps the anonymous featured listing.
const FeaturedLimit = 6

type OpportunityService struct {
	repo     repository.OpportunityRepositoryIface
	access   repository.AccessRepositoryIface
	files    repository.FileRepositoryIface
	store    storage.ObjectStore
	recorder audit.Recorder
	validate *validator.Validate
}

func NewOpportunityService(
	repo repository.OpportunityRepositoryIface,
	access repository.AccessRepositoryIface,
	files repository.FileRepositoryIface,
	store storage.ObjectStore,
	recorder audit.Recorder,
) *OpportunityService {
	return &OpportunityService{
		repo:     repo,
		access:   access,
		files:    files,
		store:    store,
		recorder: recorder,
		validate: validator.New(),
	}
}

type OpportunityInput struct {
	Title            string                      `json:"title" validate:"required"`
	Location         model.Location              `json:"location"`
	Visibility       model.OpportunityVisibility `json:"visibility"`
	ExternalURL      *string                     `json:"external_url"`
	ExternalPlatform *string                     `json:"external_platform"`
	Sections         []SectionInput              `json:"sections" validate:"dive"`
	Financial        *model.FinancialInfo        `json:"financial"`

	// Version is the version the editor loaded. When set, a save against a
	// newer stored version is rejected.
	Version *int `json:"version"`
}

type SectionInput struct {
	SectionType   model.SectionType `json:"section_type"`
	CustomTitle   *string           `json:"custom_title"`
	CustomContent *string           `json:"custom_content"`
	OrderNumber   int               `json:"order_number"`
	Images        []ImageInput      `json:"images" validate:"dive"`
}

type ImageInput struct {
	ID          *uuid.UUID `json:"id"`
	ImageURL    string     `json:"image_url" validate:"required"`
	Caption     *string    `json:"caption"`
	Details     *string    `json:"details"`
	OrderNumber int        `json:"order_number"`
}

// normalize validates the input and folds the financial object into the
// section list.
func (s *OpportunityService) normalize(input *OpportunityInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if input.Visibility == "" {
		input.Visibility = model.VisibilityDraft
	}
	if !input.Visibility.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidVisibility, input.Visibility)
	}

	seen := make(map[model.SectionType]bool, len(input.Sections))
	for _, section := range input.Sections {
		if !section.SectionType.Valid() {
			return fmt.Errorf("%w: %q", domain.ErrInvalidSectionType, section.SectionType)
		}
		if seen[section.SectionType] {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateSectionType, section.SectionType)
		}
		seen[section.SectionType] = true
	}

	if input.Financial != nil {
		content, err := input.Financial.Content()
		if err != nil {
			return err
		}

		financial := SectionInput{
			SectionType:   model.SectionFinancial,
			CustomContent: &content,
			OrderNumber:   len(input.Sections),
		}
		replaced := false
		for i := range input.Sections {
			if input.Sections[i].SectionType == model.SectionFinancial {
				financial.CustomTitle = input.Sections[i].CustomTitle
				financial.OrderNumber = input.Sections[i].OrderNumber
				financial.Images = input.Sections[i].Images
				input.Sections[i] = financial
				replaced = true
			}
		}
		if !replaced {
			input.Sections = append(input.Sections, financial)
		}
	}

	for i := range input.Sections {
		section := &input.Sections[i]
		if section.SectionType == model.SectionFinancial && (section.CustomTitle == nil || *section.CustomTitle == "") {
			title := model.DefaultFinancialTitle
			section.CustomTitle = &title
		}
	}

	if len(input.Sections) > len(model.SectionTypes) {
		return fmt.Errorf("%w: at most %d sections", domain.ErrInvalidInput, len(model.SectionTypes))
	}

	return nil
}

func newSection(input SectionInput) model.Section {
	section := model.Section{
		ID:            uuid.New(),
		SectionType:   input.SectionType,
		CustomTitle:   input.CustomTitle,
		CustomContent: input.CustomContent,
		OrderNumber:   input.OrderNumber,
	}
	for _, img := range input.Images {
		section.Images = append(section.Images, newImage(section.ID, img))
	}
	return section
}

func newImage(sectionID uuid.UUID, input ImageInput) model.Image {
	return model.Image{
		ID:          uuid.New(),
		SectionID:   sectionID,
		ImageURL:    input.ImageURL,
		Caption:     input.Caption,
		Details:     input.Details,
		OrderNumber: input.OrderNumber,
	}
}

// Create inserts a new opportunity with its sections and images.
func (s *OpportunityService) Create(ctx context.Context, caller policy.Caller, input OpportunityInput) (*model.Opportunity, error) {
	if err := s.normalize(&input); err != nil {
		return nil, err
	}

	opportunity := &model.Opportunity{
		ID:               uuid.New(),
		AdminID:          caller.UserID,
		Title:            input.Title,
		Location:         datatypes.NewJSONType(input.Location),
		Visibility:       input.Visibility,
		ExternalURL:      input.ExternalURL,
		ExternalPlatform: input.ExternalPlatform,
		Version:          1,
	}
	for _, section := range input.Sections {
		opportunity.Sections = append(opportunity.Sections, newSection(section))
	}

	if err := s.repo.Create(ctx, opportunity); err != nil {
		return nil, err
	}
	return opportunity, nil
}

// Get returns the full aggregate for admins.
func (s *OpportunityService) Get(ctx context.Context, id uuid.UUID) (*model.Opportunity, error) {
	return s.repo.FindByID(ctx, id)
}

// ListAll returns every opportunity, newest first, for admins.
func (s *OpportunityService) ListAll(ctx context.Context) ([]model.Opportunity, error) {
	return s.repo.List(ctx, policy.Viewer{Audience: policy.AudienceAdmin}, repository.ListParams{WithSections: true})
}

// ListVisible returns the opportunities the viewer may read, newest first.
// The query is already scoped; each row is checked against the rule again.
func (s *OpportunityService) ListVisible(ctx context.Context, viewer policy.Viewer, limit int) ([]model.Opportunity, error) {
	rows, err := s.repo.List(ctx, viewer, repository.ListParams{Limit: limit, WithSections: true})
	if err != nil {
		return nil, err
	}

	var gated []uuid.UUID
	for _, o := range rows {
		if policy.RequiresGrant(o.Visibility, viewer) {
			gated = append(gated, o.ID)
		}
	}

	granted := map[uuid.UUID]bool{}
	if len(gated) > 0 && viewer.UserID != uuid.Nil {
		granted, err = s.access.GrantedOpportunityIDs(ctx, viewer.UserID, gated)
		if err != nil {
			return nil, err
		}
	}

	visible := make([]model.Opportunity, 0, len(rows))
	for _, o := range rows {
		if policy.IsVisibleTo(policy.Target{Visibility: o.Visibility, Granted: granted[o.ID]}, viewer) {
			visible = append(visible, o)
		}
	}
	return visible, nil
}

// Featured is the anonymous listing.
func (s *OpportunityService) Featured(ctx context.Context) ([]model.Opportunity, error) {
	return s.ListVisible(ctx, policy.Featured(), FeaturedLimit)
}

// GetVisible returns one opportunity if the viewer may read it. Hidden and
// missing opportunities are indistinguishable.
func (s *OpportunityService) GetVisible(ctx context.Context, viewer policy.Viewer, id uuid.UUID) (*model.Opportunity, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	visible, err := s.visibleTo(ctx, o, viewer)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, domain.ErrOpportunityNotFound
	}
	return o, nil
}

// IsVisible reports whether the opportunity is readable by the viewer. A
// missing opportunity is ErrOpportunityNotFound.
func (s *OpportunityService) IsVisible(ctx context.Context, viewer policy.Viewer, id uuid.UUID) (bool, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	return s.visibleTo(ctx, o, viewer)
}

func (s *OpportunityService) visibleTo(ctx context.Context, o *model.Opportunity, viewer policy.Viewer) (bool, error) {
	target := policy.Target{Visibility: o.Visibility}
	if policy.RequiresGrant(o.Visibility, viewer) && viewer.UserID != uuid.Nil {
		granted, err := s.access.HasOpportunityGrant(ctx, o.ID, viewer.UserID)
		if err != nil {
			return false, err
		}
		target.Granted = granted
	}
	return policy.IsVisibleTo(target, viewer), nil
}

// Update replaces the editable content of an opportunity. Sections are
// upserted by type and images reconciled per section; sections missing from
// the input are kept.
func (s *OpportunityService) Update(ctx context.Context, id uuid.UUID, input OpportunityInput) (*model.Opportunity, error) {
	if err := s.normalize(&input); err != nil {
		return nil, err
	}

	stored, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update, err := PlanUpdate(stored, input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ApplyUpdate(ctx, update); err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, id)
}

// PlanUpdate computes the writes that turn stored into input.
func PlanUpdate(stored *model.Opportunity, input OpportunityInput) (*repository.AggregateUpdate, error) {
	if input.Version != nil && *input.Version != stored.Version {
		return nil, domain.ErrStaleVersion
	}

	updated := *stored
	updated.Title = input.Title
	updated.Location = datatypes.NewJSONType(input.Location)
	updated.Visibility = input.Visibility
	updated.ExternalURL = input.ExternalURL
	updated.ExternalPlatform = input.ExternalPlatform

	plan := &repository.AggregateUpdate{
		Opportunity: &updated,
		BaseVersion: stored.Version,
	}

	for _, sectionInput := range input.Sections {
		existing := stored.Section(sectionInput.SectionType)
		if existing == nil {
			plan.InsertSections = append(plan.InsertSections, newSection(sectionInput))
			continue
		}

		section := *existing
		section.CustomTitle = sectionInput.CustomTitle
		section.CustomContent = sectionInput.CustomContent
		section.OrderNumber = sectionInput.OrderNumber
		section.Images = nil
		plan.UpdateSections = append(plan.UpdateSections, section)

		images := ReconcileImages(existing.ID, existing.Images, sectionInput.Images)
		plan.InsertImages = append(plan.InsertImages, images.Insert...)
		plan.UpdateImages = append(plan.UpdateImages, images.Update...)
		plan.DeleteImageIDs = append(plan.DeleteImageIDs, images.Delete...)
	}

	return plan, nil
}

// ImagePlan is the difference between the stored and submitted images of one
// section.
type ImagePlan struct {
	Insert []model.Image
	Update []model.Image
	Delete []uuid.UUID
}

// ReconcileImages matches submitted images to stored ones: by id when the
// submission carries one, otherwise by URL. Matched rows keep their identity,
// unmatched submissions are inserted and unmatched stored rows are deleted.
func ReconcileImages(sectionID uuid.UUID, stored []model.Image, submitted []ImageInput) ImagePlan {
	var plan ImagePlan
	matched := make(map[uuid.UUID]bool, len(stored))

	byID := make(map[uuid.UUID]model.Image, len(stored))
	for _, img := range stored {
		byID[img.ID] = img
	}

	match := func(in ImageInput) (model.Image, bool) {
		if in.ID != nil {
			img, ok := byID[*in.ID]
			if ok && !matched[img.ID] {
				return img, true
			}
			return model.Image{}, false
		}
		for _, img := range stored {
			if !matched[img.ID] && img.ImageURL == in.ImageURL {
				return img, true
			}
		}
		return model.Image{}, false
	}

	for _, in := range submitted {
		img, ok := match(in)
		if !ok {
			plan.Insert = append(plan.Insert, newImage(sectionID, in))
			continue
		}

		matched[img.ID] = true
		img.ImageURL = in.ImageURL
		img.Caption = in.Caption
		img.Details = in.Details
		img.OrderNumber = in.OrderNumber
		plan.Update = append(plan.Update, img)
	}

	for _, img := range stored {
		if !matched[img.ID] {
			plan.Delete = append(plan.Delete, img.ID)
		}
	}

	return plan
}

// SetVisibility moves an opportunity to another state. Any transition is
// allowed.
func (s *OpportunityService) SetVisibility(ctx context.Context, caller policy.Caller, id uuid.UUID, visibility model.OpportunityVisibility, version *int) error {
	if !visibility.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidVisibility, visibility)
	}

	if err := s.repo.UpdateVisibility(ctx, id, visibility, version); err != nil {
		return err
	}

	recordAudit(ctx, s.recorder, audit.Entry{
		Action:     model.ActionOpportunityVisibility,
		ActorID:    caller.UserID,
		EntityType: model.EntityOpportunity,
		EntityID:   id,
		Context:    map[string]interface{}{"visibility": visibility},
	})
	return nil
}

// Delete removes the opportunity with everything attached to it, then the
// stored objects of its files.
func (s *OpportunityService) Delete(ctx context.Context, caller policy.Caller, id uuid.UUID) error {
	files, err := s.files.ListByOpportunity(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	for _, f := range files {
		if err := s.store.Delete(ctx, storage.FilesBucket, f.StoragePath); err != nil {
			slog.WarnContext(ctx, "failed to delete stored file", "error", err, "fileID", f.ID, "path", f.StoragePath)
		}
	}

	recordAudit(ctx, s.recorder, audit.Entry{
		Action:     model.ActionOpportunityDelete,
		ActorID:    caller.UserID,
		EntityType: model.EntityOpportunity,
		EntityID:   id,
		Context:    map[string]interface{}{"files": len(files)},
	})
	return nil
}

type AddImageInput struct {
	SectionID   string  `json:"section_id"`
	ImageURL    string  `json:"image_url"`
	Caption     *string `json:"caption"`
	Details     *string `json:"details"`
	OrderNumber int     `json:"order_number"`
}

// AddImage attaches one image to an existing section.
func (s *OpportunityService) AddImage(ctx context.Context, input AddImageInput) (*model.Image, error) {
	if blank(input.SectionID, input.ImageURL) {
		return nil, fmt.Errorf("%w: missing required fields: section_id, image_url", domain.ErrInvalidInput)
	}

	sectionID, err := uuid.Parse(input.SectionID)
	if err != nil {
		return nil, fmt.Errorf("%w: section_id must be a uuid", domain.ErrInvalidInput)
	}

	image := &model.Image{
		ID:          uuid.New(),
		SectionID:   sectionID,
		ImageURL:    input.ImageURL,
		Caption:     input.Caption,
		Details:     input.Details,
		OrderNumber: input.OrderNumber,
	}
	if err := s.repo.CreateImage(ctx, image); err != nil {
		return nil, err
	}
	return image, nil
}
