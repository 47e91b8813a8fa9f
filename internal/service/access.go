package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dangerclosesec/dealroom/internal/audit"
	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/dangerclosesec/dealroom/internal/repository"
	"github.com/google/uuid"
)

// ErrUserIDsNotArray is returned when a grant list body is not a JSON array.
var ErrUserIDsNotArray = fmt.Errorf("%w: userIds must be an array", domain.ErrInvalidInput)

// AccessService manages who may read private opportunities and
// specific_users files.
type AccessService struct {
	repo          repository.AccessRepositoryIface
	opportunities repository.OpportunityRepositoryIface
	files         repository.FileRepositoryIface
	recorder      audit.Recorder
}

func NewAccessService(
	repo repository.AccessRepositoryIface,
	opportunities repository.OpportunityRepositoryIface,
	files repository.FileRepositoryIface,
	recorder audit.Recorder,
) *AccessService {
	return &AccessService{
		repo:          repo,
		opportunities: opportunities,
		files:         files,
		recorder:      recorder,
	}
}

// ParseUserIDs decodes the userIds member of a grant request. Every entry must
// be a uuid string; duplicates are collapsed, first occurrence wins.
func ParseUserIDs(raw json.RawMessage) ([]uuid.UUID, error) {
	var values []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &values) != nil || values == nil {
		return nil, ErrUserIDsNotArray
	}

	ids := make([]uuid.UUID, 0, len(values))
	seen := make(map[uuid.UUID]bool, len(values))
	for _, v := range values {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, fmt.Errorf("%w: userIds must contain strings", domain.ErrInvalidInput)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid user id %q", domain.ErrInvalidInput, s)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *AccessService) OpportunityGrants(ctx context.Context, opportunityID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.opportunities.FindByID(ctx, opportunityID); err != nil {
		return nil, err
	}
	return s.repo.ListOpportunityGrants(ctx, opportunityID)
}

// ReplaceOpportunityGrants makes userIDs the exact grant set of the opportunity.
func (s *AccessService) ReplaceOpportunityGrants(ctx context.Context, caller policy.Caller, opportunityID uuid.UUID, userIDs []uuid.UUID) error {
	if _, err := s.opportunities.FindByID(ctx, opportunityID); err != nil {
		return err
	}

	if err := s.repo.ReplaceOpportunityGrants(ctx, opportunityID, userIDs); err != nil {
		return err
	}

	recordAudit(ctx, s.recorder, audit.Entry{
		Action:     model.ActionOpportunityGrantsReplace,
		ActorID:    caller.UserID,
		EntityType: model.EntityOpportunity,
		EntityID:   opportunityID,
		Context:    map[string]interface{}{"user_ids": idStrings(userIDs)},
	})
	return nil
}

// fileInOpportunity loads a file and checks that it is attached to the
// opportunity in the request path.
func fileInOpportunity(ctx context.Context, files repository.FileRepositoryIface, opportunityID, fileID uuid.UUID) (*model.File, error) {
	file, err := files.FindByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !file.BelongsTo(opportunityID) {
		return nil, domain.ErrFileNotInOpportunity
	}
	return file, nil
}

func (s *AccessService) FileGrants(ctx context.Context, opportunityID, fileID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := fileInOpportunity(ctx, s.files, opportunityID, fileID); err != nil {
		return nil, err
	}
	return s.repo.ListFileGrants(ctx, fileID)
}

// ReplaceFileGrants makes userIDs the exact grant set of the file. Grants are
// stored whatever the file visibility; they only take effect for
// specific_users files.
func (s *AccessService) ReplaceFileGrants(ctx context.Context, caller policy.Caller, opportunityID, fileID uuid.UUID, userIDs []uuid.UUID) error {
	if _, err := fileInOpportunity(ctx, s.files, opportunityID, fileID); err != nil {
		return err
	}

	if err := s.repo.ReplaceFileGrants(ctx, fileID, userIDs); err != nil {
		return err
	}

	recordAudit(ctx, s.recorder, audit.Entry{
		Action:     model.ActionFileGrantsReplace,
		ActorID:    caller.UserID,
		EntityType: model.EntityFile,
		EntityID:   fileID,
		Context: map[string]interface{}{
			"opportunity_id": opportunityID.String(),
			"user_ids":       idStrings(userIDs),
		},
	})
	return nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
