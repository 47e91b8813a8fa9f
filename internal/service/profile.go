package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dangerclosesec/dealroom/internal/auth"
	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/dangerclosesec/dealroom/internal/repository"
	"gorm.io/datatypes"
)

type ProfileService struct {
	repo      repository.ProfileRepositoryIface
	allowList *auth.AdminAllowList
}

func NewProfileService(repo repository.ProfileRepositoryIface, allowList *auth.AdminAllowList) *ProfileService {
	return &ProfileService{repo: repo, allowList: allowList}
}

type CreateProfileInput struct {
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	DateOfBirth  string          `json:"dateOfBirth"`
	Nationality  string          `json:"nationality"`
	Location     string          `json:"location"`
	LocationData json.RawMessage `json:"locationData"`
	UserType     json.Number     `json:"userType"`
}

// CreateUserProfile stores the investor profile of the caller together with
// its user type.
func (s *ProfileService) CreateUserProfile(ctx context.Context, caller policy.Caller, input CreateProfileInput) (*model.UserProfile, error) {
	if blank(input.FirstName, input.LastName, input.DateOfBirth, input.Nationality, input.Location, input.UserType.String()) {
		return nil, fmt.Errorf("%w: all fields are required", domain.ErrInvalidInput)
	}

	dob, err := time.Parse("2006-01-02", strings.TrimSpace(input.DateOfBirth))
	if err != nil {
		return nil, fmt.Errorf("%w: date of birth must be YYYY-MM-DD", domain.ErrInvalidInput)
	}

	userType, err := input.UserType.Int64()
	if err != nil || userType <= 0 {
		return nil, domain.ErrUnknownUserType
	}

	location, err := profileLocation(input.Location, input.LocationData)
	if err != nil {
		return nil, err
	}

	profile := &model.UserProfile{
		ID:          caller.UserID,
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		DateOfBirth: datatypes.Date(dob),
		Nationality: strings.TrimSpace(input.Nationality),
		Location:    location,
	}

	if err := s.repo.CreateUserProfile(ctx, profile, int(userType)); err != nil {
		return nil, err
	}
	return profile, nil
}

// profileLocation prefers the structured location and falls back to the
// free-text address.
func profileLocation(address string, data json.RawMessage) (datatypes.JSON, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("%w: locationData is not valid JSON", domain.ErrInvalidInput)
		}
		return datatypes.JSON(trimmed), nil
	}

	b, err := json.Marshal(map[string]string{"address": strings.TrimSpace(address)})
	if err != nil {
		return nil, fmt.Errorf("encoding location: %w", err)
	}
	return datatypes.JSON(b), nil
}

type CreateAdminProfileInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (s *ProfileService) CreateAdminProfile(ctx context.Context, caller policy.Caller, input CreateAdminProfileInput) (*model.AdminProfile, error) {
	if blank(input.FirstName, input.LastName) {
		return nil, fmt.Errorf("%w: first name and last name are required", domain.ErrInvalidInput)
	}

	if !s.allowList.Contains(caller.Email) {
		return nil, domain.ErrEmailNotAllowed
	}

	profile := &model.AdminProfile{
		ID:        caller.UserID,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
	}
	if err := s.repo.CreateAdminProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ListUsers returns every investor profile with its user types, most
// recently updated first.
func (s *ProfileService) ListUsers(ctx context.Context) ([]model.UserProfile, error) {
	return s.repo.ListUserProfiles(ctx, 0)
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
