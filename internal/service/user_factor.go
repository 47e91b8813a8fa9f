// internal/service/user_factor.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dangerclosesec/dealroom/internal/auth"
	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/dangerclosesec/dealroom/internal/repository"
	"github.com/google/uuid"
)

// VerificationCodeTTL bounds how long a signup confirmation link stays usable.
const VerificationCodeTTL = 24 * time.Hour

type UserFactorService struct {
	repo   repository.UserFactorRepositoryIface
	hasher *auth.PasswordHasher
	now    func() time.Time
}

func NewUserFactorService(repo repository.UserFactorRepositoryIface, hasher *auth.PasswordHasher) *UserFactorService {
	return &UserFactorService{
		repo:   repo,
		hasher: hasher,
		now:    time.Now,
	}
}

// PasswordFactor builds an unsaved hashpass factor for password.
func (s *UserFactorService) PasswordFactor(password string) (*model.UserFactor, error) {
	if err := s.hasher.CheckStrength(password); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	return &model.UserFactor{
		FactorType: model.FactorHashpass,
		Material:   hashed,
		IsActive:   true,
	}, nil
}

// VerificationFactor builds an unsaved verification factor. Only the hash of
// the returned code is stored.
func (s *UserFactorService) VerificationFactor() (*model.UserFactor, string, error) {
	code, err := auth.NewVerificationCode()
	if err != nil {
		return nil, "", err
	}

	return &model.UserFactor{
		FactorType: model.FactorVerificationCode,
		Material:   auth.HashVerificationCode(code),
		IsActive:   true,
	}, code, nil
}

// VerifyPassword checks if the provided password matches the stored hash for the user
func (s *UserFactorService) VerifyPassword(ctx context.Context, userID uuid.UUID, password string) (bool, error) {
	factor, err := s.repo.FindByUserAndType(ctx, userID, model.FactorHashpass)
	if err != nil {
		if errors.Is(err, domain.ErrFactorNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("finding password factor: %w", err)
	}

	if !factor.IsActive {
		return false, nil
	}

	verified, err := s.hasher.Verify(password, factor.Material)
	if err != nil {
		return false, fmt.Errorf("verifying password: %w", err)
	}

	if verified {
		now := s.now().UTC()
		factor.LastUsedAt = &now
		if err := s.repo.Update(ctx, factor); err != nil {
			slog.WarnContext(ctx, "failed to update last used timestamp", "error", err, "factorID", factor.ID)
		}
	}

	return verified, nil
}

// ConsumeVerificationCode marks the factor behind code as verified and
// deactivates it so the link works once.
func (s *UserFactorService) ConsumeVerificationCode(ctx context.Context, code string) (*model.UserFactor, error) {
	if code == "" {
		return nil, domain.ErrInvalidVerificationCode
	}

	factor, err := s.repo.FindActiveByMaterial(ctx, model.FactorVerificationCode, auth.HashVerificationCode(code))
	if err != nil {
		if errors.Is(err, domain.ErrFactorNotFound) {
			return nil, domain.ErrInvalidVerificationCode
		}
		return nil, fmt.Errorf("finding verification factor: %w", err)
	}

	now := s.now().UTC()
	if now.Sub(factor.CreatedAt) > VerificationCodeTTL {
		return nil, domain.ErrInvalidVerificationCode
	}

	factor.IsActive = false
	factor.VerifiedAt = &now
	factor.LastUsedAt = &now
	if err := s.repo.Update(ctx, factor); err != nil {
		return nil, fmt.Errorf("updating verification factor: %w", err)
	}

	return factor, nil
}
