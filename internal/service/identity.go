// internal/service/identity.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dangerclosesec/dealroom/internal/auth"
	"github.com/dangerclosesec/dealroom/internal/domain"
	"github.com/dangerclosesec/dealroom/internal/model"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/dangerclosesec/dealroom/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

//go:generate mockgen -source=./identity.go -destination=../mocks/mock_confirmation_mailer.go -package=mocks ConfirmationMailer

// Portal is the sign-in surface a session belongs to. Its value is what the
// token-type cookie carries.
type Portal string

const (
	PortalInvestor Portal = auth.MarkerUser
	PortalAdmin    Portal = auth.MarkerAdmin
)

func (p Portal) prefix() string {
	if p == PortalAdmin {
		return "/admin"
	}
	return ""
}

// SigninPage is where a failed session check sends the browser.
func (p Portal) SigninPage() string {
	return p.prefix() + "/auth/signin"
}

func (p Portal) completeProfilePage() string {
	return p.prefix() + "/auth/complete-profile"
}

func (p Portal) dashboardPage() string {
	return p.prefix() + "/dashboard"
}

// rotationReuseWindow is how long a rotated refresh token keeps yielding the
// pair it was exchanged for. Pages fire parallel requests with one cookie set.
const rotationReuseWindow = 30 * time.Second

// ConfirmationMailer delivers the signup confirmation link.
type ConfirmationMailer interface {
	SendSignupConfirmation(ctx context.Context, to, portal, link string) error
}

type IdentityService struct {
	users     repository.UserRepositoryIface
	profiles  repository.ProfileRepositoryIface
	factors   *UserFactorService
	tokens    *auth.TokenManager
	sessions  auth.SessionStore
	allowList *auth.AdminAllowList
	mailer    ConfirmationMailer
	baseURL   string
	validate  *validator.Validate
}

func NewIdentityService(
	users repository.UserRepositoryIface,
	profiles repository.ProfileRepositoryIface,
	factors *UserFactorService,
	tokens *auth.TokenManager,
	sessions auth.SessionStore,
	allowList *auth.AdminAllowList,
	mailer ConfirmationMailer,
	baseURL string,
) *IdentityService {
	return &IdentityService{
		users:     users,
		profiles:  profiles,
		factors:   factors,
		tokens:    tokens,
		sessions:  sessions,
		allowList: allowList,
		mailer:    mailer,
		baseURL:   strings.TrimRight(baseURL, "/"),
		validate:  validator.New(),
	}
}

type CredentialsInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupOutput struct {
	RedirectTo string
}

// Session is an authenticated sign-in: the tokens to set and where to go next.
type Session struct {
	User       *model.User
	Tokens     *auth.TokenPair
	RedirectTo string
}

// Signup creates a pending identity and emails its confirmation link.
func (s *IdentityService) Signup(ctx context.Context, portal Portal, input CredentialsInput) (*SignupOutput, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if portal == PortalAdmin && !s.allowList.Contains(input.Email) {
		return nil, domain.ErrEmailNotAllowed
	}

	password, err := s.factors.PasswordFactor(input.Password)
	if err != nil {
		return nil, err
	}

	verification, code, err := s.factors.VerificationFactor()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:  input.Email,
		Status: model.StatusPending,
	}
	if err := s.users.CreateWithFactors(ctx, user, password, verification); err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s%s/auth/callback?code=%s&type=signup", s.baseURL, portal.prefix(), url.QueryEscape(code))
	if err := s.mailer.SendSignupConfirmation(ctx, user.Email, string(portal), link); err != nil {
		return nil, fmt.Errorf("sending confirmation email: %w", err)
	}

	return &SignupOutput{RedirectTo: portal.prefix() + "/auth/verify-email"}, nil
}

// Signin checks a password and opens a session for the portal.
func (s *IdentityService) Signin(ctx context.Context, portal Portal, input CredentialsInput) (*Session, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if portal == PortalAdmin && !s.allowList.Contains(input.Email) {
		return nil, domain.ErrEmailNotAllowed
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Status == model.StatusSuspended {
		return nil, domain.ErrInvalidCredentials
	}

	verified, err := s.factors.VerifyPassword(ctx, user.ID, input.Password)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.Confirmed() {
		return nil, domain.ErrEmailNotConfirmed
	}

	return s.openSession(ctx, portal, user, false)
}

// Callback consumes a confirmation code, activates the identity and opens a
// session. flow is the callback's type parameter.
func (s *IdentityService) Callback(ctx context.Context, portal Portal, code, flow string) (*Session, error) {
	factor, err := s.factors.ConsumeVerificationCode(ctx, code)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, factor.UserID)
	if err != nil {
		return nil, err
	}

	if portal == PortalAdmin && !s.allowList.Contains(user.Email) {
		return nil, domain.ErrEmailNotAllowed
	}

	if !user.Confirmed() {
		now := time.Now().UTC()
		user.Status = model.StatusActive
		user.EmailConfirmedAt = &now
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("activating user: %w", err)
		}
	}

	return s.openSession(ctx, portal, user, flow == "signup")
}

func (s *IdentityService) openSession(ctx context.Context, portal Portal, user *model.User, forceProfile bool) (*Session, error) {
	pair, err := s.tokens.Issue(user.ID.String(), user.Email)
	if err != nil {
		return nil, fmt.Errorf("issuing tokens: %w", err)
	}

	redirect := portal.completeProfilePage()
	if !forceProfile {
		complete, err := s.profileComplete(ctx, portal, user.ID)
		if err != nil {
			return nil, err
		}
		if complete {
			redirect = portal.dashboardPage()
		}
	}

	return &Session{User: user, Tokens: pair, RedirectTo: redirect}, nil
}

func (s *IdentityService) profileComplete(ctx context.Context, portal Portal, userID uuid.UUID) (bool, error) {
	if portal == PortalAdmin {
		exists, err := s.profiles.AdminExists(ctx, userID)
		if err != nil {
			return false, fmt.Errorf("checking admin profile: %w", err)
		}
		return exists, nil
	}

	if _, err := s.profiles.FindUserProfile(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("checking profile: %w", err)
	}

	linked, err := s.profiles.HasUserType(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("checking user type: %w", err)
	}
	return linked, nil
}

// Signout revokes whichever of the session tokens are still live. Tokens that
// no longer parse need no revocation.
func (s *IdentityService) Signout(ctx context.Context, creds auth.Credentials) error {
	var errs []error

	if claims, err := s.tokens.Validate(creds.AccessToken, auth.AccessToken); err == nil {
		if err := s.sessions.Revoke(ctx, claims.ID, claims.Remaining()); err != nil {
			errs = append(errs, fmt.Errorf("revoking access token: %w", err))
		}
	}
	if claims, err := s.tokens.Validate(creds.RefreshToken, auth.RefreshToken); err == nil {
		if err := s.sessions.Revoke(ctx, claims.ID, claims.Remaining()); err != nil {
			errs = append(errs, fmt.Errorf("revoking refresh token: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Resolution is the outcome of resolving a request's session cookies.
type Resolution struct {
	Caller policy.Caller
	// Refreshed is set when the access token was replaced; the caller must
	// write the new pair back to the client.
	Refreshed *auth.TokenPair
}

// Resolve turns session cookies into a caller, rotating the token pair when
// only the refresh token is still good.
func (s *IdentityService) Resolve(ctx context.Context, creds auth.Credentials) (*Resolution, error) {
	if creds.Empty() {
		return nil, domain.ErrUnauthorized
	}

	claims, err := s.validLive(ctx, creds.AccessToken, auth.AccessToken)
	if err != nil {
		return nil, err
	}

	var refreshed *auth.TokenPair
	if claims == nil {
		claims, refreshed, err = s.rotate(ctx, creds.RefreshToken)
		if err != nil {
			return nil, err
		}
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	isAdmin, err := s.profiles.AdminExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving role: %w", err)
	}

	role := policy.RoleInvestor
	if isAdmin {
		role = policy.RoleAdmin
	}

	return &Resolution{
		Caller: policy.Caller{
			UserID: userID,
			Email:  claims.Email,
			Role:   role,
		},
		Refreshed: refreshed,
	}, nil
}

// rotate exchanges a refresh token for a new pair. Requests that present the
// same refresh token within rotationReuseWindow share one successor pair.
func (s *IdentityService) rotate(ctx context.Context, refreshToken string) (*auth.Claims, *auth.TokenPair, error) {
	if refreshToken == "" {
		return nil, nil, domain.ErrUnauthorized
	}
	claims, err := s.tokens.Validate(refreshToken, auth.RefreshToken)
	if err != nil {
		slog.DebugContext(ctx, "session token rejected", "type", auth.RefreshToken, "error", err)
		return nil, nil, domain.ErrUnauthorized
	}

	successor, err := s.sessions.Rotated(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading rotated session: %w", err)
	}
	if successor != nil {
		revoked, err := s.sessions.IsRevoked(ctx, successor.RefreshJTI)
		if err != nil {
			return nil, nil, fmt.Errorf("checking revocation: %w", err)
		}
		if revoked {
			return nil, nil, domain.ErrUnauthorized
		}
		return claims, successor, nil
	}

	revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("checking revocation: %w", err)
	}
	if revoked {
		return nil, nil, domain.ErrUnauthorized
	}

	next, err := s.tokens.Issue(claims.UserID, claims.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("issuing tokens: %w", err)
	}
	next, err = s.sessions.ClaimRotation(ctx, claims.ID, next, rotationReuseWindow, claims.Remaining())
	if err != nil {
		return nil, nil, fmt.Errorf("rotating refresh token: %w", err)
	}
	return claims, next, nil
}

// validLive returns the claims of token when it is well formed, unexpired and
// not revoked, and nil claims when it is not usable.
func (s *IdentityService) validLive(ctx context.Context, token string, typ auth.TokenType) (*auth.Claims, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := s.tokens.Validate(token, typ)
	if err != nil {
		slog.DebugContext(ctx, "session token rejected", "type", typ, "error", err)
		return nil, nil
	}

	revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("checking revocation: %w", err)
	}
	if revoked {
		return nil, nil
	}

	return claims, nil
}

// AllowsAdmin reports whether email is on the admin allow-list.
func (s *IdentityService) AllowsAdmin(email string) bool {
	return s.allowList.Contains(email)
}
