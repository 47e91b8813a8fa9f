// internal/domain/errors.go
package domain

import "errors"

var (
	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")

	// Session-related errors
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrAdminRequired           = errors.New("admin access required")
	ErrTokenRevoked            = errors.New("token revoked")
	ErrInvalidVerificationCode = errors.New("invalid verification code")

	// Identity-related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrEmailNotAllowed    = errors.New("email not authorized for admin access")
	ErrPasswordTooWeak    = errors.New("password too weak")

	// Factor-related errors
	ErrFactorNotFound = errors.New("factor not found")
	ErrInactiveFactor = errors.New("factor is inactive")

	// Profile-related errors
	ErrProfileExists   = errors.New("profile already exists")
	ErrProfileNotFound = errors.New("profile not found")
	ErrUnknownUserType = errors.New("unknown user type")

	// Opportunity-related errors
	ErrOpportunityNotFound  = errors.New("opportunity not found")
	ErrStaleVersion         = errors.New("opportunity was modified by another session")
	ErrInvalidVisibility    = errors.New("invalid visibility")
	ErrInvalidSectionType   = errors.New("invalid section type")
	ErrDuplicateSectionType = errors.New("duplicate section type")
	ErrSectionNotFound      = errors.New("section not found")

	// File-related errors
	ErrFileNotFound         = errors.New("file not found")
	ErrFileNotInOpportunity = errors.New("file does not belong to this opportunity")
	ErrUploadTooLarge       = errors.New("upload exceeds the size limit")
	ErrUnsupportedImage     = errors.New("unsupported image")
)
