// internal/auth/password.go
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dangerclosesec/dealroom/internal/domain"
	"golang.org/x/crypto/argon2"
)

// MinPasswordLength is the shortest password signup accepts.
const MinPasswordLength = 8

const (
	argonAlgorithm = "argon2id"
	saltLen        = 16
)

// ErrMalformedHash is returned by Verify for material that is not an argon2id
// PHC string this package could have produced.
var ErrMalformedHash = errors.New("malformed password hash")

// argonParams are the cost parameters encoded into every hash, so stored
// passwords keep verifying after the defaults change.
type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

func (p argonParams) key(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

// PasswordHasher hashes the hashpass factor material.
type PasswordHasher struct {
	params argonParams
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{
		params: argonParams{memory: 64 * 1024, time: 1, threads: 4, keyLen: 32},
	}
}

// Hash returns the PHC encoding $argon2id$v=19$m=..,t=..,p=..$salt$key.
func (p *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argonAlgorithm, argon2.Version,
		p.params.memory, p.params.time, p.params.threads,
		b64.EncodeToString(salt), b64.EncodeToString(p.params.key(password, salt)),
	), nil
}

// CheckStrength rejects passwords too short to be worth hashing.
func (p *PasswordHasher) CheckStrength(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: at least %d characters required", domain.ErrPasswordTooWeak, MinPasswordLength)
	}
	return nil
}

// Verify reports whether password matches encoded. A mismatch is (false, nil);
// unreadable material is ErrMalformedHash.
func (p *PasswordHasher) Verify(password, encoded string) (bool, error) {
	params, salt, want, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(want, params.key(password, salt)) == 1, nil
}

func decodeHash(encoded string) (argonParams, []byte, []byte, error) {
	var params argonParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != argonAlgorithm {
		return params, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params, nil, nil, fmt.Errorf("%w: unsupported version %q", ErrMalformedHash, parts[2])
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.threads); err != nil {
		return params, nil, nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return params, nil, nil, fmt.Errorf("%w: key", ErrMalformedHash)
	}
	params.keyLen = uint32(len(key))

	return params, salt, key, nil
}

// NewVerificationCode returns a random code for an email confirmation link.
func NewVerificationCode() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashVerificationCode is what gets stored as the factor material; the code
// itself only ever travels in the emailed link.
func HashVerificationCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
