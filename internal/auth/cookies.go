// internal/auth/cookies.go
package auth

import (
	"net/http"
	"time"
)

const (
	AccessCookie  = "sb-access-token"
	RefreshCookie = "sb-refresh-token"
	TypeCookie    = "token-type"

	// The token-type cookie records which portal issued the session.
	MarkerAdmin = "admin"
	MarkerUser  = "user"

	sessionCookieMaxAge = 7 * 24 * time.Hour
)

// Credentials are the raw session cookies of a request.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Marker       string
}

func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

func CredentialsFromRequest(r *http.Request) Credentials {
	return Credentials{
		AccessToken:  cookieValue(r, AccessCookie),
		RefreshToken: cookieValue(r, RefreshCookie),
		Marker:       cookieValue(r, TypeCookie),
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// CookieWriter sets and clears the session cookies.
type CookieWriter struct {
	Secure bool
}

// SetSession writes a complete session: both tokens and the portal marker.
func (cw CookieWriter) SetSession(w http.ResponseWriter, pair *TokenPair, marker string) {
	cw.SetTokens(w, pair)
	http.SetCookie(w, cw.cookie(TypeCookie, marker, sessionCookieMaxAge))
}

// SetTokens rewrites the token cookies after a refresh, leaving the marker alone.
func (cw CookieWriter) SetTokens(w http.ResponseWriter, pair *TokenPair) {
	http.SetCookie(w, cw.cookie(AccessCookie, pair.AccessToken, pair.ExpiresIn))
	http.SetCookie(w, cw.cookie(RefreshCookie, pair.RefreshToken, sessionCookieMaxAge))
}

func (cw CookieWriter) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie, TypeCookie} {
		c := cw.cookie(name, "", 0)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

func (cw CookieWriter) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   cw.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
