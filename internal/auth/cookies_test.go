package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieWriter(t *testing.T) {
	pair := &TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: time.Hour}

	t.Run("session cookies", func(t *testing.T) {
		rec := httptest.NewRecorder()
		CookieWriter{Secure: true}.SetSession(rec, pair, MarkerAdmin)

		cookies := map[string]*http.Cookie{}
		for _, c := range rec.Result().Cookies() {
			cookies[c.Name] = c
		}
		require.Len(t, cookies, 3)

		assert.Equal(t, "access", cookies[AccessCookie].Value)
		assert.Equal(t, 3600, cookies[AccessCookie].MaxAge)
		assert.Equal(t, 604800, cookies[RefreshCookie].MaxAge)
		assert.Equal(t, MarkerAdmin, cookies[TypeCookie].Value)

		for _, c := range cookies {
			assert.True(t, c.HttpOnly)
			assert.True(t, c.Secure)
			assert.Equal(t, "/", c.Path)
			assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		}
	})

	t.Run("clear", func(t *testing.T) {
		rec := httptest.NewRecorder()
		CookieWriter{}.Clear(rec)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 3)
		for _, c := range cookies {
			assert.Empty(t, c.Value)
			assert.Equal(t, -1, c.MaxAge)
			assert.False(t, c.Secure)
		}
	})

	t.Run("read back", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessCookie, Value: "a"})
		req.AddCookie(&http.Cookie{Name: TypeCookie, Value: MarkerUser})

		creds := CredentialsFromRequest(req)
		assert.Equal(t, Credentials{AccessToken: "a", Marker: MarkerUser}, creds)
		assert.False(t, creds.Empty())
		assert.True(t, Credentials{Marker: MarkerUser}.Empty())
	})
}
