package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aromos/internal/config"
	"aromos/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(rps float64) *HTTPAuth {
	cfg := config.APIConfig{
		Enabled: true,
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			APIKeys: []config.APIClientKey{
				{Key: "full-key", Name: "admin", Permissions: []string{"read", "write"}},
				{Key: "read-key", Name: "viewer", Permissions: []string{"read"}},
				{Key: "open-key", Name: "legacy"},
			},
		},
		RateLimit: config.APIRateLimitConfig{RPS: rps, Burst: 2},
	}
	return NewHTTPAuth(cfg, repository.NewMemorySessionRepository(time.Hour))
}

func authRequest(method, key string) *http.Request {
	r := httptest.NewRequest(method, "/api/v1/stats", nil)
	if key != "" {
		r.Header.Set("x-api-key", key)
	}
	r.RemoteAddr = "10.0.0.1:54321"
	return r
}

func TestCheckAuth(t *testing.T) {
	auth := newTestAuth(0)

	t.Run("MissingKey", func(t *testing.T) {
		err := auth.checkAuth(authRequest(http.MethodGet, ""))
		assert.Error(t, err)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		err := auth.checkAuth(authRequest(http.MethodGet, "nope"))
		assert.Error(t, err)
	})

	t.Run("ReadKeyCanRead", func(t *testing.T) {
		err := auth.checkAuth(authRequest(http.MethodGet, "read-key"))
		assert.NoError(t, err)
	})

	t.Run("ReadKeyCannotWrite", func(t *testing.T) {
		err := auth.checkAuth(authRequest(http.MethodPost, "read-key"))
		assert.ErrorIs(t, err, errPermissionDenied)
	})

	t.Run("EmptyPermissionsAllowAll", func(t *testing.T) {
		err := auth.checkAuth(authRequest(http.MethodDelete, "open-key"))
		assert.NoError(t, err)
	})
}

func TestSessionAuth(t *testing.T) {
	auth := newTestAuth(0)

	session, err := auth.Login(authRequest(http.MethodPost, "full-key"), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "admin", session.Principal)

	req := authRequest(http.MethodGet, "")
	req.Header.Set("x-session-token", "tok-1")
	assert.NoError(t, auth.checkAuth(req))

	require.NoError(t, auth.Logout(req, "tok-1"))
	assert.Error(t, auth.checkAuth(req))
}

func TestLoginRequiresValidKey(t *testing.T) {
	auth := newTestAuth(0)

	_, err := auth.Login(authRequest(http.MethodPost, ""), "tok")
	assert.Error(t, err)

	_, err = auth.Login(authRequest(http.MethodPost, "nope"), "tok")
	assert.Error(t, err)
}

func TestRateLimitPerKey(t *testing.T) {
	auth := newTestAuth(1)

	// burst 2: третий мгновенный запрос упирается в лимит
	for i := 0; i < 2; i++ {
		require.NoError(t, auth.checkRateLimit(authRequest(http.MethodGet, "full-key")))
	}
	assert.Error(t, auth.checkRateLimit(authRequest(http.MethodGet, "full-key")))

	// у другого ключа свой лимитер
	assert.NoError(t, auth.checkRateLimit(authRequest(http.MethodGet, "read-key")))
}

func TestClientKeyFallsBackToHost(t *testing.T) {
	auth := newTestAuth(0)

	key := auth.clientKey(authRequest(http.MethodGet, ""))
	assert.Equal(t, "10.0.0.1", key)

	key = auth.clientKey(authRequest(http.MethodGet, "full-key"))
	assert.Equal(t, "full-key", key)
}
