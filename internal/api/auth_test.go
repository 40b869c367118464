package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"freightbook/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedConfig() config.APIConfig {
	return config.APIConfig{
		Enabled: true,
		HTTP:    config.APIHTTPConfig{Enabled: true},
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			HeaderExtra:  "x-api-extra",
			APIKeys: []config.APIClientKey{
				{Key: "full-key", Extra: "secret", Name: "full"},
				{Key: "limited-key", Extra: "secret", Name: "limited", Permissions: []string{"read:contacts"}},
			},
		},
	}
}

func wrapOK(cfg config.APIConfig) http.Handler {
	auth := NewHTTPAuth(cfg)
	return auth.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func authedRequest(target, key, extra string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
	if extra != "" {
		req.Header.Set("x-api-extra", extra)
	}
	return req
}

func TestAuthRejectsMissingHeaders(t *testing.T) {
	handler := wrapOK(authedConfig())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("/api/v1/contacts/senders", "", ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsBadCredentials(t *testing.T) {
	handler := wrapOK(authedConfig())

	t.Run("unknown key", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("/api/v1/contacts/senders", "nope", "secret"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong extra", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("/api/v1/contacts/senders", "full-key", "wrong"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthAcceptsValidCredentials(t *testing.T) {
	handler := wrapOK(authedConfig())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("/api/v1/contacts/senders", "full-key", "secret"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthPermissions(t *testing.T) {
	handler := wrapOK(authedConfig())

	t.Run("allowed scope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("/api/v1/contacts/receivers", "limited-key", "secret"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("export denied for limited key", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("/api/v1/contacts/export", "limited-key", "secret"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("empty permission list allows all", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("/api/v1/contacts/export", "full-key", "secret"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAuthSkipsHealth(t *testing.T) {
	handler := wrapOK(authedConfig())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("/healthz", "", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := authedConfig()
	cfg.Auth.Enabled = false
	cfg.RateLimit = config.APIRateLimitConfig{RPS: 1, Burst: 2}
	handler := wrapOK(cfg)

	statuses := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("/api/v1/contacts/senders", "full-key", "secret"))
		statuses = append(statuses, rec.Code)
	}

	require.Equal(t, http.StatusOK, statuses[0])
	require.Equal(t, http.StatusOK, statuses[1])
	assert.Equal(t, http.StatusTooManyRequests, statuses[3])
}
