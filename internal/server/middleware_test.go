package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mhollowell/tradedeck/internal/common"
)

func TestCorrelationIDMiddleware_GeneratesID(t *testing.T) {
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Len(t, rr.Header().Get("X-Correlation-ID"), 8)
}

func TestCorrelationIDMiddleware_PreservesRequestID(t *testing.T) {
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "req-123", rr.Header().Get("X-Correlation-ID"))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight should not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

// authConfig returns an enabled auth config whose access key is "letmein".
func authConfig(t *testing.T) *common.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	require.NoError(t, err)

	config := common.NewDefaultConfig()
	config.Auth.JWTSecret = "test-secret"
	config.Auth.AccessKeyHash = string(hash)
	return config
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_OpenWhenDisabled(t *testing.T) {
	handler := authMiddleware(common.NewDefaultConfig())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthMiddleware_ProtectsDashboard(t *testing.T) {
	handler := authMiddleware(authConfig(t))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
}

func TestAuthMiddleware_HealthStaysOpen(t *testing.T) {
	handler := authMiddleware(authConfig(t))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthMiddleware_AcceptsSignedToken(t *testing.T) {
	config := authConfig(t)
	token, err := signJWT(&config.Auth)
	require.NoError(t, err)

	handler := authMiddleware(config)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthMiddleware_RejectsGarbageToken(t *testing.T) {
	handler := authMiddleware(authConfig(t))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthLogin_RoundTrip(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)
	s.app.Config.Auth = authConfig(t).Auth

	body := []byte(`{"access_key":"letmein"}`)
	rr := doRequest(t, s, http.MethodPost, "/api/auth/login", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, 86400, resp.ExpiresIn)

	// Token grants access to the protected surface
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	auth := httptest.NewRecorder()
	s.Handler().ServeHTTP(auth, req)
	assert.Equal(t, http.StatusOK, auth.Code)

	// And without it the surface stays closed
	denied := doRequest(t, s, http.MethodGet, "/api/dashboard/summary", nil)
	assert.Equal(t, http.StatusUnauthorized, denied.Code)
}

func TestAuthLogin_WrongKey(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)
	s.app.Config.Auth = authConfig(t).Auth

	rr := doRequest(t, s, http.MethodPost, "/api/auth/login", []byte(`{"access_key":"wrong"}`))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthLogin_NotConfigured(t *testing.T) {
	s := newTestServer(t, &fakeSource{records: defaultRecords()}, nil)

	rr := doRequest(t, s, http.MethodPost, "/api/auth/login", []byte(`{"access_key":"x"}`))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
