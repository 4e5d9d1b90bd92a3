package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpulse/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
		Issuer:    "adpulse",
	}
}

func authProbe(t *testing.T, cfg config.AuthConfig, authorization string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var gotUser string
	auth := NewAuthenticator(cfg, testLogger())
	handler := auth.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, gotUser
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &problem))
	code, _ := problem["error_code"].(string)
	return code
}

func TestAuthenticator_ValidToken(t *testing.T) {
	cfg := testAuthConfig()
	token, err := IssueToken(cfg, "user-123", time.Now())
	require.NoError(t, err)

	rec, gotUser := authProbe(t, cfg, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-123", gotUser)
}

func TestAuthenticator_MissingToken(t *testing.T) {
	rec, gotUser := authProbe(t, testAuthConfig(), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, gotUser)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, rec.Body.Bytes()))
}

func TestAuthenticator_MalformedHeader(t *testing.T) {
	rec, _ := authProbe(t, testAuthConfig(), "Basic dXNlcjpwYXNz")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_INVALID", errorCode(t, rec.Body.Bytes()))
}

func TestAuthenticator_ExpiredToken(t *testing.T) {
	cfg := testAuthConfig()
	token, err := IssueToken(cfg, "user-123", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	rec, _ := authProbe(t, cfg, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_EXPIRED", errorCode(t, rec.Body.Bytes()))
}

func TestAuthenticator_WrongSecret(t *testing.T) {
	other := testAuthConfig()
	other.JWTSecret = "different-secret"
	token, err := IssueToken(other, "user-123", time.Now())
	require.NoError(t, err)

	rec, _ := authProbe(t, testAuthConfig(), "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_INVALID", errorCode(t, rec.Body.Bytes()))
}

func TestAuthenticator_WrongIssuer(t *testing.T) {
	other := testAuthConfig()
	other.Issuer = "someone-else"
	token, err := IssueToken(other, "user-123", time.Now())
	require.NoError(t, err)

	rec, _ := authProbe(t, testAuthConfig(), "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_INVALID", errorCode(t, rec.Body.Bytes()))
}

func TestUserID_MissingFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, UserID(req.Context()))
}

func TestWithUserID(t *testing.T) {
	ctx := WithUserID(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "user-7")
	assert.Equal(t, "user-7", UserID(ctx))
}
