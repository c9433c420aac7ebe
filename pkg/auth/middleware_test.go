package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kiterr "github.com/Vovanda/go-service-kit/pkg/errors"
	"github.com/Vovanda/go-service-kit/pkg/httpx"
)

type errorEnvelope struct {
	Status    int    `json:"status"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func newMiddleware(t *testing.T, withBearer bool) (*Middleware, *BearerValidator) {
	t.Helper()

	var bearer *BearerValidator
	if withBearer {
		bearer = newValidator(t, newFakeClock(), nil)
	}
	apiKey := newAPIKeyAuthenticator()
	writer := httpx.NewWriter(testLogger(), false)
	return NewMiddleware(bearer, apiKey, writer, testLogger()), bearer
}

// captureUser records the user context seen by the downstream handler.
func captureUser(dst **UserContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*dst = MustUserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestMiddleware_BearerSuccess(t *testing.T) {
	t.Parallel()

	m, bearer := newMiddleware(t, true)

	subject := uuid.NewString()
	token, err := bearer.Issue(subject, nil)
	require.NoError(t, err)

	var user *UserContext
	handler := m.Handler(captureUser(&user))

	r := httptest.NewRequest("GET", "/api/orders", nil)
	r.Header.Set(HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, user)
	assert.True(t, user.IsJWTAuthenticated)

	id, err := user.UserID()
	require.NoError(t, err)
	assert.Equal(t, subject, id.String())
}

func TestMiddleware_BearerInvalidToken(t *testing.T) {
	t.Parallel()

	m, _ := newMiddleware(t, true)
	handler := m.Handler(http.NotFoundHandler())

	r := httptest.NewRequest("GET", "/api/orders", nil)
	r.Header.Set(HeaderAuthorization, "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, string(kiterr.CodeInvalidToken), decodeError(t, rec).ErrorCode)
}

func TestMiddleware_NoCredentials(t *testing.T) {
	t.Parallel()

	m, _ := newMiddleware(t, true)
	handler := m.Handler(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/orders", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, string(kiterr.CodeNoToken), decodeError(t, rec).ErrorCode)
}

func TestMiddleware_NoCredentials_JWTNotConfigured(t *testing.T) {
	t.Parallel()

	m, _ := newMiddleware(t, false)
	handler := m.Handler(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/orders", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, string(kiterr.CodeNoAPIKey), decodeError(t, rec).ErrorCode)
}

func TestMiddleware_APIKeySuccess(t *testing.T) {
	t.Parallel()

	m, _ := newMiddleware(t, true)

	var user *UserContext
	handler := m.Handler(captureUser(&user))

	userID := uuid.NewString()
	r := httptest.NewRequest("GET", "/api/orders", nil)
	r.Header.Set(HeaderAPIKey, testAPIKey)
	r.Header.Set(HeaderUserID, userID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, user)
	assert.True(t, user.IsAPIKeyAuthenticated)
	assert.Equal(t, []string{DefaultRole}, user.Roles)

	id, err := user.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, id.String())
}

func TestMiddleware_APIKeyInvalid(t *testing.T) {
	t.Parallel()

	m, _ := newMiddleware(t, true)
	handler := m.Handler(http.NotFoundHandler())

	r := httptest.NewRequest("GET", "/api/orders", nil)
	r.Header.Set(HeaderAPIKey, "wrong-key-wrong-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, string(kiterr.CodeInvalidAPIKey), decodeError(t, rec).ErrorCode)
}

func TestMiddleware_SystemCall(t *testing.T) {
	t.Parallel()

	m, _ := newMiddleware(t, true)

	var user *UserContext
	handler := m.Handler(captureUser(&user))

	r := httptest.NewRequest("GET", "/api/orders", nil)
	r.Header.Set(HeaderAPIKey, testAPIKey)
	r.Header.Set(HeaderSystemCall, "true")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, user)
	assert.True(t, user.IsSystemCall)

	_, err := user.UserID()
	assert.Error(t, err)
}

func TestMiddleware_RequestCancelled(t *testing.T) {
	t.Parallel()

	m, _ := newMiddleware(t, true)
	handler := m.Handler(http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := httptest.NewRequest("GET", "/api/orders", nil).WithContext(ctx)
	r.Header.Set(HeaderAuthorization, "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, kiterr.StatusClientClosedRequest, rec.Code)
	assert.Equal(t, string(kiterr.CodeRequestCancelled), decodeError(t, rec).ErrorCode)
}

func TestMiddleware_APIKeyNotConfigured(t *testing.T) {
	t.Parallel()

	bearer := newValidator(t, newFakeClock(), nil)
	writer := httpx.NewWriter(testLogger(), false)
	m := NewMiddleware(bearer, nil, writer, testLogger())
	handler := m.Handler(http.NotFoundHandler())

	r := httptest.NewRequest("GET", "/api/orders", nil)
	r.Header.Set(HeaderAPIKey, testAPIKey)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, string(kiterr.CodeConfiguration), decodeError(t, rec).ErrorCode)
}
