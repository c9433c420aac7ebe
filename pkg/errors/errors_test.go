package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Code
// ---------------------------------------------------------------------------

func TestCode_HTTPStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		code Code
		want int
	}{
		{CodeBadRequest, http.StatusBadRequest},
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeNoToken, http.StatusUnauthorized},
		{CodeNoAPIKey, http.StatusUnauthorized},
		{CodeInvalidToken, http.StatusUnauthorized},
		{CodeInvalidAPIKey, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeInsufficientPermissions, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{CodeConflict, http.StatusConflict},
		{CodeConcurrencyConflict, http.StatusConflict},
		{CodeBusinessRule, http.StatusUnprocessableEntity},
		{CodeRateLimit, http.StatusTooManyRequests},
		{CodeRequestCancelled, StatusClientClosedRequest},
		{CodeInternal, http.StatusInternalServerError},
		{CodeConfiguration, http.StatusInternalServerError},
		{CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestCode_HTTPStatus_UnknownCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, http.StatusInternalServerError, Code("SOMETHING_NEW").HTTPStatus())
}

// ---------------------------------------------------------------------------
// Error
// ---------------------------------------------------------------------------

func TestError_Error(t *testing.T) {
	t.Parallel()
	err := New(CodeInvalidToken, "the security token is invalid")
	assert.Equal(t, "INVALID_TOKEN: the security token is invalid", err.Error())
}

func TestError_Error_WithCause(t *testing.T) {
	t.Parallel()
	cause := stderrors.New("signature mismatch")
	err := Wrap(cause, CodeInvalidToken, "token validation failed")
	assert.Equal(t, "INVALID_TOKEN: token validation failed: signature mismatch", err.Error())
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()
	cause := stderrors.New("boom")
	err := Wrap(cause, CodeInternal, "wrapped")
	assert.True(t, stderrors.Is(err, cause))
}

func TestError_WithFields_DoesNotMutateOriginal(t *testing.T) {
	t.Parallel()
	base := Validation("one or more validation errors occurred")
	withFields := base.WithFields(map[string][]string{
		"login": {"login is required"},
	})

	assert.Nil(t, base.Fields, "original error must not be mutated")
	require.Contains(t, withFields.Fields, "login")
	assert.Equal(t, []string{"login is required"}, withFields.Fields["login"])
}

func TestError_Format(t *testing.T) {
	t.Parallel()
	err := Wrap(stderrors.New("root cause"), CodeForbidden, "access denied")

	plain := fmt.Sprintf("%v", err)
	assert.Equal(t, "FORBIDDEN: access denied: root cause", plain)

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, `Code: "FORBIDDEN"`)
	assert.Contains(t, detailed, "root cause")
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

func TestWrap_NilError(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
	assert.Nil(t, Wrapf(nil, CodeInternal, "ignored %d", 1))
}

func TestConstructors_Codes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  *Error
		want Code
	}{
		{"Unauthorized", Unauthorized("x"), CodeUnauthorized},
		{"Forbidden", Forbidden("x"), CodeForbidden},
		{"NotFound", NotFound("x"), CodeNotFound},
		{"Conflict", Conflict("x"), CodeConflict},
		{"Validation", Validation("x"), CodeValidation},
		{"BusinessRule", BusinessRule("x"), CodeBusinessRule},
		{"Cancelled", Cancelled("x"), CodeRequestCancelled},
		{"Internal", Internal("x"), CodeInternal},
		{"Configuration", Configuration("x"), CodeConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Code)
		})
	}
}

func TestFromError(t *testing.T) {
	t.Parallel()

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, FromError(nil))
	})

	t.Run("already structured", func(t *testing.T) {
		t.Parallel()
		orig := NotFound("missing")
		got := FromError(fmt.Errorf("outer: %w", orig))
		assert.Same(t, orig, got)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		t.Parallel()
		got := FromError(stderrors.New("boom"))
		assert.Equal(t, CodeInternal, got.Code)
	})
}

// ---------------------------------------------------------------------------
// Checks
// ---------------------------------------------------------------------------

func TestChecks(t *testing.T) {
	t.Parallel()

	assert.True(t, IsAuthentication(New(CodeNoToken, "x")))
	assert.True(t, IsAuthentication(New(CodeInvalidAPIKey, "x")))
	assert.False(t, IsAuthentication(Forbidden("x")))

	assert.True(t, IsAuthorization(New(CodeInsufficientPermissions, "x")))
	assert.False(t, IsAuthorization(Unauthorized("x")))

	assert.True(t, IsConflict(New(CodeConcurrencyConflict, "x")))
	assert.True(t, IsConflict(Conflict("x")))

	assert.True(t, IsCancelled(Cancelled("x")))
	assert.True(t, IsConfiguration(Configuration("x")))

	assert.True(t, IsClientError(NotFound("x")))
	assert.False(t, IsClientError(Internal("x")))

	assert.True(t, IsServerError(Internal("x")))
	assert.True(t, IsServerError(stderrors.New("unclassified")), "raw errors are server errors")
	assert.False(t, IsServerError(nil))
}

func TestGetCode_NonStructuredError(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Code(""), GetCode(stderrors.New("plain")))
	assert.False(t, HasCode(nil, CodeInternal))
}
