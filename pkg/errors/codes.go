package errors

import "net/http"

// Code is a stable, machine-readable error code carried on the wire in the
// response envelope. Clients use codes for branching logic; humans use the
// accompanying message.
//
// Codes are designed to be:
//   - Stable: a code never changes once assigned
//   - Unique: each distinct failure condition has its own code
//   - Machine-readable: suitable for automated client-side handling
type Code string

const (
	// Request shape errors — HTTP 400.

	// CodeBadRequest indicates a malformed request (e.g., invalid JSON body).
	CodeBadRequest Code = "BAD_REQUEST"

	// CodeValidation indicates one or more validation failures. Field-level
	// messages travel in the Fields map of the error.
	CodeValidation Code = "VALIDATION_ERROR"

	// Authentication errors — HTTP 401.

	// CodeUnauthorized indicates a general authentication failure.
	CodeUnauthorized Code = "UNAUTHORIZED"

	// CodeNoToken indicates that no bearer token was presented.
	CodeNoToken Code = "NO_TOKEN"

	// CodeNoAPIKey indicates that no API key was presented.
	CodeNoAPIKey Code = "NO_API_KEY"

	// CodeInvalidToken indicates the bearer token is invalid, expired,
	// or tampered with.
	CodeInvalidToken Code = "INVALID_TOKEN"

	// CodeInvalidAPIKey indicates the presented API key does not match any
	// configured key or has been revoked.
	CodeInvalidAPIKey Code = "INVALID_API_KEY"

	// Authorization errors — HTTP 403.

	// CodeForbidden indicates a general authorization failure.
	CodeForbidden Code = "FORBIDDEN"

	// CodeInsufficientPermissions indicates the authenticated identity lacks
	// one or more permissions required by the endpoint.
	CodeInsufficientPermissions Code = "INSUFFICIENT_PERMISSIONS"

	// Resource errors.

	// CodeNotFound indicates the requested resource does not exist — HTTP 404.
	CodeNotFound Code = "NOT_FOUND"

	// CodeMethodNotAllowed indicates the path matched a route but the HTTP
	// method is not supported by it — HTTP 405.
	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"

	// CodeConflict indicates the request conflicts with current server
	// state — HTTP 409.
	CodeConflict Code = "CONFLICT"

	// CodeConcurrencyConflict indicates an optimistic-concurrency failure:
	// the resource was modified by another process — HTTP 409.
	CodeConcurrencyConflict Code = "CONCURRENCY_CONFLICT"

	// CodeBusinessRule indicates a domain invariant violation — HTTP 422.
	CodeBusinessRule Code = "BUSINESS_RULE_VIOLATION"

	// Infrastructure errors.

	// CodeRateLimit indicates the caller exceeded the request rate
	// limit — HTTP 429.
	CodeRateLimit Code = "RATE_LIMIT"

	// CodeRequestCancelled indicates the request was cancelled by the client
	// or timed out mid-flight — HTTP 499 (client closed request).
	CodeRequestCancelled Code = "REQUEST_CANCELLED"

	// CodeInternal indicates an unclassified internal failure — HTTP 500.
	// In production builds the message is masked before reaching clients.
	CodeInternal Code = "INTERNAL_ERROR"

	// CodeConfiguration indicates invalid configuration or key material.
	// Configuration errors are startup-fatal and never reach a client,
	// but they map to HTTP 500 should one escape.
	CodeConfiguration Code = "CONFIGURATION_ERROR"

	// CodeUnavailable indicates the service or a dependency is temporarily
	// unavailable — HTTP 503.
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
)

// StatusClientClosedRequest is the non-standard nginx status code for a
// request cancelled by the client before the response was produced.
// net/http has no constant for it.
const StatusClientClosedRequest = 499

// httpStatusByCode is the single mapping table from wire code to HTTP
// status. Every failure path through the kit resolves its status here,
// keeping the translation in one place.
var httpStatusByCode = map[Code]int{
	CodeBadRequest:              http.StatusBadRequest,
	CodeValidation:              http.StatusBadRequest,
	CodeUnauthorized:            http.StatusUnauthorized,
	CodeNoToken:                 http.StatusUnauthorized,
	CodeNoAPIKey:                http.StatusUnauthorized,
	CodeInvalidToken:            http.StatusUnauthorized,
	CodeInvalidAPIKey:           http.StatusUnauthorized,
	CodeForbidden:               http.StatusForbidden,
	CodeInsufficientPermissions: http.StatusForbidden,
	CodeNotFound:                http.StatusNotFound,
	CodeMethodNotAllowed:        http.StatusMethodNotAllowed,
	CodeConflict:                http.StatusConflict,
	CodeConcurrencyConflict:     http.StatusConflict,
	CodeBusinessRule:            http.StatusUnprocessableEntity,
	CodeRateLimit:               http.StatusTooManyRequests,
	CodeRequestCancelled:        StatusClientClosedRequest,
	CodeInternal:                http.StatusInternalServerError,
	CodeConfiguration:           http.StatusInternalServerError,
	CodeUnavailable:             http.StatusServiceUnavailable,
}

// String returns the string representation of the error code.
func (c Code) String() string {
	return string(c)
}

// HTTPStatus returns the HTTP status code this error code maps to.
// Unknown codes map to 500 Internal Server Error.
func (c Code) HTTPStatus() int {
	if status, ok := httpStatusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}
