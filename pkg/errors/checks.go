package errors

import (
	"errors"
)

// AsError attempts to convert an error to an *Error.
// Returns the Error and true if successful, nil and false otherwise.
// This function traverses the error chain using errors.As.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetCode returns the wire code from an error.
// If the error is not an *Error or is nil, returns an empty code.
func GetCode(err error) Code {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// HasCode checks if an error carries the specified wire code.
// Returns false if the error is nil or not an *Error.
func HasCode(err error, code Code) bool {
	return GetCode(err) == code
}

// IsAuthentication checks if the error is an authentication failure
// (any of the 401-class codes).
func IsAuthentication(err error) bool {
	switch GetCode(err) {
	case CodeUnauthorized, CodeNoToken, CodeNoAPIKey, CodeInvalidToken, CodeInvalidAPIKey:
		return true
	default:
		return false
	}
}

// IsAuthorization checks if the error is an authorization failure
// (any of the 403-class codes).
func IsAuthorization(err error) bool {
	switch GetCode(err) {
	case CodeForbidden, CodeInsufficientPermissions:
		return true
	default:
		return false
	}
}

// IsValidation checks if the error is a validation failure.
func IsValidation(err error) bool {
	return HasCode(err, CodeValidation)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsConflict checks if the error is a conflict error, including
// concurrent-modification conflicts.
func IsConflict(err error) bool {
	switch GetCode(err) {
	case CodeConflict, CodeConcurrencyConflict:
		return true
	default:
		return false
	}
}

// IsCancelled checks if the error is a request cancellation.
func IsCancelled(err error) bool {
	return HasCode(err, CodeRequestCancelled)
}

// IsConfiguration checks if the error is a startup-fatal configuration error.
func IsConfiguration(err error) bool {
	return HasCode(err, CodeConfiguration)
}

// IsClientError checks if the error maps to a 4xx HTTP status.
func IsClientError(err error) bool {
	e, ok := AsError(err)
	if !ok {
		return false
	}
	status := e.HTTPStatus()
	return status >= 400 && status < 500
}

// IsServerError checks if the error maps to a 5xx HTTP status.
// Unclassified errors (not *Error) are treated as server errors.
func IsServerError(err error) bool {
	if err == nil {
		return false
	}
	e, ok := AsError(err)
	if !ok {
		return true
	}
	return e.HTTPStatus() >= 500
}
