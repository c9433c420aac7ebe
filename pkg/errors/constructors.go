package errors

import (
	"errors"
	"fmt"
)

// New creates a new Error with the specified code and message.
// Use this for creating errors without an underlying cause.
//
// Example:
//
//	err := errors.New(errors.CodeValidation, "login is required")
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with the specified code and formatted message.
//
// Example:
//
//	err := errors.Newf(errors.CodeNotFound, "order %q not found", orderID)
func Newf(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context. The wrapped error
// becomes the Cause of the new error. If err is nil, Wrap returns nil.
//
// Example:
//
//	if err := resolver.HasAllPermissions(ctx, codes); err != nil {
//	    return errors.Wrap(err, errors.CodeInternal, "permission resolution failed")
//	}
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with a formatted message.
// If err is nil, Wrapf returns nil.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// Unauthorized creates a new authentication error with the generic
// UNAUTHORIZED code. Use the specific NO_TOKEN / INVALID_TOKEN /
// NO_API_KEY / INVALID_API_KEY codes where the failure mode is known.
func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, message)
}

// Unauthorizedf creates a new authentication error with a formatted message.
func Unauthorizedf(format string, args ...any) *Error {
	return Newf(CodeUnauthorized, format, args...)
}

// Forbidden creates a new authorization error.
// Use this when the authenticated identity lacks permission for an action.
func Forbidden(message string) *Error {
	return New(CodeForbidden, message)
}

// NotFound creates a new not found error.
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// NotFoundf creates a new not found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

// Conflict creates a new conflict error.
func Conflict(message string) *Error {
	return New(CodeConflict, message)
}

// Validation creates a new validation error.
func Validation(message string) *Error {
	return New(CodeValidation, message)
}

// Validationf creates a new validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return Newf(CodeValidation, format, args...)
}

// BusinessRule creates a new business-rule violation error.
// Use this when a domain invariant is broken by an otherwise
// well-formed request.
func BusinessRule(message string) *Error {
	return New(CodeBusinessRule, message)
}

// Cancelled creates a new cancellation error. Use this when the client
// disconnected or the request deadline elapsed mid-processing.
func Cancelled(message string) *Error {
	return New(CodeRequestCancelled, message)
}

// Internal creates a new internal error. Use this for unexpected system
// failures; the boundary masks the message in production builds.
func Internal(message string) *Error {
	return New(CodeInternal, message)
}

// Internalf creates a new internal error with a formatted message.
func Internalf(format string, args ...any) *Error {
	return Newf(CodeInternal, format, args...)
}

// Configuration creates a new configuration error. Configuration errors
// are startup-fatal: the process must refuse to start.
func Configuration(message string) *Error {
	return New(CodeConfiguration, message)
}

// Configurationf creates a new configuration error with a formatted message.
func Configurationf(format string, args ...any) *Error {
	return Newf(CodeConfiguration, format, args...)
}

// FromError converts a standard error to an *Error. If the error is already
// an *Error anywhere in its chain, that instance is returned. Anything else
// is wrapped as an internal error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return Wrap(err, CodeInternal, "an unexpected error occurred")
}
