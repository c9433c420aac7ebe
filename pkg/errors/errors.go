// Package errors provides standardized error types and error handling
// utilities for services built on go-service-kit. It defines the common
// failure taxonomy, stable wire-level error codes, and helper functions for
// creating, wrapping, and inspecting errors across service boundaries.
//
// # Failure Taxonomy
//
// The package defines error kinds that map to common failure scenarios:
//
//   - Configuration errors: startup-fatal key/material/setting problems
//   - Authentication errors: missing, invalid, or expired credentials
//   - Authorization errors: valid identity, insufficient permission
//   - Validation errors: malformed requests, field-level failures
//   - NotFound errors: resource does not exist
//   - Conflict errors: state conflicts, concurrent modification
//   - Business errors: domain invariant violations
//   - Cancelled errors: client disconnect or request timeout
//   - Internal errors: unexpected system failures
//
// # Wire Codes
//
// Each error carries a stable machine-readable code (e.g., "INVALID_TOKEN")
// that clients branch on. Codes never change once assigned; the set is
// defined in codes.go together with the HTTP status each code maps to.
//
// # Usage
//
// Create a new error:
//
//	err := errors.New(errors.CodeInvalidToken, "the security token is invalid")
//
// Wrap an existing error:
//
//	err := errors.Wrap(err, errors.CodeInternal, "failed to resolve permissions")
//
// Check the error kind:
//
//	if errors.IsAuthentication(err) {
//	    // respond 401
//	}
package errors
