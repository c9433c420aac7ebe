package errors

import "fmt"

// Error represents a structured error with a stable wire code, a
// human-readable message, and an optional cause. It implements the standard
// error interface and carries everything the response boundary needs to
// render a uniform error envelope.
//
// Error is designed to be:
//   - Immutable: fields are not modified after creation
//   - Chainable: supports error wrapping via the Cause field
//   - Structured: provides a machine-readable code and HTTP status
//   - Loggable: implements fmt.Formatter for detailed output
type Error struct {
	// Code is the stable wire code (e.g., "INVALID_TOKEN").
	Code Code

	// Message is the human-readable error message. It may be shown to end
	// users and must not contain secrets, key material, or internal paths.
	Message string

	// Cause is the underlying error, if any. Use Unwrap to access it for
	// error chain inspection.
	Cause error

	// Fields holds field-level validation messages keyed by field name.
	// Populated only for validation failures; nil otherwise.
	Fields map[string][]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, supporting errors.Unwrap and
// errors.Is from the standard library.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for this error, derived from
// its wire code.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithFields returns a new Error with the given field-level validation
// messages attached. The original error is not modified.
func (e *Error) WithFields(fields map[string][]string) *Error {
	merged := make(map[string][]string, len(e.Fields)+len(fields))
	for k, v := range e.Fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Fields:  merged,
	}
}

// Format implements fmt.Formatter for detailed error output.
// Use %v for standard output, %+v for detailed output including the cause chain.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "Error{Code: %q, Message: %q", e.Code, e.Message)
			if len(e.Fields) > 0 {
				fmt.Fprintf(s, ", Fields: %v", e.Fields)
			}
			if e.Cause != nil {
				fmt.Fprintf(s, ", Cause: %+v", e.Cause)
			}
			fmt.Fprint(s, "}")
			return
		}
		fallthrough
	case 's':
		fmt.Fprint(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}
