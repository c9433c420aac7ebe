package auth

import "strings"

// ---------------------------------------------------------------------------
// Method — how the current request was authenticated
// ---------------------------------------------------------------------------

// Method identifies how a request was authenticated. It drives downstream
// trust decisions: system calls bypass user-id requirements, API-key calls
// carry an audit key id, and unknown methods must not be trusted for any
// method-specific check.
type Method string

const (
	// MethodUnknown indicates the authentication method could not be
	// determined from the claim set. Callers must treat Unknown as
	// "do not trust this identity for method-specific checks."
	MethodUnknown Method = "Unknown"

	// MethodJWT indicates authentication via a signed bearer token.
	MethodJWT Method = "Jwt"

	// MethodAPIKey indicates authentication via the shared internal API key
	// carrying an end-user context in trusted headers.
	MethodAPIKey Method = "ApiKey"

	// MethodSystem indicates an internal system call acting with no
	// specific end-user identity.
	MethodSystem Method = "System"

	// MethodPasswordReset indicates a limited-purpose token issued for a
	// password reset flow.
	MethodPasswordReset Method = "PasswordReset"
)

// ParseMethod converts an auth-type claim value to a [Method] using
// case-insensitive matching. Unrecognized or empty values map to
// [MethodUnknown] rather than failing.
func ParseMethod(s string) Method {
	switch {
	case strings.EqualFold(s, string(MethodJWT)):
		return MethodJWT
	case strings.EqualFold(s, string(MethodAPIKey)):
		return MethodAPIKey
	case strings.EqualFold(s, string(MethodSystem)):
		return MethodSystem
	case strings.EqualFold(s, string(MethodPasswordReset)):
		return MethodPasswordReset
	default:
		return MethodUnknown
	}
}

// String returns the canonical claim value for the method.
func (m Method) String() string { return string(m) }
