package auth

import (
	"net/http"
	"strings"
)

// ---------------------------------------------------------------------------
// Scheme selection
// ---------------------------------------------------------------------------

// Scheme names an authentication mechanism. Exactly one scheme is selected
// per request before any credential is validated.
type Scheme string

const (
	// SchemeBearer routes the request to [BearerValidator].
	SchemeBearer Scheme = "Bearer"

	// SchemeAPIKey routes the request to [APIKeyAuthenticator].
	SchemeAPIKey Scheme = "ApiKey"
)

// bearerPrefix is the expected Authorization header prefix, matched
// case-insensitively.
const bearerPrefix = "bearer "

// SelectScheme decides which authentication mechanism handles the request.
// It is a pure function over header presence and is deterministic for the
// same header set.
//
// Rules:
//   - If JWT is not configured for this service instance, always select
//     the API-key scheme.
//   - Otherwise, an Authorization header starting with "Bearer "
//     (case-insensitive) selects bearer.
//   - Otherwise, a present X-API-Key header selects API-key.
//   - Otherwise, default to bearer so that the bearer path produces the
//     "missing token" error.
func SelectScheme(headers http.Header, jwtConfigured bool) Scheme {
	if !jwtConfigured {
		return SchemeAPIKey
	}

	authz := headers.Get(HeaderAuthorization)
	if len(authz) >= len(bearerPrefix) && strings.EqualFold(authz[:len(bearerPrefix)], bearerPrefix) {
		return SchemeBearer
	}

	if _, ok := headers[http.CanonicalHeaderKey(HeaderAPIKey)]; ok {
		return SchemeAPIKey
	}

	return SchemeBearer
}

// ExtractBearerToken returns the token portion of an Authorization header
// value, or an empty string if the header is absent, has no "Bearer "
// prefix, or carries an empty token. Prefix matching is case-insensitive.
func ExtractBearerToken(header string) string {
	if len(header) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
