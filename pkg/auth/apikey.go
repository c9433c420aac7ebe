package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	kiterr "github.com/Vovanda/go-service-kit/pkg/errors"
)

// ---------------------------------------------------------------------------
// APIKeyAuthenticator — shared-secret authentication
// ---------------------------------------------------------------------------

// ErrNoAPIKey is returned by [APIKeyAuthenticator.Authenticate] when the
// request carries no X-API-Key header at all. It is not a hard failure:
// the caller falls through to the scheme's "no credential" error path.
var ErrNoAPIKey = errors.New("auth: no API key presented")

// DefaultRole is injected when an API-key identity resolves no roles, so
// that every identity carries at least one role.
const DefaultRole = "User"

// APIKeyAuthenticator validates the shared internal API key and produces a
// normalized [ClaimSet]. Two claim-set shapes are produced on a key match:
//
//   - System: the request carries a system-call marker (X-System-Call
//     header or a reserved path prefix). The claim set has auth type
//     System, the system-call flag, and the nil-UUID sentinel as user id.
//   - User context via internal key: a trusted gateway forwards an
//     end-user identity in X-User-* headers alongside the key.
//
// The authenticator never leaks whether a presented key was "close" to
// valid: comparison is constant-time and failure messages are generic.
//
// APIKeyAuthenticator is stateless and safe for concurrent use.
type APIKeyAuthenticator struct {
	key    Secret
	logger *slog.Logger
}

// NewAPIKeyAuthenticator creates an authenticator for the configured
// internal API key. If logger is nil, slog.Default() is used.
func NewAPIKeyAuthenticator(cfg InternalAPIConfig, logger *slog.Logger) *APIKeyAuthenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIKeyAuthenticator{
		key:    cfg.Key,
		logger: logger,
	}
}

// Authenticate validates the request's API key and returns the derived
// claim set.
//
// Outcomes:
//   - No X-API-Key header: [ErrNoAPIKey] (check with errors.Is).
//   - Empty or mismatched key: a [kiterr.CodeInvalidAPIKey] error.
//   - Key match + system-call marker: a system claim set.
//   - Key match + user context: a user claim set; the X-User-Id header is
//     required and its absence is a [kiterr.CodeUnauthorized] error.
//
// Expected validation failures are returned as errors, never panics; the
// HTTP boundary renders them as 401-class responses.
func (a *APIKeyAuthenticator) Authenticate(r *http.Request) (ClaimSet, error) {
	values, present := r.Header[http.CanonicalHeaderKey(HeaderAPIKey)]
	if !present {
		return nil, ErrNoAPIKey
	}

	presented := ""
	if len(values) > 0 {
		presented = values[0]
	}
	if presented == "" {
		return nil, kiterr.New(kiterr.CodeInvalidAPIKey, "auth: empty API key")
	}

	if !TimeSafeCompare(presented, a.key.Value()) {
		a.logger.Warn("auth: API key mismatch", "path", r.URL.Path)
		return nil, kiterr.New(kiterr.CodeInvalidAPIKey, "auth: invalid API key")
	}

	if IsSystemRequest(r) {
		return systemClaimSet(), nil
	}

	return a.userClaimSet(r)
}

// IsSystemRequest reports whether the request carries a system-call marker:
// the X-System-Call header (presence, any value) or a request path under a
// reserved system/internal prefix.
func IsSystemRequest(r *http.Request) bool {
	if _, ok := r.Header[http.CanonicalHeaderKey(HeaderSystemCall)]; ok {
		return true
	}
	for _, prefix := range systemPathPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// systemClaimSet builds the claim set for a system call: no end-user
// identity, the nil-UUID sentinel as user id, and the system-call flag.
func systemClaimSet() ClaimSet {
	cs := make(ClaimSet, 3)
	cs.Set(ClaimAuthType, string(MethodSystem))
	cs.Set(ClaimIsSystemCall, "true")
	cs.Set(ClaimUserID, uuid.Nil.String())
	return cs
}

// userClaimSet builds the claim set for a user context forwarded alongside
// the internal API key. X-User-Id is required; the remaining headers are
// mapped 1:1 into claims only when present and non-empty.
func (a *APIKeyAuthenticator) userClaimSet(r *http.Request) (ClaimSet, error) {
	userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if userID == "" {
		return nil, kiterr.Newf(kiterr.CodeUnauthorized,
			"auth: %s header is required", HeaderUserID)
	}

	cs := make(ClaimSet, 8)
	cs.Set(ClaimUserID, userID)

	// System authority comes only from the X-System-Call marker or a
	// reserved path prefix, never from the forwarded auth type.
	authType := strings.TrimSpace(r.Header.Get(HeaderAuthType))
	if authType == "" || ParseMethod(authType) == MethodSystem {
		authType = string(MethodAPIKey)
	}
	cs.Set(ClaimAuthType, authType)

	// A stable, non-empty auth id for every API-key call: the explicit
	// header when supplied, else synthesized from the user id. Written to
	// both the audit and key-id claims.
	authID := strings.TrimSpace(r.Header.Get(HeaderAuthID))
	if authID == "" {
		authID = fmt.Sprintf("internal-api-key-%s", userID)
	}
	cs.Set(ClaimAuthID, authID)
	cs.Set(ClaimAPIKeyID, authID)

	setIfPresent(cs, ClaimUserLogin, r.Header.Get(HeaderUserLogin))
	setIfPresent(cs, ClaimDisplayName, r.Header.Get(HeaderUserDisplayName))
	setIfPresent(cs, ClaimPartnerID, r.Header.Get(HeaderPartnerID))
	setIfPresent(cs, ClaimAuthExp, r.Header.Get(HeaderAuthExp))
	setIfPresent(cs, ClaimAuthValidated, r.Header.Get(HeaderAuthValidated))

	for _, role := range ParseRoles(r.Header.Get(HeaderUserRoles)) {
		cs.Add(ClaimRole, role)
	}

	return cs, nil
}

// setIfPresent maps a header value into a claim only when non-empty after
// trimming. Omission, not an empty-string default.
func setIfPresent(cs ClaimSet, claim, value string) {
	value = strings.TrimSpace(value)
	if value != "" {
		cs.Set(claim, value)
	}
}

// ParseRoles splits a comma-separated role list, trims each entry, and
// drops empties. If no roles resolve, [DefaultRole] is injected so every
// identity has at least one role.
func ParseRoles(header string) []string {
	var roles []string
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			roles = append(roles, part)
		}
	}
	if len(roles) == 0 {
		return []string{DefaultRole}
	}
	return roles
}
