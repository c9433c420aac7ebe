package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	kiterr "github.com/Vovanda/go-service-kit/pkg/errors"
)

// ---------------------------------------------------------------------------
// AuthContext — authentication metadata
// ---------------------------------------------------------------------------

// NeverExpires is the sentinel expiry for credentials with no expiry
// signal. Absence of an expiry claim maps to this far-future instant, not
// to missing data, so ExpireAt is always present.
var NeverExpires = time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC)

// AuthContext is the authentication metadata of a request: how it was
// authenticated, the credential identifier used for audit correlation, and
// when the credential expires.
type AuthContext struct {
	// Type is the authentication method. MethodUnknown means the claim set
	// carried no recognizable auth-type signal.
	Type Method

	// ID is the token/key identifier. Resolution order: jti claim, then
	// api_key_id, then auth_id; empty string (never a missing field) when
	// none is present.
	ID string

	// ExpireAt is the credential expiry. Resolution order: exp claim, then
	// auth_exp, both as Unix seconds; [NeverExpires] when absent or
	// unparsable.
	ExpireAt time.Time
}

// ---------------------------------------------------------------------------
// UserContext — normalized per-request identity
// ---------------------------------------------------------------------------

// UserContext is the read-only, request-scoped authorization context
// derived from an authenticated claim set. Every field is computed exactly
// once by [NewUserContext]; two reads of any field within one request
// return identical values even if the underlying claim data changes.
//
// Identifier accessors return precomputed results: parse failures and
// system-context guards are evaluated at construction and stored, so the
// error behavior is as stable as the values.
type UserContext struct {
	// Login is the end-user login, empty when not supplied.
	Login string

	// DisplayName is the end-user display name, empty when not supplied.
	DisplayName string

	// Roles are the identity's role names. API-key identities always carry
	// at least [DefaultRole].
	Roles []string

	// Permissions are the permission codes granted directly in the claim
	// set, if any.
	Permissions []string

	// Auth is the authentication metadata.
	Auth AuthContext

	// IsJWTAuthenticated reports authentication via bearer token.
	// Precomputed from Auth.Type, never derived independently.
	IsJWTAuthenticated bool

	// IsAPIKeyAuthenticated reports authentication via the internal key.
	IsAPIKeyAuthenticated bool

	// IsSystemCall reports a system call with no end-user identity.
	IsSystemCall bool

	userID       uuid.UUID
	userIDErr    error
	partnerID    uuid.UUID
	partnerIDErr error
	apiKeyID     uuid.UUID
	hasAPIKeyID  bool
}

// NewUserContext derives a [UserContext] from an authenticated claim set.
// All fields, including identifier parse results and their errors, are
// computed here; the returned context performs no further work.
func NewUserContext(claims ClaimSet) *UserContext {
	uc := &UserContext{
		Login:       claims.Get(ClaimUserLogin),
		DisplayName: claims.Get(ClaimDisplayName),
		Roles:       append([]string(nil), claims.Values(ClaimRole)...),
		Permissions: append([]string(nil), claims.Values(ClaimPermissions)...),
		Auth: AuthContext{
			Type:     ParseMethod(claims.Get(ClaimAuthType)),
			ID:       resolveAuthID(claims),
			ExpireAt: resolveExpireAt(claims),
		},
	}

	uc.IsJWTAuthenticated = uc.Auth.Type == MethodJWT
	uc.IsAPIKeyAuthenticated = uc.Auth.Type == MethodAPIKey
	uc.IsSystemCall = uc.Auth.Type == MethodSystem

	uc.userID, uc.userIDErr = resolveUserID(claims, uc.IsSystemCall)
	uc.partnerID, uc.partnerIDErr = resolvePartnerID(claims, uc.IsSystemCall)
	uc.apiKeyID, uc.hasAPIKeyID = resolveAPIKeyID(claims)

	return uc
}

// UserID returns the end-user identifier. For system contexts, and for the
// nil-UUID sentinel, the call fails with an internal error: reading a user
// id where no real user exists is a programming error, not a request
// problem. A missing or malformed claim fails with UNAUTHORIZED.
func (c *UserContext) UserID() (uuid.UUID, error) {
	return c.userID, c.userIDErr
}

// PartnerID returns the partner identifier, or uuid.Nil with a nil error
// when no partner claim is present. Partners never apply to system calls;
// reading the partner id under System auth fails with an internal error.
// A malformed claim fails with UNAUTHORIZED.
func (c *UserContext) PartnerID() (uuid.UUID, error) {
	return c.partnerID, c.partnerIDErr
}

// APIKeyID returns the identifier of the API key used to authenticate, and
// whether one was present. This field is informational: a missing or
// malformed claim yields false, never an error.
func (c *UserContext) APIKeyID() (uuid.UUID, bool) {
	return c.apiKeyID, c.hasAPIKeyID
}

// HasRole reports whether the identity carries the given role.
func (c *UserContext) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// resolveUserID parses the user-id claim, applying the system-context and
// nil-sentinel guards.
func resolveUserID(claims ClaimSet, isSystem bool) (uuid.UUID, error) {
	if isSystem {
		return uuid.Nil, kiterr.New(kiterr.CodeInternal,
			"auth: user id is not available for system calls")
	}

	raw := claims.Get(ClaimUserID)
	if raw == "" {
		return uuid.Nil, kiterr.New(kiterr.CodeUnauthorized, "auth: user id claim is missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, kiterr.New(kiterr.CodeUnauthorized, "auth: user id claim is not a valid identifier")
	}
	if id == uuid.Nil {
		// Guards against treating "no real user" as user zero.
		return uuid.Nil, kiterr.New(kiterr.CodeInternal,
			"auth: user id claim is the nil identifier")
	}
	return id, nil
}

// resolvePartnerID parses the optional partner-id claim.
func resolvePartnerID(claims ClaimSet, isSystem bool) (uuid.UUID, error) {
	if isSystem {
		return uuid.Nil, kiterr.New(kiterr.CodeInternal,
			"auth: partner id is not available for system calls")
	}

	raw := claims.Get(ClaimPartnerID)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, kiterr.New(kiterr.CodeUnauthorized, "auth: partner id claim is not a valid identifier")
	}
	return id, nil
}

// resolveAPIKeyID best-effort parses the api-key-id claim.
func resolveAPIKeyID(claims ClaimSet) (uuid.UUID, bool) {
	raw := claims.Get(ClaimAPIKeyID)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// resolveAuthID resolves the audit identifier: jti, then api_key_id, then
// auth_id, else empty string.
func resolveAuthID(claims ClaimSet) string {
	if v := claims.Get(ClaimJTI); v != "" {
		return v
	}
	if v := claims.Get(ClaimAPIKeyID); v != "" {
		return v
	}
	return claims.Get(ClaimAuthID)
}

// resolveExpireAt resolves the credential expiry: exp, then auth_exp, both
// Unix seconds; [NeverExpires] when absent or unparsable.
func resolveExpireAt(claims ClaimSet) time.Time {
	for _, name := range []string{ClaimExp, ClaimAuthExp} {
		raw := claims.Get(name)
		if raw == "" {
			continue
		}
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		return time.Unix(secs, 0).UTC()
	}
	return NeverExpires
}

// ---------------------------------------------------------------------------
// Context plumbing
// ---------------------------------------------------------------------------

// contextKey is an unexported type used for context keys in this package.
// Using a distinct type prevents collisions with keys from other packages.
type contextKey int

// userContextKey stores the *UserContext in the request context.
const userContextKey contextKey = iota

// ContextWithUser returns a new context with the given UserContext
// attached. The context can later be retrieved with [UserFromContext].
//
// This is typically called by [Middleware] and the gRPC interceptors after
// successful authentication.
func ContextWithUser(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// UserFromContext retrieves the UserContext from the context. Returns the
// context and true if present, or nil and false if no user context has
// been set. This function never returns a non-nil context with false.
func UserFromContext(ctx context.Context) (*UserContext, bool) {
	uc, ok := ctx.Value(userContextKey).(*UserContext)
	return uc, ok
}

// MustUserFromContext retrieves the UserContext from the context, panicking
// if none is present. Use only in code paths that run strictly after the
// authentication middleware.
func MustUserFromContext(ctx context.Context) *UserContext {
	uc, ok := UserFromContext(ctx)
	if !ok {
		panic("auth: no user context in request; ensure authentication middleware is configured")
	}
	return uc
}
