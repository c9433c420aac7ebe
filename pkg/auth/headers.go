package auth

// HTTP header names consumed by the authentication pipeline. Header lookup
// is case-insensitive per net/http semantics; these constants use the
// canonical wire spelling.
const (
	// HeaderAuthorization carries the bearer credential
	// ("Authorization: Bearer <token>").
	HeaderAuthorization = "Authorization"

	// HeaderAPIKey carries the shared internal API key for
	// service-to-service and trusted-gateway calls.
	HeaderAPIKey = "X-API-Key"

	// HeaderSystemCall marks a request as an internal system call acting
	// with no end-user identity. Presence (any value) is the signal.
	HeaderSystemCall = "X-System-Call"

	// HeaderUserID carries the end-user identifier accepted alongside the
	// internal API key. Required for non-system API-key calls.
	HeaderUserID = "X-User-Id"

	// HeaderUserLogin carries the optional end-user login.
	HeaderUserLogin = "X-User-Login"

	// HeaderUserDisplayName carries the optional end-user display name.
	HeaderUserDisplayName = "X-User-DisplayName"

	// HeaderPartnerID carries the optional partner identifier.
	HeaderPartnerID = "X-Partner-Id"

	// HeaderUserRoles carries a comma-separated list of role names.
	HeaderUserRoles = "X-User-Roles"

	// HeaderAuthType optionally overrides the auth-type claim.
	HeaderAuthType = "X-Auth-Type"

	// HeaderAuthID optionally supplies an explicit auth id for audit
	// correlation. When absent, a stable id is synthesized from the user id.
	HeaderAuthID = "X-Auth-Id"

	// HeaderAuthExp optionally supplies an expiry instant (Unix seconds).
	HeaderAuthExp = "X-Auth-Exp"

	// HeaderAuthValidated optionally marks the credential as already
	// validated by an upstream gateway.
	HeaderAuthValidated = "X-Auth-Validated"
)

// Claim names used in bearer tokens and in claim sets derived from trusted
// headers. Short machine-readable keys, stable across services.
const (
	// ClaimUserID is the end-user identifier (UUID).
	ClaimUserID = "user_id"

	// ClaimUserLogin is the end-user login.
	ClaimUserLogin = "user_login"

	// ClaimRole is a role name. The claim is repeatable: one value per role.
	ClaimRole = "role"

	// ClaimEmail is the end-user email address.
	ClaimEmail = "email"

	// ClaimPermissions is a granted permission code. Repeatable.
	ClaimPermissions = "permissions"

	// ClaimDisplayName is the end-user display name.
	ClaimDisplayName = "display_name"

	// ClaimPartnerID is the partner identifier (UUID).
	ClaimPartnerID = "partner_id"

	// ClaimAPIKeyID is the identifier of the API key used to authenticate.
	ClaimAPIKeyID = "api_key_id"

	// ClaimAuthType is the authentication method ([Method] claim value).
	ClaimAuthType = "auth_type"

	// ClaimAuthID is the token/key identifier used for audit correlation.
	ClaimAuthID = "auth_id"

	// ClaimAuthExp is a custom expiry instant in Unix seconds, consulted
	// when the standard exp claim is absent.
	ClaimAuthExp = "auth_exp"

	// ClaimAuthValidated marks the credential as validated upstream.
	ClaimAuthValidated = "auth_validated"

	// ClaimIsSystemCall marks the claim set as belonging to a system call.
	ClaimIsSystemCall = "is_system_call"

	// Standard token fields.
	ClaimJTI = "jti"
	ClaimExp = "exp"
	ClaimIat = "iat"
	ClaimSub = "sub"
	ClaimIss = "iss"
	ClaimAud = "aud"
)

// Reserved path prefixes that mark a request as a system call even without
// the X-System-Call header.
var systemPathPrefixes = []string{"/api/system", "/internal"}
