package auth

import (
	"time"

	kiterr "github.com/Vovanda/go-service-kit/pkg/errors"
)

// ---------------------------------------------------------------------------
// JWTConfig — bearer token validation and issuance settings
// ---------------------------------------------------------------------------

// JWTConfig holds the configuration for [BearerValidator]. All validation
// toggles default to fully strict; loosening any of them is an explicit
// per-deployment decision.
//
// The struct is loaded with the pkg/config loader; invalid configuration
// aborts process startup.
type JWTConfig struct {
	// Issuer is the expected "iss" claim of accepted tokens and the issuer
	// of tokens minted by [BearerValidator.Issue].
	Issuer string `json:"issuer" yaml:"issuer" env:"ISSUER" required:"true"`

	// Audience is the expected "aud" claim of accepted tokens.
	Audience string `json:"audience" yaml:"audience" env:"AUDIENCE" required:"true"`

	// PrivateKeyPath is the filesystem path to the PEM-encoded RSA private
	// key used for signing. The file must exist and parse at startup.
	PrivateKeyPath string `json:"private_key_path" yaml:"private_key_path" env:"PRIVATE_KEY_PATH" required:"true"`

	// PublicKeyPath is the filesystem path to the PEM-encoded RSA public
	// key used for signature validation.
	PublicKeyPath string `json:"public_key_path" yaml:"public_key_path" env:"PUBLIC_KEY_PATH" required:"true"`

	// LifetimeMinutes is the lifetime of issued tokens in minutes.
	// Must be in the range [1, 1440]. Defaults to 60.
	LifetimeMinutes int `json:"lifetime_minutes" yaml:"lifetime_minutes" env:"LIFETIME_MINUTES" envDefault:"60"`

	// ValidateIssuer controls whether the "iss" claim is checked against
	// Issuer. Defaults to true.
	ValidateIssuer bool `json:"validate_issuer" yaml:"validate_issuer" env:"VALIDATE_ISSUER" envDefault:"true"`

	// ValidateAudience controls whether the "aud" claim is checked against
	// Audience. Defaults to true.
	ValidateAudience bool `json:"validate_audience" yaml:"validate_audience" env:"VALIDATE_AUDIENCE" envDefault:"true"`

	// ValidateLifetime controls whether the "exp" and "nbf" claims are
	// checked against the current instant with zero clock skew.
	// Defaults to true.
	ValidateLifetime bool `json:"validate_lifetime" yaml:"validate_lifetime" env:"VALIDATE_LIFETIME" envDefault:"true"`

	// ValidateIssuerSigningKey controls whether the token signature is
	// verified against the configured public key. Defaults to true.
	ValidateIssuerSigningKey bool `json:"validate_issuer_signing_key" yaml:"validate_issuer_signing_key" env:"VALIDATE_ISSUER_SIGNING_KEY" envDefault:"true"`

	// RequireHTTPSMetadata controls whether token-related metadata
	// endpoints must be served over HTTPS. Defaults to true.
	RequireHTTPSMetadata bool `json:"require_https_metadata" yaml:"require_https_metadata" env:"REQUIRE_HTTPS_METADATA" envDefault:"true"`

	// TokenCacheTTL is the maximum time a validated token's claim set is
	// cached before re-validation. The effective TTL per token is the
	// minimum of this value and the token's remaining lifetime.
	// Defaults to 5 minutes.
	TokenCacheTTL time.Duration `json:"token_cache_ttl" yaml:"token_cache_ttl" env:"TOKEN_CACHE_TTL" envDefault:"5m"`

	// TokenCacheMaxSize is the maximum number of entries in the validated
	// token cache. Defaults to 10000.
	TokenCacheMaxSize int `json:"token_cache_max_size" yaml:"token_cache_max_size" env:"TOKEN_CACHE_MAX_SIZE" envDefault:"10000"`

	// Clock supplies the current instant for lifetime validation and token
	// issuance. If nil, [SystemClock] is used.
	Clock Clock `json:"-" yaml:"-"`
}

// Validate checks the configuration for logical correctness. It is invoked
// automatically by the pkg/config loader.
func (c *JWTConfig) Validate() error {
	if c.LifetimeMinutes < 1 || c.LifetimeMinutes > 1440 {
		return kiterr.Newf(kiterr.CodeValidation,
			"auth: token lifetime %d minutes is out of range [1, 1440]", c.LifetimeMinutes)
	}
	if c.TokenCacheTTL < 0 {
		return kiterr.New(kiterr.CodeValidation, "auth: token cache TTL must be non-negative")
	}
	if c.TokenCacheMaxSize <= 0 {
		return kiterr.New(kiterr.CodeValidation, "auth: token cache max size must be greater than zero")
	}
	return nil
}

// Configured reports whether JWT validation is configured for this service
// instance. Scheme selection uses this: when JWT is not configured, every
// request is routed to the API-key scheme.
func (c *JWTConfig) Configured() bool {
	return c != nil && c.Issuer != "" && c.Audience != ""
}

// Lifetime returns the configured token lifetime as a duration.
func (c *JWTConfig) Lifetime() time.Duration {
	return time.Duration(c.LifetimeMinutes) * time.Minute
}

// ---------------------------------------------------------------------------
// InternalAPIConfig — shared-secret settings
// ---------------------------------------------------------------------------

// minAPIKeyLength is the minimum accepted length of the internal API key.
const minAPIKeyLength = 16

// InternalAPIConfig holds the shared internal API key used for
// service-to-service and trusted-gateway authentication.
type InternalAPIConfig struct {
	// Key is the shared secret compared (constant-time) against the
	// X-API-Key header. Minimum 16 characters.
	Key Secret `json:"-" yaml:"key" env:"KEY" required:"true"`
}

// Validate checks that the key meets the minimum length requirement. It is
// invoked automatically by the pkg/config loader.
func (c *InternalAPIConfig) Validate() error {
	if len(c.Key.Value()) < minAPIKeyLength {
		return kiterr.Newf(kiterr.CodeValidation,
			"auth: internal API key must be at least %d characters", minAPIKeyLength)
	}
	return nil
}
