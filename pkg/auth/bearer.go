package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	kiterr "github.com/Vovanda/go-service-kit/pkg/errors"
)

// tracerName is the OpenTelemetry instrumentation scope name for auth spans.
const tracerName = "github.com/Vovanda/go-service-kit/pkg/auth"

// maxTokenSize is the maximum accepted size for a JWT token string (8 KB).
// Tokens larger than this are rejected to prevent resource exhaustion.
const maxTokenSize = 8192

// ---------------------------------------------------------------------------
// tokenCache — in-memory cache for validated claim sets
// ---------------------------------------------------------------------------

// tokenCacheEntry stores a cached claim set and its expiration time.
type tokenCacheEntry struct {
	claims    ClaimSet
	expiresAt time.Time
}

// tokenCache provides an in-memory cache for validated claim sets, keyed by
// the SHA-256 hash of the token string. This avoids re-parsing and
// re-validating tokens on every request.
type tokenCache struct {
	mu      sync.RWMutex
	entries map[string]*tokenCacheEntry
	maxSize int
	ttl     time.Duration
}

// newTokenCache creates a new token cache with the given TTL and maximum
// number of entries.
func newTokenCache(ttl time.Duration, maxSize int) *tokenCache {
	return &tokenCache{
		entries: make(map[string]*tokenCacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// get retrieves a cached claim set by token hash. Returns the claims and
// true if the entry exists and has not expired, or nil and false otherwise.
func (c *tokenCache) get(tokenHash string) (ClaimSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[tokenHash]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.claims, true
}

// put stores a validated claim set in the cache. The effective cache TTL is
// the minimum of the configured TTL and the time remaining until the
// token's expiration (tokenExp; zero means no expiry signal). If the cache
// is at capacity, expired entries are evicted first; if still at capacity,
// the oldest entry is removed.
func (c *tokenCache) put(tokenHash string, claims ClaimSet, tokenExp time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ttl := c.ttl
	if !tokenExp.IsZero() {
		remaining := time.Until(tokenExp)
		if remaining <= 0 {
			return // Token already expired; do not cache.
		}
		if remaining < ttl {
			ttl = remaining
		}
	}
	if ttl <= 0 {
		return
	}

	expiresAt := time.Now().Add(ttl)

	if len(c.entries) >= c.maxSize {
		c.evictExpiredLocked()
	}
	if len(c.entries) >= c.maxSize {
		// Evict the oldest entry (earliest expiresAt).
		var oldestKey string
		var oldestTime time.Time
		first := true
		for k, v := range c.entries {
			if first || v.expiresAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = v.expiresAt
				first = false
			}
		}
		if oldestKey != "" {
			delete(c.entries, oldestKey)
		}
	}

	c.entries[tokenHash] = &tokenCacheEntry{
		claims:    claims,
		expiresAt: expiresAt,
	}
}

// evictExpiredLocked removes all expired entries. Caller must hold the
// write lock.
func (c *tokenCache) evictExpiredLocked() {
	now := time.Now()
	for k, v := range c.entries {
		if now.After(v.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// ---------------------------------------------------------------------------
// BearerValidator — RS256 bearer token validation and issuance
// ---------------------------------------------------------------------------

// BearerValidator validates RS256-signed bearer tokens against the
// configured issuer, audience, lifetime, and signing key, and mints tokens
// for services that issue their own credentials.
//
// Each validation rule is independently toggleable via [JWTConfig]; the
// defaults are fully strict. Lifetime validation uses zero clock skew: a
// token expired by one second fails.
//
// BearerValidator is safe for concurrent use by multiple goroutines.
type BearerValidator struct {
	cfg    JWTConfig
	keys   *KeyProvider
	tracer trace.Tracer
	logger *slog.Logger
	cache  *tokenCache
	clock  Clock
}

// NewBearerValidator creates a validator for the given configuration and
// key material. The configuration is validated before use. If logger is
// nil, slog.Default() is used; if cfg.Clock is nil, [SystemClock] is used.
func NewBearerValidator(cfg JWTConfig, keys *KeyProvider, logger *slog.Logger) (*BearerValidator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if keys == nil {
		return nil, kiterr.New(kiterr.CodeConfiguration, "auth: bearer validator requires key material")
	}
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock
	}

	return &BearerValidator{
		cfg:    cfg,
		keys:   keys,
		tracer: otel.Tracer(tracerName),
		logger: logger,
		cache:  newTokenCache(cfg.TokenCacheTTL, cfg.TokenCacheMaxSize),
		clock:  clock,
	}, nil
}

// Validate verifies the given bearer token string and returns its claim
// set. The method performs the following steps:
//
//  1. Rejects empty tokens with [kiterr.CodeNoToken] and oversized tokens
//     with [kiterr.CodeInvalidToken].
//  2. Checks the in-memory validated-token cache.
//  3. Verifies the RS256 signature (when ValidateIssuerSigningKey is on).
//  4. Checks lifetime, issuer, and audience per the configured toggles,
//     with zero clock skew.
//  5. Caches the claim set and records span attributes.
//
// Failures carry a stable machine code (NO_TOKEN or INVALID_TOKEN) rather
// than raw validation text.
func (v *BearerValidator) Validate(ctx context.Context, tokenStr string) (ClaimSet, error) {
	_, span := v.tracer.Start(ctx, "auth.ValidateBearer")
	defer span.End()

	if tokenStr == "" {
		err := kiterr.New(kiterr.CodeNoToken, "auth: no bearer token presented")
		finishSpan(span, err)
		return nil, err
	}
	if len(tokenStr) > maxTokenSize {
		err := kiterr.New(kiterr.CodeInvalidToken, "auth: token exceeds maximum size")
		finishSpan(span, err)
		return nil, err
	}

	hash := tokenHash(tokenStr)
	if claims, ok := v.cache.get(hash); ok {
		span.SetAttributes(attribute.Bool("auth.cache_hit", true))
		return claims, nil
	}
	span.SetAttributes(attribute.Bool("auth.cache_hit", false))

	mc, err := v.parseToken(tokenStr)
	if err != nil {
		classified := classifyTokenError(err)
		finishSpan(span, classified)
		return nil, classified
	}

	exp, err := v.validateClaims(mc)
	if err != nil {
		finishSpan(span, err)
		return nil, err
	}

	claims := ClaimSetFromToken(mc)
	v.cache.put(hash, claims, exp)

	span.SetAttributes(
		attribute.String("auth.subject", claims.Get(ClaimUserID)),
		attribute.String("auth.token_id", claims.Get(ClaimJTI)),
	)
	return claims, nil
}

// parseToken parses the token and verifies its signature when signing-key
// validation is enabled. Claims validation is performed separately by
// validateClaims so that each rule honors its own toggle.
func (v *BearerValidator) parseToken(tokenStr string) (jwt.MapClaims, error) {
	if !v.cfg.ValidateIssuerSigningKey {
		parser := jwt.NewParser()
		token, _, err := parser.ParseUnverified(tokenStr, jwt.MapClaims{})
		if err != nil {
			return nil, err
		}
		mc, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return nil, kiterr.New(kiterr.CodeInvalidToken, "auth: unable to extract token claims")
		}
		return mc, nil
	}

	// jwt.WithValidMethods restricts accepted algorithms to RS256 only,
	// which also rejects alg:none and prevents algorithm confusion where
	// the public key would be misused as an HMAC secret.
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return v.keys.ValidationKey(), nil
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, err
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, kiterr.New(kiterr.CodeInvalidToken, "auth: unable to extract token claims")
	}
	return mc, nil
}

// validateClaims applies the configured lifetime, issuer, and audience
// rules with zero clock skew. Returns the token's expiry instant (zero if
// none) for cache TTL derivation.
func (v *BearerValidator) validateClaims(mc jwt.MapClaims) (time.Time, error) {
	now := v.clock.Now()
	var tokenExp time.Time

	exp, err := mc.GetExpirationTime()
	if err != nil {
		return time.Time{}, kiterr.New(kiterr.CodeInvalidToken, "auth: token expiry claim is malformed")
	}
	if exp != nil {
		tokenExp = exp.Time
	}

	if v.cfg.ValidateLifetime {
		if exp == nil {
			return time.Time{}, kiterr.New(kiterr.CodeInvalidToken, "auth: token has no expiry")
		}
		if !now.Before(exp.Time) {
			return time.Time{}, kiterr.New(kiterr.CodeInvalidToken, "auth: token has expired")
		}
		if nbf, err := mc.GetNotBefore(); err == nil && nbf != nil && now.Before(nbf.Time) {
			return time.Time{}, kiterr.New(kiterr.CodeInvalidToken, "auth: token is not yet valid")
		}
	}

	if v.cfg.ValidateIssuer {
		iss, err := mc.GetIssuer()
		if err != nil || iss != v.cfg.Issuer {
			return time.Time{}, kiterr.New(kiterr.CodeInvalidToken, "auth: token issuer is invalid")
		}
	}

	if v.cfg.ValidateAudience {
		aud, err := mc.GetAudience()
		if err != nil || !containsAudience(aud, v.cfg.Audience) {
			return time.Time{}, kiterr.New(kiterr.CodeInvalidToken, "auth: token audience is invalid")
		}
	}

	return tokenExp, nil
}

// Issue mints an RS256-signed bearer token for the given subject with the
// configured issuer, audience, and lifetime. The extra claim set is merged
// into the token: single-valued claims become scalar fields, repeatable
// claims (role, permissions) become arrays. Standard fields (iss, aud,
// exp, iat, jti, sub, user_id) set by Issue win over extras.
func (v *BearerValidator) Issue(subject string, extra ClaimSet) (string, error) {
	if subject == "" {
		return "", kiterr.New(kiterr.CodeValidation, "auth: token subject must not be empty")
	}

	now := v.clock.Now()
	mc := jwt.MapClaims{}

	for name, vals := range extra {
		switch len(vals) {
		case 0:
		case 1:
			mc[name] = vals[0]
		default:
			mc[name] = vals
		}
	}

	mc[ClaimIss] = v.cfg.Issuer
	mc[ClaimAud] = v.cfg.Audience
	mc[ClaimSub] = subject
	mc[ClaimUserID] = subject
	mc[ClaimIat] = now.Unix()
	mc[ClaimExp] = now.Add(v.cfg.Lifetime()).Unix()
	mc[ClaimJTI] = uuid.NewString()
	if _, ok := mc[ClaimAuthType]; !ok {
		mc[ClaimAuthType] = string(MethodJWT)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, mc)
	signed, err := token.SignedString(v.keys.SigningKey())
	if err != nil {
		return "", kiterr.Wrap(err, kiterr.CodeInternal, "auth: failed to sign token")
	}
	return signed, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// tokenHash computes the SHA-256 hash of a token string and returns it as a
// hex-encoded string. Used as the cache key to avoid storing raw tokens in
// memory.
func tokenHash(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// containsAudience reports whether the audience claim includes the expected
// value.
func containsAudience(aud jwt.ClaimStrings, expected string) bool {
	for _, a := range aud {
		if a == expected {
			return true
		}
	}
	return false
}

// classifyTokenError converts a JWT library error to a stable
// INVALID_TOKEN error without leaking raw validation text. Errors that are
// already structured pass through unchanged.
func classifyTokenError(err error) error {
	if err == nil {
		return nil
	}

	var kitError *kiterr.Error
	if errors.As(err, &kitError) {
		return kitError
	}

	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return kiterr.Wrap(err, kiterr.CodeInvalidToken, "auth: token is malformed")
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return kiterr.Wrap(err, kiterr.CodeInvalidToken, "auth: token signature is invalid")
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return kiterr.Wrap(err, kiterr.CodeInvalidToken, "auth: token is unverifiable")
	default:
		return kiterr.Wrap(err, kiterr.CodeInvalidToken, "auth: token validation failed")
	}
}

// finishSpan records an error on the span if err is non-nil and sets the
// span status to Error.
func finishSpan(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
