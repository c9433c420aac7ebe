package permissions

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache defines the subset of Redis operations the caching decorator uses.
// It is satisfied by [*redis.Client] and by mock implementations for unit
// testing.
type Cache interface {
	// Get returns the string value of a key.
	Get(ctx context.Context, key string) *redis.StringCmd

	// Set sets the string value of a key with an expiration.
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Compile-time interface compliance check.
var _ Cache = (*redis.Client)(nil)

// DefaultCacheTTL bounds how long a cached permission decision is honoured
// before the underlying resolver is consulted again.
const DefaultCacheTTL = 5 * time.Minute

const cacheKeyPrefix = "permissions:"

// CachedResolver decorates a [Resolver] with a Redis cache of permission
// decisions. Cache failures are treated as misses: the inner resolver is
// always the source of truth and Redis unavailability never fails a check.
//
// A CachedResolver is safe for concurrent use.
type CachedResolver struct {
	inner  Resolver
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// Compile-time interface compliance check.
var _ Resolver = (*CachedResolver)(nil)

// NewCachedResolver creates a caching decorator around inner. A
// non-positive ttl falls back to [DefaultCacheTTL]. If logger is nil,
// slog.Default() is used.
func NewCachedResolver(inner Resolver, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedResolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedResolver{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// HasAllPermissions implements [Resolver]. The decision for each
// (user, code set) pair is cached under a deterministic key.
func (r *CachedResolver) HasAllPermissions(ctx context.Context, userID uuid.UUID, codes []string) (bool, error) {
	if len(codes) == 0 {
		return true, nil
	}

	key := cacheKey(userID, codes)

	cached, err := r.cache.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached == "1", nil
	case !errors.Is(err, redis.Nil):
		r.logger.WarnContext(ctx, "permissions: cache read failed", "error", err)
	}

	ok, err := r.inner.HasAllPermissions(ctx, userID, codes)
	if err != nil {
		return false, err
	}

	value := "0"
	if ok {
		value = "1"
	}
	if err := r.cache.Set(ctx, key, value, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "permissions: cache write failed", "error", err)
	}

	return ok, nil
}

// cacheKey builds a deterministic key for a (user, code set) decision. The
// codes are sorted so permutations of the same requirement share an entry.
func cacheKey(userID uuid.UUID, codes []string) string {
	sorted := make([]string, len(codes))
	copy(sorted, codes)
	sort.Strings(sorted)
	return cacheKeyPrefix + userID.String() + ":" + strings.Join(sorted, ",")
}
