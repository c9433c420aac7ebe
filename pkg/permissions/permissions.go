// Package permissions provides permission resolution backends for the
// authorization enforcer: a static in-memory resolver for tests and simple
// services, a PostgreSQL resolver querying the role and permission tables,
// and a Redis-backed caching decorator for either.
//
// All resolvers answer the same question: does a user hold every one of a
// set of permission codes. Requirements use AND semantics; resolvers are
// consulted only for codes the user's token claims do not already grant.
package permissions

import (
	"context"

	"github.com/google/uuid"
)

// Resolver answers whether a user holds a set of permission codes.
type Resolver interface {
	// HasAllPermissions reports whether the user holds every one of the
	// given permission codes.
	HasAllPermissions(ctx context.Context, userID uuid.UUID, codes []string) (bool, error)
}
