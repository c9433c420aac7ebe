package permissions

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// StaticResolver resolves permissions from an in-memory grant table. It is
// intended for tests and for services whose permission model is fixed at
// startup.
//
// A StaticResolver is safe for concurrent use.
type StaticResolver struct {
	mu     sync.RWMutex
	grants map[uuid.UUID]map[string]struct{}
}

// Compile-time interface compliance check.
var _ Resolver = (*StaticResolver)(nil)

// NewStaticResolver creates a resolver seeded from a user-to-permissions
// table. The input map may be nil.
func NewStaticResolver(grants map[uuid.UUID][]string) *StaticResolver {
	r := &StaticResolver{grants: make(map[uuid.UUID]map[string]struct{}, len(grants))}
	for userID, codes := range grants {
		r.grants[userID] = toSet(codes)
	}
	return r
}

// Grant adds permission codes for a user, merging with any existing grants.
func (r *StaticResolver) Grant(userID uuid.UUID, codes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.grants[userID]
	if !ok {
		set = make(map[string]struct{}, len(codes))
		r.grants[userID] = set
	}
	for _, code := range codes {
		set[code] = struct{}{}
	}
}

// Revoke removes permission codes from a user. Unknown codes are ignored.
func (r *StaticResolver) Revoke(userID uuid.UUID, codes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.grants[userID]
	if !ok {
		return
	}
	for _, code := range codes {
		delete(set, code)
	}
}

// HasAllPermissions implements [Resolver].
func (r *StaticResolver) HasAllPermissions(ctx context.Context, userID uuid.UUID, codes []string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.grants[userID]
	if !ok {
		return len(codes) == 0, nil
	}
	for _, code := range codes {
		if _, held := set[code]; !held {
			return false, nil
		}
	}
	return true, nil
}

func toSet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}
