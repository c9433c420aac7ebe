package permissions

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	kiterr "github.com/Vovanda/go-service-kit/pkg/errors"
)

// Pool defines the subset of PostgreSQL pool operations the resolver uses.
// It is satisfied by [*pgxpool.Pool] and by mock implementations such as
// pgxmock for unit testing.
type Pool interface {
	// Query executes a SQL query that returns rows.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Compile-time interface compliance check.
var _ Pool = (*pgxpool.Pool)(nil)

// permissionsQuery resolves the distinct permission codes a user holds
// through role membership.
const permissionsQuery = `
SELECT DISTINCT p.code
FROM user_roles ur
JOIN role_permissions rp ON rp.role_id = ur.role_id
JOIN permissions p ON p.id = rp.permission_id
WHERE ur.user_id = $1 AND p.code = ANY($2)`

// PostgresResolver resolves permissions from the role and permission tables
// of a PostgreSQL database.
//
// A PostgresResolver is safe for concurrent use.
type PostgresResolver struct {
	pool Pool
}

// Compile-time interface compliance check.
var _ Resolver = (*PostgresResolver)(nil)

// NewPostgresResolver creates a resolver over the given pool. Pass a
// [*pgxpool.Pool] in production or a pgxmock pool in tests.
func NewPostgresResolver(pool Pool) *PostgresResolver {
	return &PostgresResolver{pool: pool}
}

// HasAllPermissions implements [Resolver]. It queries the distinct codes
// the user holds from the requested set and reports whether every
// requested code came back.
func (r *PostgresResolver) HasAllPermissions(ctx context.Context, userID uuid.UUID, codes []string) (bool, error) {
	if len(codes) == 0 {
		return true, nil
	}

	rows, err := r.pool.Query(ctx, permissionsQuery, userID, codes)
	if err != nil {
		return false, kiterr.Wrap(err, kiterr.CodeInternal, "permissions: query failed")
	}
	defer rows.Close()

	held := make(map[string]struct{}, len(codes))
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return false, kiterr.Wrap(err, kiterr.CodeInternal, "permissions: scan failed")
		}
		held[code] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return false, kiterr.Wrap(err, kiterr.CodeInternal, "permissions: row iteration failed")
	}

	for _, code := range codes {
		if _, ok := held[code]; !ok {
			return false, nil
		}
	}
	return true, nil
}
