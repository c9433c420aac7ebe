package auth

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// ---------------------------------------------------------------------------
// ClaimSet — normalized identity attributes
// ---------------------------------------------------------------------------

// ClaimSet is a multimap of claim name to values. It is the normalized form
// of an authenticated identity, whether derived from a validated bearer
// token or from trusted headers accompanying the internal API key.
//
// Most claims are single-valued; role and permission claims are repeatable.
// A nil ClaimSet behaves like an empty one for reads.
type ClaimSet map[string][]string

// Get returns the first value of the named claim, or an empty string if the
// claim is absent.
func (c ClaimSet) Get(name string) string {
	if vals, ok := c[name]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// Has reports whether the named claim is present with at least one value.
func (c ClaimSet) Has(name string) bool {
	vals, ok := c[name]
	return ok && len(vals) > 0
}

// Add appends a value to the named claim.
func (c ClaimSet) Add(name, value string) {
	c[name] = append(c[name], value)
}

// Set replaces all values of the named claim with a single value.
func (c ClaimSet) Set(name, value string) {
	c[name] = []string{value}
}

// Values returns all values of the named claim. The returned slice is the
// internal one; callers must not modify it.
func (c ClaimSet) Values(name string) []string {
	return c[name]
}

// Roles returns all role claim values.
func (c ClaimSet) Roles() []string {
	return c[ClaimRole]
}

// ClaimSetFromToken converts validated jwt.MapClaims into a [ClaimSet].
// Scalar values are stringified; slice values (repeatable claims such as
// role or permissions) contribute one entry per element. Numeric claims
// like exp and iat are rendered as integer Unix seconds.
func ClaimSetFromToken(mc jwt.MapClaims) ClaimSet {
	cs := make(ClaimSet, len(mc))
	for name, raw := range mc {
		switch v := raw.(type) {
		case string:
			cs.Add(name, v)
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					cs.Add(name, s)
				}
			}
		case float64:
			// JSON numbers decode as float64. exp/iat/auth_exp are Unix
			// seconds; render without a fractional part.
			cs.Add(name, strconv.FormatInt(int64(v), 10))
		case bool:
			cs.Add(name, strconv.FormatBool(v))
		default:
			cs.Add(name, fmt.Sprintf("%v", v))
		}
	}
	return cs
}
