package httpx

import (
	"context"
	mathrand "math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ---------------------------------------------------------------------------
// Request identifiers
// ---------------------------------------------------------------------------

// HeaderRequestID is the header carrying the request correlation id, both
// inbound (honoured if present) and outbound (always set on the response).
const HeaderRequestID = "X-Request-Id"

type requestIDKey struct{}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// NewRequestID generates a lexicographically sortable request id. Safe for
// concurrent use.
func NewRequestID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// RequestID is middleware that ensures every request carries a correlation
// id: an inbound X-Request-Id is kept, otherwise a new ULID is generated.
// The id is stored on the request context and echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = NewRequestID()
		}
		rw.Header().Set(HeaderRequestID, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(rw, r.WithContext(ctx))
	})
}

// RequestIDFromContext extracts the request id placed by RequestID.
// Returns "" when the middleware did not run.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
