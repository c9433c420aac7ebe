package httpx

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	kiterr "github.com/Vovanda/go-service-kit/pkg/errors"
)

// ---------------------------------------------------------------------------
// Panic recovery
// ---------------------------------------------------------------------------

// Recovery is middleware that converts handler panics into 500 envelopes
// instead of torn connections. The panic value and stack location are
// logged through the writer's logger.
func (w *Writer) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				w.logger.Error("httpx: handler panic",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
					"request_id", RequestIDFromContext(r.Context()),
				)
				w.WriteError(rw, r, kiterr.Newf(kiterr.CodeInternal, "panic: %v", rec))
			}
		}()
		next.ServeHTTP(rw, r)
	})
}

// ---------------------------------------------------------------------------
// Rate limiting
// ---------------------------------------------------------------------------

// bucketTTL bounds how long an idle per-client limiter is retained before
// the sweeper drops it.
const bucketTTL = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit is middleware applying a per-client token bucket keyed by
// client IP. Requests over the budget receive a 429 envelope. Idle buckets
// are swept periodically so the map does not grow without bound.
func (w *Writer) RateLimit(next http.Handler, burst int, perSecond float64) http.Handler {
	var mu sync.Mutex
	buckets := make(map[string]*clientBucket)
	lastSweep := time.Now()

	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		mu.Lock()
		if time.Since(lastSweep) > bucketTTL {
			for key, b := range buckets {
				if time.Since(b.lastSeen) > bucketTTL {
					delete(buckets, key)
				}
			}
			lastSweep = time.Now()
		}
		b, ok := buckets[ip]
		if !ok {
			b = &clientBucket{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
			buckets[ip] = b
		}
		b.lastSeen = time.Now()
		allowed := b.limiter.Allow()
		mu.Unlock()

		if !allowed {
			w.WriteError(rw, r, kiterr.New(kiterr.CodeRateLimit, "request rate limit exceeded"))
			return
		}
		next.ServeHTTP(rw, r)
	})
}

// clientIP resolves the originating client address: first entry of
// X-Forwarded-For when present, otherwise the connection remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
