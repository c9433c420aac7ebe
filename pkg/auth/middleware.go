package auth

import (
	"errors"
	"log/slog"
	"net/http"

	kiterr "github.com/Vovanda/go-service-kit/pkg/errors"
	"github.com/Vovanda/go-service-kit/pkg/httpx"
)

// ---------------------------------------------------------------------------
// HTTP middleware
// ---------------------------------------------------------------------------

// Middleware authenticates incoming HTTP requests and places the resulting
// [UserContext] on the request context.
//
// Per request it performs:
//  1. Scheme selection over the request headers ([SelectScheme])
//  2. Credential validation via the bearer validator or the API key
//     authenticator
//  3. [UserContext] construction from the resulting claims
//  4. Context enrichment and hand-off to the next handler
//
// Authentication failures are rendered as error envelopes through the
// response writer; the handler chain is never invoked with an
// unauthenticated context.
type Middleware struct {
	bearer  *BearerValidator
	apiKey  *APIKeyAuthenticator
	writer  *httpx.Writer
	logger  *slog.Logger
	metrics *Metrics
}

// NewMiddleware creates the authentication middleware. Either authenticator
// may be nil: a nil bearer validator routes every request to the API key
// path, and a nil API key authenticator rejects API key requests. If logger
// is nil, slog.Default() is used.
func NewMiddleware(bearer *BearerValidator, apiKey *APIKeyAuthenticator, writer *httpx.Writer, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{
		bearer: bearer,
		apiKey: apiKey,
		writer: writer,
		logger: logger,
	}
}

// WithMetrics attaches Prometheus collectors to the middleware. Returns the
// middleware for chaining.
func (m *Middleware) WithMetrics(metrics *Metrics) *Middleware {
	m.metrics = metrics
	return m
}

// Handler wraps next with authentication.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme := SelectScheme(r.Header, m.bearer != nil)

		claims, err := m.authenticate(r, scheme)
		if err != nil {
			if r.Context().Err() != nil {
				err = kiterr.Wrap(r.Context().Err(), kiterr.CodeRequestCancelled,
					"auth: request cancelled during authentication")
			}
			m.metrics.observeAttempt(scheme, "failure")
			m.logger.DebugContext(r.Context(), "auth: authentication failed",
				"scheme", scheme,
				"path", r.URL.Path,
				"error", err,
			)
			m.writer.WriteError(w, r, err)
			return
		}

		m.metrics.observeAttempt(scheme, "success")

		user := NewUserContext(claims)
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// authenticate runs the validator selected for the request and returns the
// resulting claims.
func (m *Middleware) authenticate(r *http.Request, scheme Scheme) (ClaimSet, error) {
	switch scheme {
	case SchemeBearer:
		token := ExtractBearerToken(r.Header.Get(HeaderAuthorization))
		return m.bearer.Validate(r.Context(), token)

	case SchemeAPIKey:
		if m.apiKey == nil {
			return nil, kiterr.New(kiterr.CodeConfiguration, "auth: API key authentication is not configured")
		}
		claims, err := m.apiKey.Authenticate(r)
		if errors.Is(err, ErrNoAPIKey) {
			return nil, kiterr.New(kiterr.CodeNoAPIKey, "auth: no API key presented")
		}
		return claims, err

	default:
		return nil, kiterr.Newf(kiterr.CodeUnauthorized, "auth: unsupported authentication scheme %q", scheme)
	}
}
