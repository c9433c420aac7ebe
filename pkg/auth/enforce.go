package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	kiterr "github.com/Vovanda/go-service-kit/pkg/errors"
	"github.com/Vovanda/go-service-kit/pkg/httpx"
)

// ---------------------------------------------------------------------------
// Permission enforcement
// ---------------------------------------------------------------------------

// PermissionResolver answers whether a user holds a set of permission
// codes. It is consulted only for codes the user's claims do not already
// grant, so implementations see the narrowed set.
type PermissionResolver interface {
	// HasAllPermissions reports whether the user holds every one of the
	// given permission codes.
	HasAllPermissions(ctx context.Context, userID uuid.UUID, codes []string) (bool, error)
}

// Enforcer applies per-route permission requirements against the
// authenticated [UserContext].
//
// Requirements use AND semantics: every listed code must be held. System
// calls bypass permission checks entirely. Codes already present in the
// user's permission claims are granted without consulting the resolver.
type Enforcer struct {
	resolver PermissionResolver
	writer   *httpx.Writer
	tracer   trace.Tracer
	logger   *slog.Logger
	metrics  *Metrics
}

// NewEnforcer creates a permission enforcer. The resolver may be nil, in
// which case only claim-granted permissions satisfy requirements. If logger
// is nil, slog.Default() is used.
func NewEnforcer(resolver PermissionResolver, writer *httpx.Writer, logger *slog.Logger) *Enforcer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enforcer{
		resolver: resolver,
		writer:   writer,
		tracer:   otel.Tracer(tracerName),
		logger:   logger,
	}
}

// WithMetrics attaches Prometheus collectors to the enforcer. Returns the
// enforcer for chaining.
func (e *Enforcer) WithMetrics(metrics *Metrics) *Enforcer {
	e.metrics = metrics
	return e
}

// Check verifies that user holds every permission in codes. Duplicate and
// empty codes are ignored; an empty requirement always passes.
func (e *Enforcer) Check(ctx context.Context, user *UserContext, codes ...string) error {
	required := dedupe(codes)
	if len(required) == 0 {
		return nil
	}

	ctx, span := e.tracer.Start(ctx, "auth.CheckPermissions")
	defer span.End()
	span.SetAttributes(attribute.StringSlice("auth.required_permissions", required))

	if user == nil {
		err := kiterr.Unauthorized("auth: authentication is required")
		finishSpan(span, err)
		return err
	}
	if user.IsSystemCall {
		span.SetAttributes(attribute.Bool("auth.system_call", true))
		return nil
	}

	missing := subtract(required, user.Permissions)
	if len(missing) == 0 {
		return nil
	}

	if e.resolver != nil {
		userID, err := user.UserID()
		if err != nil {
			finishSpan(span, err)
			return err
		}
		ok, err := e.resolver.HasAllPermissions(ctx, userID, missing)
		if err != nil {
			wrapped := kiterr.Wrap(err, kiterr.CodeInternal, "auth: permission resolution failed")
			finishSpan(span, wrapped)
			return wrapped
		}
		if ok {
			return nil
		}
	}

	e.metrics.observeDenial()
	e.logger.DebugContext(ctx, "auth: permission denied",
		"login", user.Login,
		"required", required,
	)
	err := kiterr.Newf(kiterr.CodeInsufficientPermissions,
		"auth: missing required permissions: %s", strings.Join(required, ", "),
	).WithFields(map[string][]string{"permissions": required})
	finishSpan(span, err)
	return err
}

// RequirePermissions returns route middleware that rejects requests whose
// authenticated user does not hold every one of the given permission codes.
// It must run after [Middleware.Handler].
func (e *Enforcer) RequirePermissions(codes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				e.writer.WriteError(w, r, kiterr.Unauthorized("auth: authentication is required"))
				return
			}
			if err := e.Check(r.Context(), user, codes...); err != nil {
				e.writer.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// dedupe returns the distinct non-empty codes, preserving first-seen order.
func dedupe(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

// subtract returns the codes in required that are absent from granted.
func subtract(required, granted []string) []string {
	grantedSet := make(map[string]struct{}, len(granted))
	for _, g := range granted {
		grantedSet[g] = struct{}{}
	}
	var missing []string
	for _, code := range required {
		if _, ok := grantedSet[code]; !ok {
			missing = append(missing, code)
		}
	}
	return missing
}
