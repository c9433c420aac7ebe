package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Outgoing identity propagation
// ---------------------------------------------------------------------------

// PropagatingRoundTripper wraps an [http.RoundTripper] to forward identity
// to downstream services over the internal API key scheme. It attaches the
// internal key and serializes the [UserContext] from the request context
// into the identity headers the API key authenticator reads on the other
// side.
//
// Example:
//
//	client := &http.Client{
//	    Transport: auth.NewPropagatingRoundTripper(cfg.InternalAPI.Key, http.DefaultTransport),
//	}
//	// Requests made with this client carry the caller's identity downstream.
//	resp, err := client.Do(req.WithContext(ctx))
type PropagatingRoundTripper struct {
	// key is the shared internal API key presented to downstream services.
	key Secret

	// wrapped is the underlying RoundTripper that performs the actual call.
	wrapped http.RoundTripper
}

// NewPropagatingRoundTripper creates a PropagatingRoundTripper that wraps
// the given transport. If transport is nil, [http.DefaultTransport] is used.
func NewPropagatingRoundTripper(key Secret, transport http.RoundTripper) *PropagatingRoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &PropagatingRoundTripper{
		key:     key,
		wrapped: transport,
	}
}

// RoundTrip executes the request with the internal API key and identity
// headers injected from the request context. If no user is present in the
// context, only the API key is attached.
//
// RoundTrip implements the [http.RoundTripper] interface.
func (t *PropagatingRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	// Clone the request to avoid mutating the original.
	clone := r.Clone(r.Context())
	clone.Header.Set(HeaderAPIKey, t.key.Value())

	user, ok := UserFromContext(r.Context())
	if !ok {
		return t.wrapped.RoundTrip(clone)
	}

	for header, value := range IdentityHeaders(user) {
		clone.Header.Set(header, value)
	}

	return t.wrapped.RoundTrip(clone)
}

// IdentityHeaders serializes a [UserContext] into the identity headers the
// API key authenticator reconstructs a user from. Empty fields are omitted.
func IdentityHeaders(user *UserContext) map[string]string {
	headers := make(map[string]string, 8)

	if user.IsSystemCall {
		headers[HeaderSystemCall] = "true"
		return headers
	}

	if id, err := user.UserID(); err == nil {
		headers[HeaderUserID] = id.String()
	}
	if user.Login != "" {
		headers[HeaderUserLogin] = user.Login
	}
	if user.DisplayName != "" {
		headers[HeaderUserDisplayName] = user.DisplayName
	}
	if partnerID, err := user.PartnerID(); err == nil && partnerID != uuid.Nil {
		headers[HeaderPartnerID] = partnerID.String()
	}
	if len(user.Roles) > 0 {
		headers[HeaderUserRoles] = strings.Join(user.Roles, ",")
	}
	if user.Auth.Type != MethodUnknown {
		headers[HeaderAuthType] = string(user.Auth.Type)
	}
	if user.Auth.ID != "" {
		headers[HeaderAuthID] = user.Auth.ID
	}
	if !user.Auth.ExpireAt.Equal(NeverExpires) {
		headers[HeaderAuthExp] = strconv.FormatInt(user.Auth.ExpireAt.Unix(), 10)
	}

	return headers
}
