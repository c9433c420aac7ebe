// Package auth implements composite authentication resolution and
// authorization-context derivation for services built on the kit.
//
// Given an inbound request, the package decides which authentication scheme
// applies (JWT bearer vs. internal API key vs. system-internal call),
// validates the presented credential, derives a normalized [UserContext]
// from claims or trusted headers, and enforces declarative per-route
// permission requirements before the handler body runs.
//
// # Pipeline
//
// Within one request, the steps are strictly sequential:
//
//	SelectScheme → {BearerValidator | APIKeyAuthenticator} → NewUserContext
//	  → Enforcer (per-route permissions) → handler
//
// The [Middleware] type wires these steps into a standard net/http
// middleware; gRPC services use [UnaryServerInterceptor] and
// [StreamServerInterceptor] for the same bearer validation path.
//
// # Identities
//
// Three kinds of identity flow through the pipeline:
//
//   - Bearer identities: end users presenting an RS256-signed JWT in the
//     Authorization header. Claims are validated against the configured
//     issuer, audience, lifetime, and signing key.
//   - API-key identities: trusted gateways or sibling services presenting
//     the shared internal key in X-API-Key, optionally carrying a user
//     context in X-User-* headers.
//   - System identities: internal calls marked with X-System-Call or a
//     reserved path prefix. System contexts have no user identity; reading
//     UserID from one is a programming error and fails loudly.
//
// # Usage
//
//	keys, err := auth.LoadKeys(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath, logger)
//	if err != nil {
//	    return err // startup-fatal
//	}
//	bearer, err := auth.NewBearerValidator(cfg.JWT, keys, logger)
//	if err != nil {
//	    return err
//	}
//	apiKey := auth.NewAPIKeyAuthenticator(cfg.InternalAPI, logger)
//	mw := auth.NewMiddleware(bearer, apiKey, logger)
//
//	mux := http.NewServeMux()
//	mux.Handle("/api/orders", auth.RequirePermissions(enforcer, "orders.read")(ordersHandler))
//	http.ListenAndServe(":8080", mw.Handler(mux))
package auth
