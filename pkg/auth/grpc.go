package auth

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ---------------------------------------------------------------------------
// gRPC interceptors
// ---------------------------------------------------------------------------

// UnaryServerInterceptor returns a gRPC unary server interceptor that
// authenticates requests via the bearer token in the "authorization"
// metadata and places the resulting [UserContext] on the handler context.
//
// Requests without valid credentials receive a gRPC Unauthenticated error.
func UnaryServerInterceptor(validator *BearerValidator) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		ctx, err := authenticateGRPC(ctx, validator)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor returns a gRPC stream server interceptor applying
// the same authentication as [UnaryServerInterceptor], wrapping the stream
// to carry the enriched context.
func StreamServerInterceptor(validator *BearerValidator) grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		ctx, err := authenticateGRPC(ss.Context(), validator)
		if err != nil {
			return err
		}
		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: ctx})
	}
}

// authenticateGRPC validates the bearer token from incoming metadata and
// returns the context enriched with the authenticated [UserContext].
func authenticateGRPC(ctx context.Context, validator *BearerValidator) (context.Context, error) {
	if validator == nil {
		return ctx, status.Error(codes.Unauthenticated, "bearer authentication is not configured")
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx, status.Error(codes.Unauthenticated, "missing metadata")
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return ctx, status.Error(codes.Unauthenticated, "missing authorization metadata")
	}
	token := ExtractBearerToken(values[0])
	if token == "" {
		return ctx, status.Error(codes.Unauthenticated, "invalid authorization format")
	}

	claims, err := validator.Validate(ctx, token)
	if err != nil {
		return ctx, status.Error(codes.Unauthenticated, "token validation failed")
	}

	return ContextWithUser(ctx, NewUserContext(claims)), nil
}

// wrappedServerStream wraps a grpc.ServerStream to override its Context
// method. ServerStream.Context() returns the original stream context, which
// does not contain the user added by the interceptor.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context containing the authenticated user.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
