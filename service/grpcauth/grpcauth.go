// Package grpcauth guards selected gRPC services with basic auth. Health
// checks stay open so probes work without credentials.
package grpcauth

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// protectedServicePaths defines the gRPC service paths that require authentication
var protectedServicePaths = []string{
	"/grpc.reflection.",
}

// requiresAuthentication checks if a method requires authentication
func requiresAuthentication(fullMethod string) bool {
	for _, path := range protectedServicePaths {
		if strings.HasPrefix(fullMethod, path) {
			return true
		}
	}
	return false
}

// validateCredentials extracts and validates credentials from the context metadata
func validateCredentials(ctx context.Context, fullMethod, username, password string) error {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		slog.WarnContext(ctx, "Missing metadata in request", "method", fullMethod)
		return status.Error(codes.Unauthenticated, "missing metadata")
	}

	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		slog.WarnContext(ctx, "Missing authorization header", "method", fullMethod)
		return status.Error(codes.Unauthenticated, "missing authorization header")
	}

	auth := authHeaders[0]
	if !strings.HasPrefix(auth, "Basic ") {
		slog.WarnContext(ctx, "Invalid authorization header format", "method", fullMethod)
		return status.Error(codes.Unauthenticated, "invalid authorization header")
	}

	payload, err := base64.StdEncoding.DecodeString(auth[len("Basic "):])
	if err != nil {
		slog.WarnContext(ctx, "Failed to decode authorization header", "method", fullMethod, "error", err)
		return status.Error(codes.Unauthenticated, "invalid authorization header")
	}

	user, pass, ok := strings.Cut(string(payload), ":")
	if !ok {
		slog.WarnContext(ctx, "Invalid credentials format", "method", fullMethod)
		return status.Error(codes.Unauthenticated, "invalid credentials format")
	}

	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
	if !userOK || !passOK {
		slog.WarnContext(ctx, "Invalid credentials", "method", fullMethod)
		return status.Error(codes.Unauthenticated, "invalid credentials")
	}

	slog.DebugContext(ctx, "Authentication successful", "method", fullMethod, "username", user)
	return nil
}

// SelectiveInterceptor creates a gRPC unary server interceptor that only
// authenticates the protected services.
func SelectiveInterceptor(enabled bool, username, password string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if !enabled || !requiresAuthentication(info.FullMethod) {
			return handler(ctx, req)
		}
		if err := validateCredentials(ctx, info.FullMethod, username, password); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// SelectiveStreamInterceptor is the streaming counterpart of SelectiveInterceptor.
// Reflection is a bidirectional stream, so this is the one that guards it.
func SelectiveStreamInterceptor(enabled bool, username, password string) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if !enabled || !requiresAuthentication(info.FullMethod) {
			return handler(srv, ss)
		}
		if err := validateCredentials(ss.Context(), info.FullMethod, username, password); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}
