package interceptor

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"interaction-service/pkg/jwt"
)

// ContextKey type for context keys
type ContextKey string

const (
	UserIDKey ContextKey = "user_id"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// AuthInterceptor provides gRPC interceptor for JWT authentication
type AuthInterceptor struct {
	verifier      TokenVerifier
	publicMethods map[string]bool
}

// NewAuthInterceptor creates a new auth interceptor with public methods
func NewAuthInterceptor(verifier TokenVerifier, publicMethods []string) *AuthInterceptor {
	methodMap := make(map[string]bool)
	for _, method := range publicMethods {
		methodMap[method] = true
	}

	return &AuthInterceptor{
		verifier:      verifier,
		publicMethods: methodMap,
	}
}

// Unary returns a server interceptor function to authenticate and authorize unary RPC
func (interceptor *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if interceptor.publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		userID, err := interceptor.authorize(ctx)
		if err != nil {
			return nil, err
		}

		return handler(context.WithValue(ctx, UserIDKey, userID), req)
	}
}

// authorize verifies the JWT token and returns the user ID
func (interceptor *AuthInterceptor) authorize(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "metadata is not provided")
	}

	values := md["authorization"]
	if len(values) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization token is not provided")
	}

	token := values[0]
	if !strings.HasPrefix(token, "Bearer ") {
		return "", status.Error(codes.Unauthenticated, "invalid authorization format")
	}
	token = strings.TrimPrefix(token, "Bearer ")

	claims, err := interceptor.verifier.Verify(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", status.Error(codes.Unauthenticated, "token expired")
		}
		return "", status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
	}

	return claims.UserID, nil
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok || userID == "" {
		return "", errors.New("user ID not found in context")
	}
	return userID, nil
}
