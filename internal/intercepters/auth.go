package intercepters

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/emarzona/shortlinks/internal/app/service"
)

type contextKey string

const (
	// RealIPKey holds the x-real-ip metadata value.
	RealIPKey contextKey = "real-ip"
	// SubjectKey holds the subject of a verified operator token.
	SubjectKey contextKey = "subject"
)

func guarded(methods []string, fullMethod string) bool {
	for _, m := range methods {
		if m == fullMethod {
			return true
		}
	}
	return false
}

// WithJWT requires a "Bearer <token>" authorization metadata entry on the
// given full method names. Other methods pass through untouched.
func WithJWT(auth service.AuthIface, methods ...string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !guarded(methods, info.FullMethod) {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		values := md.Get("authorization")
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		tokenString, found := strings.CutPrefix(values[0], "Bearer ")
		if !found {
			return nil, status.Error(codes.Unauthenticated, "authorization must use the Bearer scheme")
		}

		claims, err := auth.ParseRawJWT(tokenString)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "invalid JWT: %v", err)
		}

		return handler(context.WithValue(ctx, SubjectKey, claims.Subject), req)
	}
}
