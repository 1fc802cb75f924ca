package intercepters

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// SubnetIPInterceptor copies the x-real-ip metadata value into the context.
func SubnetIPInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if ips := md.Get("x-real-ip"); len(ips) > 0 {
			ctx = context.WithValue(ctx, RealIPKey, ips[0])
		}
	}
	return handler(ctx, req)
}

// WithTrustedSubnet rejects calls to the given methods unless the real ip
// stored by SubnetIPInterceptor falls within subnet (CIDR notation).
func WithTrustedSubnet(subnet string, methods ...string) grpc.UnaryServerInterceptor {
	_, trusted, parseErr := net.ParseCIDR(subnet)

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !guarded(methods, info.FullMethod) {
			return handler(ctx, req)
		}
		if parseErr != nil {
			return nil, status.Error(codes.PermissionDenied, "trusted subnet is not configured")
		}

		raw, _ := ctx.Value(RealIPKey).(string)
		ip := net.ParseIP(raw)
		if ip == nil || !trusted.Contains(ip) {
			return nil, status.Error(codes.PermissionDenied, "caller is outside the trusted subnet")
		}

		return handler(ctx, req)
	}
}
