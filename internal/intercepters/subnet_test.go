package intercepters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/emarzona/shortlinks/internal/intercepters"
)

func TestSubnetIPInterceptor(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-real-ip", "10.0.0.7"))

	var got interface{}
	_, err := intercepters.SubnetIPInterceptor(ctx, nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, req interface{}) (interface{}, error) {
		got = ctx.Value(intercepters.RealIPKey)
		return nil, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", got)
}

func TestWithTrustedSubnet(t *testing.T) {
	ok := func(ctx context.Context, req interface{}) (interface{}, error) { return "ok", nil }

	tests := []struct {
		name     string
		subnet   string
		method   string
		realIP   string
		wantCode codes.Code
	}{
		{name: "unguarded", subnet: "10.0.0.0/8", method: "/shortlinks.v1.ShortLinkService/Resolve", wantCode: codes.OK},
		{name: "inside", subnet: "10.0.0.0/8", method: statsMethod, realIP: "10.1.2.3", wantCode: codes.OK},
		{name: "outside", subnet: "10.0.0.0/8", method: statsMethod, realIP: "192.168.1.1", wantCode: codes.PermissionDenied},
		{name: "no ip", subnet: "10.0.0.0/8", method: statsMethod, wantCode: codes.PermissionDenied},
		{name: "not configured", subnet: "", method: statsMethod, realIP: "10.1.2.3", wantCode: codes.PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.realIP != "" {
				ctx = context.WithValue(ctx, intercepters.RealIPKey, tt.realIP)
			}

			_, err := intercepters.WithTrustedSubnet(tt.subnet, statsMethod)(ctx, nil, &grpc.UnaryServerInfo{FullMethod: tt.method}, ok)
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}
}
