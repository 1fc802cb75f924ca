// Package grpc exposes short link resolution and statistics over gRPC.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/emarzona/shortlinks/internal/app/service"
	"github.com/emarzona/shortlinks/internal/intercepters"
	pb "github.com/emarzona/shortlinks/proto"
)

// Full method names, as seen by interceptors.
const (
	ResolveMethod = pb.ShortLinkService_Resolve_FullMethodName
	StatsMethod   = pb.ShortLinkService_Stats_FullMethodName
)

// Server wraps the gRPC server and its dependencies.
type Server struct {
	grpcServer *grpc.Server
	addr       string
	logger     *zap.Logger
}

// New builds a gRPC server. Stats calls are restricted to trustedSubnet when
// it is set and require an operator token when auth is not nil.
func New(svc service.LinkServiceIface, auth service.AuthIface, trustedSubnet string, logger *zap.Logger, addr string) *Server {
	interceptors := []grpc.UnaryServerInterceptor{
		recovery.UnaryServerInterceptor(recovery.WithRecoveryHandler(func(p any) error {
			logger.Error("recovered from panic in gRPC handler", zap.Any("panic", p))
			return status.Error(codes.Internal, "internal error")
		})),
		logging.UnaryServerInterceptor(intercepters.InterceptorLogger(logger), logging.WithLogOnEvents(logging.FinishCall)),
		intercepters.SubnetIPInterceptor,
	}
	if trustedSubnet != "" {
		interceptors = append(interceptors, intercepters.WithTrustedSubnet(trustedSubnet, StatsMethod))
	}
	if auth != nil {
		interceptors = append(interceptors, intercepters.WithJWT(auth, StatsMethod))
	}

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	pb.RegisterShortLinkServiceServer(s, &ShortLinkServer{Service: svc})

	return &Server{
		grpcServer: s,
		addr:       addr,
		logger:     logger,
	}
}

// Start listens on the configured address and serves until stopped.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.logger.Error("gRPC server failed to listen", zap.String("addr", s.addr), zap.Error(err))
		return err
	}

	return s.Serve(lis)
}

// Serve accepts connections on lis until the server is stopped.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
	if err := s.grpcServer.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// GracefulStop shuts down the server gracefully.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// ShortLinkServer implements pb.ShortLinkServiceServer on top of the link service.
type ShortLinkServer struct {
	pb.UnimplementedShortLinkServiceServer
	Service service.LinkServiceIface
}

func (s *ShortLinkServer) Resolve(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	target, err := s.Service.Resolve(ctx, req.GetValue())
	if err != nil {
		return nil, statusFromError(err)
	}

	return wrapperspb.String(target), nil
}

func (s *ShortLinkServer) Stats(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	stats, err := s.Service.Stats(ctx, req.GetValue())
	if err != nil {
		return nil, statusFromError(err)
	}

	fields := map[string]interface{}{
		"code":         stats.Code,
		"target_url":   stats.TargetURL,
		"is_active":    stats.IsActive,
		"total_clicks": stats.TotalClicks,
		"created_at":   stats.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if stats.ExpiresAt != nil {
		fields["expires_at"] = stats.ExpiresAt.UTC().Format(time.RFC3339Nano)
	}
	if stats.LastUsedAt != nil {
		fields["last_used_at"] = stats.LastUsedAt.UTC().Format(time.RFC3339Nano)
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func statusFromError(err error) error {
	kind := service.KindOf(err)

	switch kind {
	case service.KindNotFound:
		return status.Error(codes.NotFound, kind.UserMessage())
	case service.KindExpired:
		return status.Error(codes.FailedPrecondition, kind.UserMessage())
	default:
		return status.Error(codes.Unavailable, kind.UserMessage())
	}
}
