package grpc

import (
	"context"
	"fmt"
	"net"

	"github.com/wekeepgrowing/semo-partner/internal/config"
	apperrors "github.com/wekeepgrowing/semo-partner/pkg/errors"
	"github.com/wekeepgrowing/semo-partner/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server hosts the gRPC health and reflection services of the partner service
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	config     *config.GRPCConfig
	service    string
	logger     *zap.Logger
}

func NewServer(cfg *config.GRPCConfig, service string, log *zap.Logger) *Server {
	s := &Server{
		config:  cfg,
		service: service,
		logger:  log,
	}

	s.grpcServer = grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.NewGrpcUnaryServerInterceptor(log),
			UnaryErrorInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			logger.NewGrpcStreamServerInterceptor(log),
			StreamErrorInterceptor(),
		),
	)

	s.health = health.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(service, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(s.grpcServer)
	return s
}

// RegisterService runs registerFunc against the underlying server
func (s *Server) RegisterService(registerFunc func(server *grpc.Server)) {
	registerFunc(s.grpcServer)
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(lis)
}

// Serve accepts connections on lis until the server stops
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("Starting gRPC server", zap.String("address", lis.Addr().String()))
	return s.grpcServer.Serve(lis)
}

// Shutdown marks the service NOT_SERVING and drains in-flight calls. When ctx
// expires first the server is stopped hard.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		s.logger.Warn("Forcing gRPC server stop")
		s.grpcServer.Stop()
		return ctx.Err()
	case <-stopped:
		s.logger.Info("gRPC server stopped")
		return nil
	}
}

// UnaryErrorInterceptor turns application errors into gRPC status errors
func UnaryErrorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		return resp, apperrors.ToGRPCError(err)
	}
}

func StreamErrorInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		return apperrors.ToGRPCError(handler(srv, ss))
	}
}
