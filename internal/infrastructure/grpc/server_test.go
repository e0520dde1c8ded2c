package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/semo-partner/internal/config"
	domainErrors "github.com/wekeepgrowing/semo-partner/internal/domain/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startBufServer(t *testing.T) (*Server, healthpb.HealthClient) {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := NewServer(&config.GRPCConfig{Port: 9090}, "partner", zap.NewNop())
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return srv, healthpb.NewHealthClient(conn)
}

func TestServer_HealthLifecycle(t *testing.T) {
	srv, client := startBufServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "partner"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	_, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "unknown"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	require.NoError(t, srv.Shutdown(ctx))
}

func TestUnaryErrorInterceptor(t *testing.T) {
	interceptor := UnaryErrorInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/partner.Team/Join"}

	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"success", nil, codes.OK},
		{"team full", domainErrors.NewTeamFullError(3, 5), codes.ResourceExhausted},
		{"not found", domainErrors.NewTeamNotFoundError(3), codes.NotFound},
		{"validation", domainErrors.NewValidationError("bad"), codes.InvalidArgument},
		{"unauthenticated", domainErrors.NewNotAuthenticatedError(), codes.Unauthenticated},
		{"status passthrough", status.Error(codes.Aborted, "aborted"), codes.Aborted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
				return nil, tt.err
			})
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}
