package grpc

import (
	"context"
	"net"
	"time"

	pb "github.com/dmitrijs2005/credkeeper/internal/api/credentialv1"
	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// CredentialService is what the transport needs from the service layer.
type CredentialService interface {
	Verify(ctx context.Context, credType models.CredentialType, nameOrEmail, secret string) (*models.SanitizedCredential, error)
	ChangePassword(ctx context.Context, userID string, oldSecret *string, newSecret string) error
	IssueAccessToken(userID string) (string, error)
}

type GRPCServer struct {
	pb.UnimplementedCredentialServiceServer
	address     string
	credentials CredentialService
	logger      logging.Logger
	jwtSecret   []byte
	now         func() time.Time
}

func NewGRPCServer(a string, l logging.Logger, cs CredentialService, secretKey string) (*GRPCServer, error) {
	return &GRPCServer{
		address:     a,
		logger:      l.With("module", "grpc_server"),
		credentials: cs,
		jwtSecret:   []byte(secretKey),
		now:         time.Now,
	}, nil
}

func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.requestLogInterceptor, s.accessTokenInterceptor))

	pb.RegisterCredentialServiceServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv, hs
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then drains in-flight
// calls and returns.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv, hs := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
