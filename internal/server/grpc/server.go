package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/solarauth/internal/logging"
	pb "github.com/dmitrijs2005/solarauth/internal/proto"
	"github.com/dmitrijs2005/solarauth/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// UserService is the credential side of the server.
type UserService interface {
	Login(ctx context.Context, login, password string) (*models.Token, error)
	Register(ctx context.Context, login, password, title string) (*models.Register, error)
}

// Authorizer verifies tokens and answers permission questions.
type Authorizer interface {
	Verify(ctx context.Context, token string) (*models.User, bool)
	UserCan(ctx context.Context, user *models.User, title string) bool
	Authorise(ctx context.Context, token string) (*models.Token, error)
}

type GRPCServer struct {
	pb.UnimplementedAuthServiceServer
	address string
	users   UserService
	authz   Authorizer
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us UserService, az Authorizer) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		users:   us,
		authz:   az,
	}
}

// newServer builds the grpc.Server with interceptors, the auth service
// and the standard health service registered.
func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.requestLogInterceptor,
		s.accessTokenInterceptor,
	))

	pb.RegisterAuthServiceServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv, hs
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv, hs := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
