// Package client is the gRPC client of the solarauth AuthService.
package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/solarauth/internal/common"
	pb "github.com/dmitrijs2005/solarauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.AuthServiceClient
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewAuthClient prepares a connection to endpointURL; no I/O happens until
// the first call. Extra dial options are appended after the defaults.
func NewAuthClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewAuthServiceClient(conn)
	return c, nil
}

// SetAccessToken sets the token attached to subsequent calls.
func (s *GRPCClient) SetAccessToken(token string) {
	s.accessToken = token
}

// Register creates an account. A rejected registration (bad input or a
// taken login) is not an error: inspect the response.
func (s *GRPCClient) Register(ctx context.Context, login string, password []byte, title string) (*pb.RegisterResponse, error) {
	req := &pb.RegisterRequest{Login: login, Password: string(password), Title: title}

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	if resp.Success {
		s.accessToken = resp.TokenData
	}
	return resp, nil
}

// Login returns a token for the credentials, or ErrUnauthorized.
func (s *GRPCClient) Login(ctx context.Context, login string, password []byte) (string, error) {
	req := &pb.LoginRequest{Login: login, Password: string(password)}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return "", s.mapError(err)
	}
	if resp.Data == "" {
		return "", ErrUnauthorized
	}

	s.accessToken = resp.Data
	return resp.Data, nil
}

// Authorise exchanges token for a fresh one, or returns ErrUnauthorized.
func (s *GRPCClient) Authorise(ctx context.Context, token string) (string, error) {
	resp, err := s.client.Authorise(ctx, &pb.Token{Data: token})
	if err != nil {
		return "", s.mapError(err)
	}
	if resp.Data == "" {
		return "", ErrUnauthorized
	}
	return resp.Data, nil
}

func (s *GRPCClient) Whoami(ctx context.Context) (*pb.User, error) {
	resp, err := s.client.Whoami(ctx, &pb.WhoamiRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) UserCan(ctx context.Context, permission string) (bool, error) {
	resp, err := s.client.UserCan(ctx, &pb.UserCanRequest{Permission: permission})
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.Allowed, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
