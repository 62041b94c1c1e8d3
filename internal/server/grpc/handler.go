package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/solarauth/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errInternal = status.Error(codes.Internal, "internal error")

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.Token, error) {

	token, err := s.users.Login(ctx, req.Login, req.Password)
	if err != nil {
		s.logger.Error(ctx, "login failed", "request_id", RequestIDFromContext(ctx), "error", err)
		return nil, errInternal
	}

	if token.Empty() {
		s.logger.Info(ctx, "Login rejected", "login", req.Login)
	}
	return &pb.Token{Data: token.Data}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {

	s.logger.Info(ctx, "Registration request", "login", req.Login)

	result, err := s.users.Register(ctx, req.Login, req.Password, req.Title)
	if err != nil {
		s.logger.Error(ctx, "registration failed", "request_id", RequestIDFromContext(ctx), "error", err)
		return nil, errInternal
	}

	if result.Success {
		s.logger.Info(ctx, "Registered", "login", req.Login)
	}
	return &pb.RegisterResponse{
		Success:      result.Success,
		TokenData:    result.TokenData,
		ErrorMessage: result.ErrorMessage,
	}, nil
}

func (s *GRPCServer) Authorise(ctx context.Context, req *pb.Token) (*pb.Token, error) {

	token, err := s.authz.Authorise(ctx, req.Data)
	if err != nil {
		s.logger.Error(ctx, "authorise failed", "request_id", RequestIDFromContext(ctx), "error", err)
		return nil, errInternal
	}

	return &pb.Token{Data: token.Data}, nil
}

func (s *GRPCServer) Whoami(ctx context.Context, _ *pb.WhoamiRequest) (*pb.User, error) {

	user, ok := UserFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	return &pb.User{Id: user.ID, Login: user.Login, Title: user.Title}, nil
}

func (s *GRPCServer) UserCan(ctx context.Context, req *pb.UserCanRequest) (*pb.UserCanResponse, error) {

	user, ok := UserFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	return &pb.UserCanResponse{Allowed: s.authz.UserCan(ctx, user, req.Permission)}, nil
}
