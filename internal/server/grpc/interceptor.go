package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/solarauth/internal/common"
	pb "github.com/dmitrijs2005/solarauth/internal/proto"
	"github.com/dmitrijs2005/solarauth/internal/server/models"
	"github.com/dmitrijs2005/solarauth/internal/server/permissions"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	userKey      ctxKey = "user"
	requestIDKey ctxKey = "requestID"
)

// protectedMethods require a valid access token.
var protectedMethods = map[string]bool{
	pb.AuthService_Whoami_FullMethodName:  true,
	pb.AuthService_UserCan_FullMethodName: true,
}

// UserFromContext returns the user authenticated by accessTokenInterceptor.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// RequestIDFromContext returns the id assigned by requestLogInterceptor.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func firstMD(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

// tokenFromMetadata reads access_token, falling back to "authorization: Bearer".
func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if t := firstMD(md, common.AccessTokenHeaderName); t != "" {
		return t
	}
	auth := firstMD(md, common.AuthorizationHeaderName)
	if len(auth) > len("bearer ") && strings.EqualFold(auth[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(auth[len("bearer "):])
	}
	return ""
}

func (s *GRPCServer) requestLogInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	var requestID string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		requestID = firstMD(md, common.RequestIDHeaderName)
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	_ = grpc.SetHeader(ctx, metadata.Pairs(common.RequestIDHeaderName, requestID))

	start := time.Now()
	resp, err := handler(ctx, req)

	s.logger.Info(ctx, "request",
		"request_id", requestID,
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
	)
	return resp, err
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	ctx = permissions.WithScope(ctx)

	if protectedMethods[info.FullMethod] {

		accessToken := tokenFromMetadata(ctx)
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		user, ok := s.authz.Verify(ctx, accessToken)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		ctx = context.WithValue(ctx, userKey, user)
	}

	return handler(ctx, req)
}
