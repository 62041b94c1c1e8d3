package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/solarauth/internal/common"
	"github.com/dmitrijs2005/solarauth/internal/logging"
	pb "github.com/dmitrijs2005/solarauth/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newTestServer() *GRPCServer {
	return NewGRPCServer("", logging.Nop(), &fakeUsers{}, &fakeAuthz{})
}

func TestTokenFromMetadata(t *testing.T) {
	tests := []struct {
		name string
		md   metadata.MD
		want string
	}{
		{"none", nil, ""},
		{"access_token", metadata.Pairs(common.AccessTokenHeaderName, "abc"), "abc"},
		{"bearer", metadata.Pairs(common.AuthorizationHeaderName, "Bearer abc"), "abc"},
		{"bearer lowercase", metadata.Pairs(common.AuthorizationHeaderName, "bearer abc"), "abc"},
		{"basic ignored", metadata.Pairs(common.AuthorizationHeaderName, "Basic abc"), ""},
		{"bare bearer", metadata.Pairs(common.AuthorizationHeaderName, "Bearer "), ""},
		{
			"access_token wins",
			metadata.Pairs(common.AccessTokenHeaderName, "one", common.AuthorizationHeaderName, "Bearer two"),
			"one",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tt.md)
			}
			assert.Equal(t, tt.want, tokenFromMetadata(ctx))
		})
	}
}

func TestInterceptor_PublicMethod_AllowsWithoutToken(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_Login_FullMethodName}

	called := false
	h := func(ctx context.Context, req any) (any, error) {
		called = true
		_, ok := UserFromContext(ctx)
		assert.False(t, ok)
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", resp)
}

func TestInterceptor_Protected_MissingToken(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_Whoami_FullMethodName}

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	st := status.Convert(err)
	assert.Equal(t, codes.Unauthenticated, st.Code())
	assert.Equal(t, "missing token", st.Message())
}

func TestInterceptor_Protected_ValidToken_SetsUser(t *testing.T) {
	s := newTestServer()
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, "good"))
	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_UserCan_FullMethodName}

	h := func(ctx context.Context, req any) (any, error) {
		u, ok := UserFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, bob, u)
		return "ok", nil
	}

	_, err := s.accessTokenInterceptor(ctx, nil, info, h)
	require.NoError(t, err)
}

func TestRequestLogInterceptor_SetsRequestID(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: pb.AuthService_Login_FullMethodName}

	var got string
	h := func(ctx context.Context, req any) (any, error) {
		got = RequestIDFromContext(ctx)
		return nil, nil
	}

	_, err := s.requestLogInterceptor(context.Background(), nil, info, h)
	require.NoError(t, err)
	assert.Len(t, got, 36)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.RequestIDHeaderName, "abc"))
	_, err = s.requestLogInterceptor(ctx, nil, info, h)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}
