package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/slothapp/internal/logging"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := NewHealthServer("", logging.Nop(), &fakePinger{}, 0)
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	called := false
	resp, err := s.loggingInterceptor(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
		called = true
		assert.Equal(t, "req", req)
		return "ok", nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", resp)

	_, err = s.loggingInterceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.Unavailable, "down")
	})
	assert.Equal(t, codes.Unavailable, status.Code(err))
}
