package grpc

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/dmitrijs2005/securevault/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const healthServicePrefix = "/grpc.health.v1.Health/"

// serviceTokenInterceptor admits only callers presenting the shared gateway
// token. Health checks are open.
func (s *Server) serviceTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if strings.HasPrefix(info.FullMethod, healthServicePrefix) {
		return handler(ctx, req)
	}

	var token string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.GatewayTokenHeaderName); len(values) > 0 {
			token = values[0]
		}
	}

	if len(token) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing service token")
	}

	if len(s.token) == 0 || subtle.ConstantTimeCompare([]byte(token), s.token) != 1 {
		s.logger.Warn(ctx, "rejected call with invalid service token", "method", info.FullMethod)
		return nil, status.Error(codes.Unauthenticated, "invalid service token")
	}

	return handler(ctx, req)
}
