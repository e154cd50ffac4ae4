package middleware

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"user-service/internal/adapter/ratelimit"
	"user-service/pkg/logger"
)

// RateLimit returns a gRPC unary interceptor that limits requests per
// method and client IP.
func RateLimit(limiter *ratelimit.Limiter, log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if !limiter.Enabled() {
			return handler(ctx, req)
		}

		clientIP := clientIP(ctx)
		key := fmt.Sprintf("%s:%s", info.FullMethod, clientIP)

		if !limiter.Allow(ctx, key) {
			cfg := limiter.Config()
			logger.WithContext(ctx, log).Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
			)
			return nil, status.Errorf(codes.ResourceExhausted,
				"rate limit exceeded: %.2f requests/second (burst capacity: %d)",
				cfg.RequestsPerSecond, cfg.BurstCapacity)
		}

		return handler(ctx, req)
	}
}

// clientIP extracts the client IP address from the gRPC context.
func clientIP(ctx context.Context) string {
	// Proxies forward the original address in metadata
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if xff := md.Get("x-forwarded-for"); len(xff) > 0 {
			return xff[0]
		}
		if xri := md.Get("x-real-ip"); len(xri) > 0 {
			return xri[0]
		}
	}

	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}

	return "unknown"
}
