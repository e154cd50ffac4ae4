package server

import (
	grpcadapter "user-service/internal/adapter/grpc"
	"user-service/internal/adapter/grpc/middleware"
	"user-service/internal/adapter/ratelimit"
	"user-service/pkg/logger"

	"go.uber.org/zap"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// SetupGRPC creates and configures the gRPC server
func SetupGRPC(svc grpcadapter.UserServiceHandler, rateLimiter *ratelimit.Limiter, l *zap.Logger) *grpc.Server {
	// Create gRPC server with request ID and rate limit interceptors
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			middleware.RateLimit(rateLimiter, l),
		),
	)
	grpcadapter.Register(grpcServer, svc)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(grpcadapter.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	reflection.Register(grpcServer)

	return grpcServer
}
