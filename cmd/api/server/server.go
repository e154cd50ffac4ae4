package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	ginhandler "user-service/internal/adapter/gin/handler"
	ginmiddleware "user-service/internal/adapter/gin/middleware"
	ginrouter "user-service/internal/adapter/gin/router"
	grpcadapter "user-service/internal/adapter/grpc"
	"user-service/internal/adapter/ratelimit"
	"user-service/internal/config"
)

// Deps are the adapters the servers expose.
type Deps struct {
	UserHandler *ginhandler.UserHandler
	UserService grpcadapter.UserServiceHandler
	RateLimiter *ratelimit.Limiter
	Registry    *prometheus.Registry
	HTTPMetrics *ginmiddleware.Metrics
}

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	Gin    *http.Server // REST API
	HTTP   *http.Server // metrics and swagger
	GRPC   *grpc.Server // nil when GRPC_ENABLED is false
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, deps Deps) *Server {
	s := &Server{
		Config: cfg,
		Logger: l,
		Gin: SetupGinServer(deps.UserHandler, ginrouter.Options{
			ServiceName: cfg.Logger.ServiceName,
			RateLimiter: deps.RateLimiter,
			Metrics:     deps.HTTPMetrics,
		}, ":"+cfg.App.HTTPPort, l),
		HTTP: SetupOpsServer(deps.Registry, ":"+cfg.App.MetricsPort, l),
	}
	if cfg.App.GRPCEnabled {
		s.GRPC = SetupGRPC(deps.UserService, deps.RateLimiter, l)
	}
	return s
}

// Start runs all servers and blocks until all of them are shut down. When one
// server fails the others are closed and its error is returned.
func (s *Server) Start() error {
	var (
		g        errgroup.Group
		stopOnce sync.Once
	)

	run := func(name string, serve func() error) {
		g.Go(func() error {
			if err := serve(); err != nil {
				stopOnce.Do(s.stopAll)
				return fmt.Errorf("failed to start %s: %w", name, err)
			}
			return nil
		})
	}

	if s.GRPC != nil {
		run("gRPC server", s.startGRPC)
	}

	run("Gin server", func() error { return serveHTTP(s.Gin) })
	s.Logger.Info("Gin REST API running", zap.String("address", s.Gin.Addr))

	run("ops server", func() error { return serveHTTP(s.HTTP) })
	s.Logger.Info("ops server running", zap.String("address", s.HTTP.Addr))

	return g.Wait()
}

// stopAll closes every server immediately.
func (s *Server) stopAll() {
	if err := s.Gin.Close(); err != nil {
		s.Logger.Warn("failed to close Gin server", zap.Error(err))
	}
	if err := s.HTTP.Close(); err != nil {
		s.Logger.Warn("failed to close ops server", zap.Error(err))
	}
	if s.GRPC != nil {
		s.GRPC.Stop()
	}
}

// startGRPC starts the gRPC server
func (s *Server) startGRPC() error {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(context.Background(), "tcp", s.grpcAddress())
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.Logger.Info("gRPC server running", zap.String("address", s.grpcAddress()))
	return s.GRPC.Serve(lis)
}

// grpcAddress returns the gRPC server address
func (s *Server) grpcAddress() string {
	return ":" + s.Config.App.GRPCPort
}

func serveHTTP(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
