package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-service/cmd/api/infrastructure"
	"user-service/internal/adapter/cache"
	"user-service/internal/adapter/db/gormdb"
	ginhandler "user-service/internal/adapter/gin/handler"
	ginmiddleware "user-service/internal/adapter/gin/middleware"
	grpcadapter "user-service/internal/adapter/grpc"
	"user-service/internal/adapter/ratelimit"
	"user-service/internal/adapter/repository/cached"
	"user-service/internal/adapter/repository/memory"
	"user-service/internal/config"
	"user-service/internal/usecase/user"
	redisclient "user-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	UserUC      user.Usecase
	RateLimiter *ratelimit.Limiter
	GinHandler  *ginhandler.UserHandler
	GRPCService *grpcadapter.UserServiceServer
	Registry    *prometheus.Registry
	HTTPMetrics *ginmiddleware.Metrics
}

// Option customizes the container.
type Option func(*options)

type options struct {
	clock user.Clock
}

// WithClock sets the clock used to assign user ids.
func WithClock(c user.Clock) Option {
	return func(o *options) { o.clock = c }
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger, opts ...Option) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{Config: cfg, Logger: l}

	repo, err := c.newRepository()
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	// Redis backs the cache and the distributed rate limiter
	if cfg.Redis.Enabled {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.RedisClient = rdb

		// A shared cache would outlive the process-local memory store and
		// keep serving users it no longer holds.
		if cfg.Storage.Driver != "memory" {
			userCache := cache.NewRedisUserCache(
				rdb.Client,
				time.Duration(cfg.Redis.CacheTTL)*time.Second,
				l,
			)
			repo = cached.NewUserRepository(repo, userCache, l)
		} else {
			l.Info("user cache disabled for memory storage; Redis is used for rate limiting only")
		}
	}

	c.UserUC = user.New(repo, l, user.WithClock(o.clock))

	c.RateLimiter = ratelimit.New(c.redis(), ratelimit.Config{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstCapacity:     cfg.RateLimit.BurstCapacity,
		Enabled:           cfg.RateLimit.Enabled,
	}, l)

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.HTTPMetrics = ginmiddleware.NewMetrics(c.Registry)

	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)
	c.GRPCService = grpcadapter.NewUserServiceServer(c.UserUC, l)

	l.Info("container initialized",
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
	)

	return c, nil
}

func (c *Container) newRepository() (user.Repository, error) {
	if c.Config.Storage.Driver == "memory" {
		return memory.NewUserRepository(), nil
	}

	db, err := infrastructure.NewDatabase(c.Config, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db
	return gormdb.NewUserRepository(db, c.Logger), nil
}

func (c *Container) redis() *redis.Client {
	if c.RedisClient == nil {
		return nil
	}
	return c.RedisClient.Client
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
