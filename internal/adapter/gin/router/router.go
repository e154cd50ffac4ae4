package router

import (
	"net/http"
	"time"

	"user-service/internal/adapter/gin/handler"
	"user-service/internal/adapter/gin/middleware"
	"user-service/internal/adapter/ratelimit"
	"user-service/pkg/logger"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options holds the optional pieces of the router.
type Options struct {
	ServiceName string
	RateLimiter *ratelimit.Limiter
	Metrics     *middleware.Metrics
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(userHandler *handler.UserHandler, opts Options, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(ginzap.GinzapWithConfig(log, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/health"},
		Context: func(c *gin.Context) []zap.Field {
			return []zap.Field{zap.String("request_id", logger.GetRequestID(c.Request.Context()))}
		},
	}))
	router.Use(ginzap.RecoveryWithZap(log, true))
	router.Use(cors.Default())
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Handler())
	}
	router.Use(middleware.RateLimiter(opts.RateLimiter))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": opts.ServiceName,
		})
	})

	users := router.Group("/user")
	{
		users.GET("/all", userHandler.GetAllUsers)
		users.GET("/:id", userHandler.GetUserByID)
		users.POST("", userHandler.CreateUser)
	}

	return router
}
