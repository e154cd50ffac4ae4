package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-service/internal/adapter/ratelimit"
	"user-service/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID_Generated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())

	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = logger.GetRequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(logger.RequestIDHeader))
}

func TestRequestID_Propagated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())

	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = logger.GetRequestID(c.Request.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(logger.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", w.Header().Get(logger.RequestIDHeader))
}

func TestMetrics_RecordsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/user/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, p := range []string{"/user/1", "/user/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	assert.Equal(t, 2.0, counterValue(t, m.requests.WithLabelValues("/user/:id", "GET", "200")))
	assert.Equal(t, 1.0, counterValue(t, m.requests.WithLabelValues("unmatched", "GET", "404")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{"http_requests_total", "http_request_duration_seconds"}, names)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, c.Write(&metric))
	return metric.GetCounter().GetValue()
}

func TestRateLimiter(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		r := gin.New()
		r.Use(RateLimiter(nil))
		r.GET("/user/all", func(c *gin.Context) { c.Status(http.StatusOK) })

		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/all", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("Exceeded", func(t *testing.T) {
		limiter := ratelimit.New(nil, ratelimit.Config{
			RequestsPerSecond: 0.001,
			BurstCapacity:     2,
			Enabled:           true,
		}, zaptest.NewLogger(t))

		r := gin.New()
		r.Use(RateLimiter(limiter))
		r.GET("/user/all", func(c *gin.Context) { c.Status(http.StatusOK) })

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/all", nil))
			codes = append(codes, w.Code)
			if w.Code == http.StatusTooManyRequests {
				assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
			}
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})
}
