package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"user-service/api/swagger"
)

// SetupOpsHandler serves Prometheus metrics and the Swagger UI.
func SetupOpsHandler(reg *prometheus.Registry, l *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(l),
		Registry: reg,
	}))

	// Serve the swagger JSON file
	mux.HandleFunc("/swagger/user.swagger.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(swagger.UserSpec)
	})

	// Serve Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/user.swagger.json"),
	))

	return mux
}

// SetupOpsServer creates the HTTP server for metrics and API docs
func SetupOpsServer(reg *prometheus.Registry, addr string, l *zap.Logger) *http.Server {
	l.Info("ops server configured", zap.String("address", addr))
	l.Info("Swagger UI available at", zap.String("url", "http://localhost"+addr+"/swagger/index.html"))

	return &http.Server{
		Addr:              addr,
		Handler:           SetupOpsHandler(reg, l),
		ReadHeaderTimeout: 2 * time.Second,
	}
}
