// Package api provides the REST API router.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/HappyEnt/flooja-cau-testbed/internal/api/handlers"
	"github.com/HappyEnt/flooja-cau-testbed/internal/parser"
	"github.com/HappyEnt/flooja-cau-testbed/internal/storage"
	"github.com/HappyEnt/flooja-cau-testbed/pkg/config"
)

// RouterConfig configures the API router.
type RouterConfig struct {
	// Plot holds the plot and resolution defaults of the handlers
	Plot handlers.Config

	// Gpio and Serial are the event logs of the measurement, nil when not loaded
	Gpio   *parser.GpioEvents
	Serial *parser.SerialLog

	// Logger receives one access line per request
	Logger *zap.Logger

	// Registry collects the metrics served at /metrics; a fresh one is used when nil
	Registry *prometheus.Registry
}

// DefaultRouterConfig returns a router config with sensible defaults.
func DefaultRouterConfig() RouterConfig {
	return NewRouterConfig(config.Default().API)
}

// NewRouterConfig derives the router config from the API settings.
func NewRouterConfig(cfg config.APIConfig) RouterConfig {
	return RouterConfig{
		Plot: handlers.Config{
			DefaultWidth:  cfg.DefaultWidth,
			DefaultHeight: cfg.DefaultHeight,
			MaxWidth:      cfg.MaxWidth,
			MaxCurrent:    cfg.MaxCurrent,
		},
	}
}

// NewRouter creates a new mux router with all routes configured.
func NewRouter(store storage.TraceStore, config RouterConfig) *mux.Router {
	router := mux.NewRouter()

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := config.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	reg.MustRegister(newStoreCollector(store))
	router.Use(instrument(logger, newHTTPMetrics(reg)))

	// Create handler
	handler := handlers.NewHandler(store, config.Plot).WithEvents(config.Gpio, config.Serial)

	// Health check endpoints for Kubernetes probes
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := store.Nodes(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	// Prometheus metrics
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// Swagger UI
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// GET /api/v1/nodes - List all nodes
	api.HandleFunc("/nodes", handler.ListNodes).Methods(http.MethodGet)

	// GET /api/v1/nodes/{id} - Get trace information for a node
	api.HandleFunc("/nodes/{id}", handler.GetNode).Methods(http.MethodGet)

	// GET /api/v1/nodes/{id}/interpolate - Current at one point in time
	api.HandleFunc("/nodes/{id}/interpolate", handler.Interpolate).Methods(http.MethodGet)

	// GET /api/v1/nodes/{id}/average - Mean current over a window
	api.HandleFunc("/nodes/{id}/average", handler.Average).Methods(http.MethodGet)

	// GET /api/v1/nodes/{id}/samples - Downsampled samples covering a window
	api.HandleFunc("/nodes/{id}/samples", handler.Samples).Methods(http.MethodGet)

	// GET /api/v1/nodes/{id}/plot.png - Rendered current plot
	api.HandleFunc("/nodes/{id}/plot.png", handler.Plot).Methods(http.MethodGet)

	// GET /api/v1/gpio - GPIO level changes of one pin
	api.HandleFunc("/gpio", handler.ListGpio).Methods(http.MethodGet)

	// GET /api/v1/serial - Serial output
	api.HandleFunc("/serial", handler.ListSerial).Methods(http.MethodGet)

	// GET /api/v1/stats - Get storage statistics
	api.HandleFunc("/stats", handler.GetStats).Methods(http.MethodGet)

	return router
}
