// API Gateway - REST API for testbed current traces
//
// @title           Testbed Trace API
// @version         1.0
// @description     REST API for querying current traces, GPIO events and serial output of testbed measurements.
//
// @host            localhost:8080
// @BasePath        /
//
// @schemes         http
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/HappyEnt/flooja-cau-testbed/internal/api"
	"github.com/HappyEnt/flooja-cau-testbed/internal/log"
	"github.com/HappyEnt/flooja-cau-testbed/internal/measurement"
	"github.com/HappyEnt/flooja-cau-testbed/internal/storage"
	"github.com/HappyEnt/flooja-cau-testbed/pkg/config"
	"github.com/HappyEnt/flooja-cau-testbed/pkg/models"

	_ "github.com/HappyEnt/flooja-cau-testbed/docs"
)

func main() {
	// Load configuration from the optional YAML file and environment variables
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	logger, err := log.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	log.SetLogger(logger)
	defer log.Sync()

	log.Info("starting API gateway",
		zap.String("host", cfg.API.Host),
		zap.Int("port", cfg.API.Port),
		zap.String("backend", cfg.Store.Backend),
	)

	routerConfig := api.NewRouterConfig(cfg.API)
	routerConfig.Logger = logger

	store, err := openStore(cfg, &routerConfig, logger)
	if err != nil {
		log.Fatal("failed to open trace store", zap.Error(err))
	}
	defer store.Close()

	router := api.NewRouter(store, routerConfig)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("API server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("received signal, shutting down", zap.String("signal", sig.String()))

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}

	log.Info("API server stopped")
}

func loadConfig() (config.Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return config.LoadFile(path)
	}
	cfg := config.Default()
	return cfg, cfg.Validate()
}

// openStore opens the configured trace store. For the directory backend the
// event logs of the measurement are attached to rc.
func openStore(cfg config.Config, rc *api.RouterConfig, logger *zap.Logger) (storage.TraceStore, error) {
	if cfg.Store.Backend == config.BackendInfluxDB {
		logger.Info("connecting to InfluxDB",
			zap.String("url", cfg.Influx.URL),
			zap.String("org", cfg.Influx.Org),
			zap.String("bucket", cfg.Influx.Bucket),
		)
		return storage.NewInfluxDBStorage(cfg.Influx)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	m, err := measurement.Open(ctx, cfg.Store.DataDir, logger, measurement.WithEvents(cfg.Store.LoadEvents))
	if err != nil {
		return nil, err
	}
	rc.Gpio = m.Gpio
	rc.Serial = m.Serial

	if start, end, ok := m.Span(); ok {
		logger.Info("measurement opened",
			zap.String("dir", m.Files.Dir),
			zap.Time("start", models.ToTime(start)),
			zap.Time("end", models.ToTime(end)),
		)
	}
	return m.Traces, nil
}
