// Package config provides configuration structures and loading for the trace viewer binaries.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// APIConfig holds configuration for the REST API.
type APIConfig struct {
	// Host is the API server host
	Host string `yaml:"host" json:"host"`

	// Port is the API server port
	Port int `yaml:"port" json:"port"`

	// ReadTimeout is the HTTP read timeout
	ReadTimeout time.Duration `yaml:"read_timeout" json:"read_timeout"`

	// WriteTimeout is the HTTP write timeout
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`

	// DefaultWidth is the plot width in pixels used when a request does not
	// name one. It also derives the default sample resolution.
	DefaultWidth int `yaml:"default_width" json:"default_width"`

	// DefaultHeight is the plot height in pixels used when a request does not name one
	DefaultHeight int `yaml:"default_height" json:"default_height"`

	// MaxWidth caps the requested plot width
	MaxWidth int `yaml:"max_width" json:"max_width"`

	// MaxCurrent is the upper bound of the plot's current axis in mA
	MaxCurrent float64 `yaml:"max_current" json:"max_current"`
}

// Trace store backends.
const (
	BackendDir      = "dir"
	BackendInfluxDB = "influxdb"
)

// StoreConfig describes where measurement data is read from.
type StoreConfig struct {
	// Backend selects the trace store: "dir" reads DataDir, "influxdb"
	// reads the traces exported to InfluxDB
	Backend string `yaml:"backend" json:"backend"`

	// DataDir is the measurement directory holding serial.csv, gpiotraces.csv
	// and the powerprofiling/ trace files
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// LoadEvents enables loading the GPIO and serial logs
	LoadEvents bool `yaml:"load_events" json:"load_events"`
}

// InfluxConfig holds InfluxDB connection settings for trace export and import.
type InfluxConfig struct {
	URL    string `yaml:"url" json:"url"`
	Token  string `yaml:"token" json:"token"`
	Org    string `yaml:"org" json:"org"`
	Bucket string `yaml:"bucket" json:"bucket"`

	// Range is how far back the read storage looks for points
	Range time.Duration `yaml:"range" json:"range"`

	// BatchSize is the number of points written per batch on export
	BatchSize int `yaml:"batch_size" json:"batch_size"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
}

// Config is the complete configuration of the API binary.
type Config struct {
	API    APIConfig    `yaml:"api" json:"api"`
	Store  StoreConfig  `yaml:"store" json:"store"`
	Influx InfluxConfig `yaml:"influx" json:"influx"`
	Log    LogConfig    `yaml:"log" json:"log"`
}

// DefaultAPIConfig returns a default API configuration.
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		Host:          getEnv("API_HOST", "0.0.0.0"),
		Port:          getEnvInt("API_PORT", 8080),
		ReadTimeout:   getEnvDuration("API_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:  getEnvDuration("API_WRITE_TIMEOUT", 30*time.Second),
		DefaultWidth:  getEnvInt("PLOT_WIDTH", 1200),
		DefaultHeight: getEnvInt("PLOT_HEIGHT", 300),
		MaxWidth:      getEnvInt("PLOT_MAX_WIDTH", 8000),
		MaxCurrent:    getEnvFloat("PLOT_MAX_CURRENT", 35),
	}
}

// DefaultStoreConfig returns a default store configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Backend:    getEnv("STORE_BACKEND", BackendDir),
		DataDir:    getEnv("MEASUREMENT_DIR", "/data/measurement"),
		LoadEvents: getEnvBool("LOAD_EVENTS", true),
	}
}

// DefaultInfluxConfig returns a default InfluxDB configuration.
func DefaultInfluxConfig() InfluxConfig {
	return InfluxConfig{
		URL:       getEnv("INFLUXDB_URL", "http://localhost:8086"),
		Token:     getEnv("INFLUXDB_TOKEN", ""),
		Org:       getEnv("INFLUXDB_ORG", "testbed"),
		Bucket:    getEnv("INFLUXDB_BUCKET", "traces"),
		Range:     getEnvDuration("INFLUXDB_RANGE", 30*24*time.Hour),
		BatchSize: getEnvInt("INFLUXDB_BATCH_SIZE", 5000),
	}
}

// DefaultLogConfig returns a default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnvBool("LOG_DEVELOPMENT", false),
	}
}

// Default returns the complete default configuration.
func Default() Config {
	return Config{
		API:    DefaultAPIConfig(),
		Store:  DefaultStoreConfig(),
		Influx: DefaultInfluxConfig(),
		Log:    DefaultLogConfig(),
	}
}

// LoadFile overlays the YAML file at path onto the defaults. Keys missing
// from the file keep their default (or environment) value.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.API.Port <= 0 || c.API.Port > 65535:
		return fmt.Errorf("invalid api port %d", c.API.Port)
	case c.API.DefaultWidth <= 0 || c.API.DefaultHeight <= 0:
		return errors.New("plot dimensions must be positive")
	case c.API.MaxWidth < c.API.DefaultWidth:
		return fmt.Errorf("max width %d is below default width %d", c.API.MaxWidth, c.API.DefaultWidth)
	case c.API.MaxCurrent <= 0:
		return errors.New("max current must be positive")
	case c.Store.Backend != BackendDir && c.Store.Backend != BackendInfluxDB:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	case c.Store.Backend == BackendDir && c.Store.DataDir == "":
		return errors.New("store data_dir is required")
	case c.Influx.BatchSize <= 0:
		return errors.New("influx batch_size must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing.

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
