package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host               string
	Port               string
	LogLevel           string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64

	// Upload limits
	MaxFilesPerBatch int
	MaxFileSize      int64
	WorkerCount      int

	// Report and chart rendering
	ReportPrintDelay time.Duration
	ChartWidth       int
	ChartHeight      int

	// Sessions live as long as the page that opened them; idle ones are evicted
	SessionIdleTimeout time.Duration

	// DetectorSeed makes simulated detections reproducible when non-zero
	DetectorSeed int64
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// Load reads an optional .env file and then the environment
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables already present in the environment
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return LoadFromEnv()
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 64*1024*1024), // 64MB
		MaxFilesPerBatch:   int(parseIntOrDefault("MAX_FILES_PER_BATCH", 50)),
		MaxFileSize:        parseIntOrDefault("MAX_FILE_SIZE", 10*1024*1024), // 10MB
		WorkerCount:        int(parseIntOrDefault("WORKER_COUNT", 4)),
		ReportPrintDelay:   parseDurationOrDefault("REPORT_PRINT_DELAY", 400*time.Millisecond),
		ChartWidth:         int(parseIntOrDefault("CHART_WIDTH", 800)),
		ChartHeight:        int(parseIntOrDefault("CHART_HEIGHT", 360)),
		SessionIdleTimeout: parseDurationOrDefault("SESSION_IDLE_TIMEOUT", 2*time.Hour),
		DetectorSeed:       parseIntOrDefault("DETECTOR_SEED", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.MaxFilesPerBatch <= 0 {
		return fmt.Errorf("MAX_FILES_PER_BATCH must be > 0 (got %d)", c.MaxFilesPerBatch)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be > 0 (got %d)", c.MaxFileSize)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be > 0 (got %d)", c.WorkerCount)
	}
	if c.ChartWidth <= 0 || c.ChartHeight <= 0 {
		return fmt.Errorf("chart size must be > 0 (got %dx%d)", c.ChartWidth, c.ChartHeight)
	}
	if c.RequestTimeout <= 0 || c.SessionIdleTimeout <= 0 || c.ReportPrintDelay < 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, session=%s, print_delay=%s)",
			c.RequestTimeout, c.SessionIdleTimeout, c.ReportPrintDelay)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration >= 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
