// Package config loads server configuration from the environment with sane
// defaults, so the binary runs with zero setup and every knob stays
// overridable in deployment.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"farmalytics/analysis"
)

// Config is the full server configuration.
type Config struct {
	// Server
	Port            string        `json:"port"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// Storage
	UploadsDir string `json:"uploads_dir"`
	ReportsDir string `json:"reports_dir"`

	// Upload limits
	MaxUploadMB int `json:"max_upload_mb"`
	MaxSessions int `json:"max_sessions"`

	// Rate limiting
	RateLimitPerSec float64 `json:"rate_limit_per_sec"`
	RateLimitBurst  int     `json:"rate_limit_burst"`

	// Logging
	LogLevel string `json:"log_level"`

	// Optional YAML file overriding the role keyword table.
	KeywordsFile string `json:"keywords_file"`

	// Analysis defaults, overridable per request via query parameters.
	Analysis analysis.Config `json:"analysis"`
}

// Load reads configuration from environment variables, falling back to
// defaults for anything unset.
func Load() *Config {
	cfg := &Config{
		Port:            getEnv("SERVER_PORT", "8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		UploadsDir: getEnv("UPLOADS_DIR", "uploads"),
		ReportsDir: getEnv("REPORTS_DIR", "reports"),

		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 100),
		MaxSessions: getEnvInt("MAX_SESSIONS", 50),

		RateLimitPerSec: getEnvFloat("RATE_LIMIT_PER_SEC", 10),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 20),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		KeywordsFile: getEnv("KEYWORDS_FILE", ""),

		Analysis: analysis.Config{
			LowStockThreshold:  getEnvFloat("LOW_STOCK_THRESHOLD", 5),
			OverstockThreshold: getEnvFloat("OVERSTOCK_THRESHOLD", 100),
			TopN:               getEnvInt("TOP_N", 20),
			ZScoreThreshold:    getEnvFloat("ZSCORE_THRESHOLD", 3),
			IQRMultiplier:      getEnvFloat("IQR_MULTIPLIER", 1.5),
			OutlierSampleSize:  getEnvInt("OUTLIER_SAMPLE_SIZE", 5),
			ZeroSalesShare:     getEnvFloat("ZERO_SALES_SHARE", 0.30),
		},
	}

	log.Printf("Config loaded: port=%s uploads=%s reports=%s max_upload=%dMB",
		cfg.Port, cfg.UploadsDir, cfg.ReportsDir, cfg.MaxUploadMB)
	return cfg
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("server port must not be empty")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadMB)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("max sessions must be positive, got %d", c.MaxSessions)
	}
	if c.RateLimitPerSec <= 0 {
		return fmt.Errorf("rate limit must be positive, got %f", c.RateLimitPerSec)
	}
	if c.Analysis.LowStockThreshold < 0 {
		return fmt.Errorf("low stock threshold must not be negative, got %f", c.Analysis.LowStockThreshold)
	}
	if c.Analysis.OverstockThreshold <= c.Analysis.LowStockThreshold {
		return fmt.Errorf("overstock threshold %f must exceed low stock threshold %f",
			c.Analysis.OverstockThreshold, c.Analysis.LowStockThreshold)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Warning: invalid number for %s, using default %f", key, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration for %s, using default %s", key, defaultValue)
	}
	return defaultValue
}
