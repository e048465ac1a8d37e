package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string

	// External parsing service
	ParserServiceURL string
	ParserTimeout    time.Duration

	// Parse-result cache
	CacheTTL time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Rate limiting (per client, uploads only)
	RateLimitPerMinute int
	RateLimitBurst     int
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ParserServiceURL: getEnv("PARSER_SERVICE_URL", "http://localhost:8080/parse-statement/"),
		ParserTimeout:    getEnvDuration("PARSER_TIMEOUT", 60*time.Second),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 32<<20),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 20),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 5),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.ParserServiceURL == "" {
		errs = append(errs, "parser service URL cannot be empty")
	} else if u, err := url.Parse(c.ParserServiceURL); err != nil {
		errs = append(errs, fmt.Sprintf("invalid parser service URL '%s': %v", c.ParserServiceURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("invalid parser service URL scheme '%s': must be 'http' or 'https'", u.Scheme))
	}

	if c.ParserTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid parser timeout %v: must be at least 1 second", c.ParserTimeout))
	} else if c.ParserTimeout > 10*time.Minute {
		errs = append(errs, fmt.Sprintf("invalid parser timeout %v: must be at most 10 minutes", c.ParserTimeout))
	}

	if c.CacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	} else if c.CacheTTL > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must be at most 24 hours", c.CacheTTL))
	}

	if c.MaxUploadBytes < 1<<10 {
		errs = append(errs, fmt.Sprintf("invalid max upload size %d: must be at least 1KB", c.MaxUploadBytes))
	} else if c.MaxUploadBytes > 128<<20 {
		errs = append(errs, fmt.Sprintf("invalid max upload size %d: must be at most 128MB", c.MaxUploadBytes))
	}

	if c.RateLimitPerMinute < 1 {
		errs = append(errs, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}
	if c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Sprintf("invalid rate limit burst %d: must be at least 1", c.RateLimitBurst))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
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
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
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
