// Package lib carries process-level helpers shared by the binaries:
// environment-driven configuration and its validation.
package lib

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/langboard/langboard/schemas"
)

const (
	DefaultPort             = "8080"
	DefaultDBPath           = "langboard.db"
	DefaultCacheTTLHours    = 12
	MaxCacheTTLHours        = 24
	DefaultConcurrencyLimit = 20
)

// Config is everything the HTTP binary needs, resolved from the process
// environment with sane defaults.
type Config struct {
	Port            string
	GithubToken     string
	GithubBaseURL   string
	DBPath          string
	AllowedOrigins  []string
	EnableCache     bool
	CacheTTL        time.Duration
	ConcurrencyLim  int64
	LogLevel        schemas.LogLevel
	LogStyle        schemas.LoggerOutputType
}

// LoadConfig reads the environment. It returns an error only for values that
// cannot be given a safe default, and logs when it corrects one that can.
func LoadConfig(logger schemas.Logger) (*Config, error) {
	cfg := &Config{
		Port:           envOrDefault("PORT", DefaultPort),
		GithubToken:    os.Getenv("GITHUB_TOKEN"),
		GithubBaseURL:  os.Getenv("GITHUB_API_BASE_URL"),
		DBPath:         envOrDefault("DB_PATH", DefaultDBPath),
		EnableCache:    true,
		CacheTTL:       DefaultCacheTTLHours * time.Hour,
		ConcurrencyLim: DefaultConcurrencyLimit,
		LogLevel:       schemas.LogLevelInfo,
		LogStyle:       schemas.LoggerOutputTypeJSON,
	}

	if cfg.GithubToken == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN is required")
	}

	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	if raw := os.Getenv("ENABLE_CACHE"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid ENABLE_CACHE value %q: %w", raw, err)
		}
		cfg.EnableCache = enabled
	}

	if raw := os.Getenv("CACHE_TTL_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("invalid CACHE_TTL_HOURS value %q: must be a positive integer", raw)
		}
		if hours > MaxCacheTTLHours {
			logger.Warn("CACHE_TTL_HOURS %d exceeds the %d hour maximum, capping", hours, MaxCacheTTLHours)
			hours = MaxCacheTTLHours
		}
		cfg.CacheTTL = time.Duration(hours) * time.Hour
	}

	if raw := os.Getenv("CONCURRENCY_LIMIT"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("invalid CONCURRENCY_LIMIT value %q: must be a positive integer", raw)
		}
		cfg.ConcurrencyLim = limit
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		switch level := schemas.LogLevel(strings.ToLower(raw)); level {
		case schemas.LogLevelDebug, schemas.LogLevelInfo, schemas.LogLevelWarn, schemas.LogLevelError:
			cfg.LogLevel = level
		default:
			logger.Warn("unknown LOG_LEVEL %q, keeping %q", raw, cfg.LogLevel)
		}
	}

	if raw := os.Getenv("LOG_STYLE"); raw != "" {
		switch style := schemas.LoggerOutputType(strings.ToLower(raw)); style {
		case schemas.LoggerOutputTypeJSON, schemas.LoggerOutputTypePretty:
			cfg.LogStyle = style
		default:
			logger.Warn("unknown LOG_STYLE %q, keeping %q", raw, cfg.LogStyle)
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
