// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds all runtime settings.
type Config struct {
	Directory DirectoryConfig
	HTTP      HTTPConfig
	Logging   LoggingConfig
}

// DirectoryConfig configures directory lookups.
type DirectoryConfig struct {
	BaseURL             string `env:"READABS_BASE_URL" default:"https://ausstats.abs.gov.au/servlet/TSSearchServlet?"`
	AllowErrorDocuments bool   `env:"READABS_ALLOW_ERROR_DOCUMENTS" default:"false"`
}

// HTTPConfig configures the transport.
type HTTPConfig struct {
	Timeout        time.Duration `env:"READABS_TIMEOUT" default:"30s"`
	MaxConcurrency int           `env:"READABS_MAX_CONCURRENCY" default:"8"`
	UserAgent      string        `env:"READABS_USER_AGENT" default:"readabs-go"`
	RateLimit      float64       `env:"READABS_RATE_LIMIT" default:"0"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `env:"READABS_LOG_LEVEL" envAlt:"LOG_LEVEL" default:"info"`
	Format string `env:"READABS_LOG_FORMAT" envAlt:"LOG_FORMAT" default:"text"`
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Directory.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("READABS_BASE_URL must be an absolute URL, got %q", c.Directory.BaseURL))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("READABS_TIMEOUT must be positive, got %s", c.HTTP.Timeout))
	}
	if c.HTTP.MaxConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("READABS_MAX_CONCURRENCY must be positive, got %d", c.HTTP.MaxConcurrency))
	}
	if c.HTTP.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("READABS_RATE_LIMIT must not be negative, got %g", c.HTTP.RateLimit))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("READABS_LOG_FORMAT must be text or json, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
