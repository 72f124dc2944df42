// internal/logging/config.go
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fyrsmithlabs/stepwrap/internal/config"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level  zapcore.Level
	Format string

	// Output receives encoded entries. Defaults to os.Stderr so stdout stays
	// reserved for reports.
	Output io.Writer

	// OTEL mirrors entries to the OpenTelemetry log bridge when a provider is given.
	OTEL bool

	Sampling SamplingConfig
	Caller   bool
	Fields   map[string]string

	// RedactKeys are field names whose values never reach the encoder.
	RedactKeys []string
}

// SamplingConfig controls log volume reduction for entries below Error.
type SamplingConfig struct {
	Enabled    bool
	Tick       time.Duration
	Initial    int
	Thereafter int
}

// NewDefaultConfig returns the CLI defaults: warn level, console encoding, stderr.
func NewDefaultConfig() *Config {
	return &Config{
		Level:  zapcore.WarnLevel,
		Format: "console",
		Output: os.Stderr,
		Sampling: SamplingConfig{
			Enabled:    true,
			Tick:       time.Second,
			Initial:    100,
			Thereafter: 100,
		},
		Fields: map[string]string{
			"service": "stepwrap",
		},
		RedactKeys: []string{"password", "push_password", "authorization", "token"},
	}
}

// FromSettings builds a logging config from the loaded application settings.
func FromSettings(s config.LoggingConfig) (*Config, error) {
	cfg := NewDefaultConfig()
	if s.Level != "" {
		lvl, err := LevelFromString(strings.ToLower(s.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", s.Level, err)
		}
		cfg.Level = lvl
	}
	if s.Format != "" {
		cfg.Format = s.Format
	}
	// Verbose levels are for troubleshooting; don't drop entries.
	if cfg.Level < zapcore.InfoLevel {
		cfg.Sampling.Enabled = false
	}
	return cfg, cfg.Validate()
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("format must be 'json' or 'console', got %q", c.Format)
	}
	if c.Sampling.Enabled && c.Sampling.Tick <= 0 {
		return fmt.Errorf("sampling tick must be > 0 when sampling enabled")
	}
	for k, v := range c.Fields {
		if k == "" {
			return fmt.Errorf("field key cannot be empty")
		}
		if v == "" {
			return fmt.Errorf("field %q has empty value", k)
		}
	}
	return nil
}
