// Package config provides configuration loading for stepwrap.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// STEPWRAP_* environment variables. See LoadWithFile.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Analysis defaults. These match the Apple Health export schema and the
// thresholds used by the wrapped report.
const (
	DefaultStepType        = "HKQuantityTypeIdentifierStepCount"
	DefaultGoal            = 10000
	DefaultStreakThreshold = 8000
	DefaultStepsPerMile    = 2000.0
)

// Config holds the complete stepwrap configuration.
type Config struct {
	Analysis  AnalysisConfig  `koanf:"analysis"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// AnalysisConfig holds the constants the extractor and statistics use.
type AnalysisConfig struct {
	StepType        string  `koanf:"step_type"`
	Goal            int     `koanf:"goal"`
	StreakThreshold int     `koanf:"streak_threshold"`
	StepsPerMile    float64 `koanf:"steps_per_mile"`
}

// LoggingConfig selects log verbosity and encoding. Logs always go to stderr.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig controls optional trace export and run metric pushes.
type TelemetryConfig struct {
	Enabled         bool     `koanf:"enabled"`
	Endpoint        string   `koanf:"endpoint"`
	Protocol        string   `koanf:"protocol"` // "grpc", "http/protobuf" or "console"
	Insecure        bool     `koanf:"insecure"`
	ServiceName     string   `koanf:"service_name"`
	SampleRate      float64  `koanf:"sample_rate"`
	Metrics         bool     `koanf:"metrics"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`

	// Pushgateway receives the per-run record counters. Empty disables the push.
	PushgatewayURL string `koanf:"pushgateway_url"`
	PushJob        string `koanf:"push_job"`
	PushUsername   string `koanf:"push_username"`
	PushPassword   Secret `koanf:"push_password"`
}

// Default returns a configuration populated with every default value.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			StepType:        DefaultStepType,
			Goal:            DefaultGoal,
			StreakThreshold: DefaultStreakThreshold,
			StepsPerMile:    DefaultStepsPerMile,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Enabled:         false,
			Endpoint:        "localhost:4317",
			Protocol:        "grpc",
			Insecure:        true,
			ServiceName:     "stepwrap",
			SampleRate:      1.0,
			Metrics:         true,
			ShutdownTimeout: Duration(5 * time.Second),
			PushJob:         "stepwrap",
		},
	}
}

// Validate validates the configuration.
//
// Returns an error if:
//   - the step type identifier is empty
//   - goal, streak threshold or steps-per-mile is not positive
//   - the log format is not json or console
//   - telemetry is enabled without an endpoint, or with an unknown protocol
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Analysis.StepType) == "" {
		return errors.New("analysis.step_type must not be empty")
	}
	if c.Analysis.Goal <= 0 {
		return fmt.Errorf("invalid analysis.goal: %d (must be positive)", c.Analysis.Goal)
	}
	if c.Analysis.StreakThreshold <= 0 {
		return fmt.Errorf("invalid analysis.streak_threshold: %d (must be positive)", c.Analysis.StreakThreshold)
	}
	if c.Analysis.StepsPerMile <= 0 {
		return fmt.Errorf("invalid analysis.steps_per_mile: %g (must be positive)", c.Analysis.StepsPerMile)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			return errors.New("telemetry.endpoint is required when telemetry is enabled")
		}
		switch c.Telemetry.Protocol {
		case "grpc", "http/protobuf", "console":
		default:
			return fmt.Errorf("telemetry.protocol must be 'grpc', 'http/protobuf' or 'console', got %q", c.Telemetry.Protocol)
		}
		if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
			return fmt.Errorf("telemetry.sample_rate must be between 0 and 1, got %f", c.Telemetry.SampleRate)
		}
	}

	if c.Telemetry.PushPassword.IsSet() && c.Telemetry.PushUsername == "" {
		return errors.New("telemetry.push_username is required with push_password")
	}

	return nil
}
