package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestHome points HOME at a temp dir so the default path is isolated.
func setupTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadWithFile_DefaultsWhenNoFile(t *testing.T) {
	setupTestHome(t)

	cfg, err := LoadWithFile("")
	require.NoError(t, err)

	assert.Equal(t, DefaultStepType, cfg.Analysis.StepType)
	assert.Equal(t, DefaultGoal, cfg.Analysis.Goal)
	assert.Equal(t, DefaultStreakThreshold, cfg.Analysis.StreakThreshold)
	assert.Equal(t, DefaultStepsPerMile, cfg.Analysis.StepsPerMile)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Telemetry.ShutdownTimeout.Duration())
}

func TestLoadWithFile_ValidYAML(t *testing.T) {
	home := setupTestHome(t)

	path := writeConfig(t, home, `analysis:
  goal: 12000
  streak_threshold: 7500
logging:
  level: debug
  format: json
telemetry:
  shutdown_timeout: 2s
`)

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, 12000, cfg.Analysis.Goal)
	assert.Equal(t, 7500, cfg.Analysis.StreakThreshold)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, DefaultStepType, cfg.Analysis.StepType)
	assert.Equal(t, DefaultStepsPerMile, cfg.Analysis.StepsPerMile)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 2*time.Second, cfg.Telemetry.ShutdownTimeout.Duration())
}

func TestLoadWithFile_DefaultPathIsRead(t *testing.T) {
	home := setupTestHome(t)
	dir := filepath.Join(home, ".config", "stepwrap")
	require.NoError(t, os.MkdirAll(dir, 0700))
	writeConfig(t, dir, "analysis:\n  goal: 9000\n")

	cfg, err := LoadWithFile("")
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Analysis.Goal)
}

func TestLoadWithFile_EnvironmentOverride(t *testing.T) {
	home := setupTestHome(t)
	path := writeConfig(t, home, "analysis:\n  goal: 12000\n")

	t.Setenv("STEPWRAP_ANALYSIS_GOAL", "15000")
	t.Setenv("STEPWRAP_ANALYSIS_STREAK_THRESHOLD", "6000")
	t.Setenv("STEPWRAP_TELEMETRY_PUSHGATEWAY_URL", "http://localhost:9091")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, 15000, cfg.Analysis.Goal)
	assert.Equal(t, 6000, cfg.Analysis.StreakThreshold)
	assert.Equal(t, "http://localhost:9091", cfg.Telemetry.PushgatewayURL)
}

func TestLoadWithFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, home string) string
		wantErr string
	}{
		{
			name: "explicit path missing",
			setup: func(t *testing.T, home string) string {
				return filepath.Join(home, "nope.yaml")
			},
			wantErr: "config file",
		},
		{
			name: "invalid yaml",
			setup: func(t *testing.T, home string) string {
				return writeConfig(t, home, "analysis: [unterminated\n")
			},
			wantErr: "failed to load config file",
		},
		{
			name: "validation failure",
			setup: func(t *testing.T, home string) string {
				return writeConfig(t, home, "analysis:\n  goal: -1\n")
			},
			wantErr: "analysis.goal",
		},
		{
			name: "directory instead of file",
			setup: func(t *testing.T, home string) string {
				return home
			},
			wantErr: "is a directory",
		},
		{
			name: "file too large",
			setup: func(t *testing.T, home string) string {
				big := make([]byte, maxConfigFileSize+10)
				for i := range big {
					big[i] = '#'
				}
				path := filepath.Join(home, "big.yaml")
				require.NoError(t, os.WriteFile(path, big, 0600))
				return path
			},
			wantErr: "too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := setupTestHome(t)
			_, err := LoadWithFile(tt.setup(t, home))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "analysis.goal", envKey("STEPWRAP_ANALYSIS_GOAL"))
	assert.Equal(t, "analysis.streak_threshold", envKey("STEPWRAP_ANALYSIS_STREAK_THRESHOLD"))
	assert.Equal(t, "telemetry.push_password", envKey("STEPWRAP_TELEMETRY_PUSH_PASSWORD"))
	assert.Equal(t, "debug", envKey("STEPWRAP_DEBUG"))
}
