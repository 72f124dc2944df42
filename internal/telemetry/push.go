package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/stepwrap/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushConfig addresses a Prometheus Pushgateway.
type PushConfig struct {
	URL      string
	Job      string
	Username string
	Password config.Secret
	Timeout  time.Duration
}

// PushFromSettings maps the pushgateway keys of the telemetry section.
func PushFromSettings(s config.TelemetryConfig) PushConfig {
	return PushConfig{
		URL:      s.PushgatewayURL,
		Job:      s.PushJob,
		Username: s.PushUsername,
		Password: s.PushPassword,
		Timeout:  s.ShutdownTimeout.Duration(),
	}
}

// Enabled reports whether a gateway URL is configured.
func (c PushConfig) Enabled() bool {
	return c.URL != ""
}

// Push replaces the metrics grouped under job and run_id on the gateway with
// the current contents of g. It is a no-op when no URL is configured.
func Push(ctx context.Context, g prometheus.Gatherer, cfg PushConfig, runID string) error {
	if !cfg.Enabled() {
		return nil
	}
	job := cfg.Job
	if job == "" {
		job = "stepwrap"
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	p := push.New(cfg.URL, job).Gatherer(g)
	if runID != "" {
		p = p.Grouping("run_id", runID)
	}
	if cfg.Username != "" {
		p = p.BasicAuth(cfg.Username, cfg.Password.Value())
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", cfg.URL, err)
	}
	return nil
}
