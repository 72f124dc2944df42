package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/stepwrap/internal/chart"
	"github.com/fyrsmithlabs/stepwrap/internal/config"
	"github.com/fyrsmithlabs/stepwrap/internal/daily"
	"github.com/fyrsmithlabs/stepwrap/internal/healthexport"
	"github.com/fyrsmithlabs/stepwrap/internal/logging"
	"github.com/fyrsmithlabs/stepwrap/internal/progress"
	"github.com/fyrsmithlabs/stepwrap/internal/stats"
	"github.com/fyrsmithlabs/stepwrap/internal/telemetry"
)

const (
	tracerName    = "github.com/fyrsmithlabs/stepwrap/cmd/stepwrap"
	parsingNotice = "Parsing step records... this may take a while for large exports."
)

// app is the per-run state shared by the subcommands.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	tel      *telemetry.Telemetry
	registry *prometheus.Registry
	runID    string
	errOut   io.Writer
}

// withApp builds the run state, calls fn and tears everything down. Errors
// from fn are logged before being returned to cobra.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	// Arguments are valid by now; further failures are not usage errors.
	cmd.SilenceUsage = true

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, ctx, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := fn(ctx, a); err != nil {
		a.logger.Error(ctx, "command failed", zap.Error(err))
		return err
	}
	return nil
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, context.Context, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, ctx, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	reg := prometheus.NewRegistry()
	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry, version),
		telemetry.WithPrometheusRegisterer(reg),
	)
	if err != nil {
		return nil, ctx, err
	}

	logCfg, err := logging.FromSettings(cfg.Logging)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, ctx, err
	}
	logCfg.Output = cmd.ErrOrStderr()
	logCfg.OTEL = tel.IsEnabled()
	logger, err := logging.NewLogger(logCfg, tel.LoggerProvider())
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, ctx, err
	}

	if h := tel.Health(); h.Degraded {
		logger.Warn(ctx, "telemetry degraded", zap.Error(h.LastErr))
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	ctx = logging.WithCommand(ctx, cmd.Name())
	ctx = logging.WithLogger(ctx, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		tel:      tel,
		registry: reg,
		runID:    runID,
		errOut:   cmd.ErrOrStderr(),
	}, ctx, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Telemetry.ShutdownTimeout.Duration()+time.Second)
	defer cancel()
	if err := a.tel.Shutdown(ctx); err != nil {
		a.logger.Warn(ctx, "telemetry shutdown", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func (a *app) settings() stats.Settings {
	return stats.Settings{
		Goal:            a.cfg.Analysis.Goal,
		StreakThreshold: a.cfg.Analysis.StreakThreshold,
		StepsPerMile:    a.cfg.Analysis.StepsPerMile,
	}
}

// loadTable streams the export into a daily table and pushes the run's
// record counters when a gateway is configured.
func (a *app) loadTable(ctx context.Context, path string) (daily.Table, error) {
	fmt.Fprintln(a.errOut, parsingNotice)

	ctx = logging.WithExportFile(ctx, path)
	ctx, span := a.tel.Tracer(tracerName).Start(ctx, "stepwrap.load")
	defer span.End()

	r, err := healthexport.Open(path,
		healthexport.WithStepType(a.cfg.Analysis.StepType),
		healthexport.WithMetrics(healthexport.NewMetrics(a.registry)),
		healthexport.WithLogger(a.logger.With(logging.ContextFields(ctx)...)),
	)
	if err != nil {
		return daily.Table{}, err
	}
	defer r.Close()

	agg, err := daily.NewAggregator(
		daily.WithTracerProvider(a.tel.TracerProvider()),
		daily.WithMeterProvider(a.tel.MeterProvider()),
	)
	if err != nil {
		return daily.Table{}, err
	}

	var obs daily.Observer
	var bar *progress.Bar
	if !noProgress && chart.IsTerminal(a.errOut) {
		bar = progress.New(a.errOut, "Parsing records", progress.DefaultEvery)
		obs = bar
	}

	start := time.Now()
	table, err := agg.Aggregate(ctx, r, obs)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return daily.Table{}, fmt.Errorf("reading %s: %w", path, err)
	}

	st := r.Stats()
	a.logger.Info(ctx, "export parsed",
		zap.Int("records.scanned", st.Scanned),
		zap.Int("records.matched", st.Matched),
		zap.Int("records.skipped", st.Skipped),
		zap.Int("days", table.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := telemetry.Push(ctx, a.registry, telemetry.PushFromSettings(a.cfg.Telemetry), a.runID); err != nil {
		a.logger.Warn(ctx, "metrics push failed", zap.Error(err))
	}
	return table, nil
}
