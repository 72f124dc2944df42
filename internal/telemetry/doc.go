// Package telemetry provides OpenTelemetry instrumentation for stepwrap.
//
// # Overview
//
// Traces and metrics are exported over OTLP (gRPC or HTTP) when enabled.
// Telemetry is off by default; a plain CLI run creates no exporters and the
// global no-op providers serve every Tracer and Meter call.
//
// Separately, Push delivers a Prometheus registry to a Pushgateway at the end
// of a run. The export reader's record counters travel this way, grouped by
// job and run_id.
//
// # Usage
//
//	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry, version))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx, span := tel.Tracer("stepwrap/daily").Start(ctx, "daily.Aggregate")
//	defer span.End()
//
//	err = telemetry.Push(ctx, registry, telemetry.PushFromSettings(cfg.Telemetry), runID)
//
// # Testing
//
// NewTestTelemetry records spans in memory and exposes a manual metric reader:
//
//	tel := telemetry.NewTestTelemetry()
//	runSomething(tel.Telemetry)
//	tel.AssertSpanExists(t, "daily.Aggregate")
package telemetry
