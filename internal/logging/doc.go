// Package logging provides structured logging for stepwrap on top of Zap.
//
// # Overview
//
//   - Custom Trace level (-2, below Debug)
//   - Output to stderr, so stdout carries only report text
//   - Optional mirror to OpenTelemetry through the otelzap bridge
//   - Automatic context fields (trace_id, run.id, command, export.file)
//   - Key-based redaction of credentials
//   - Sampling below Error (errors never sampled)
//
// # Usage
//
//	cfg, err := logging.FromSettings(appCfg.Logging)
//	if err != nil {
//	    return err
//	}
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRunID(ctx, runID)
//	ctx = logging.WithExportFile(ctx, path)
//	logger.Info(ctx, "aggregation complete", zap.Int("days", n))
//
// Console output (the default):
//
//	2025-11-24T10:15:30.000Z  INFO  aggregation complete  {"service": "stepwrap", "run.id": "6f1c...", "export.file": "export.xml", "days": 412}
//
// # Testing
//
//	logger := logging.NewTestLogger()
//	runSomething(logger.Logger)
//	logger.AssertLogged(t, zapcore.InfoLevel, "aggregation complete")
package logging
