// internal/logging/otel.go
package logging

import (
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

// newCore builds the writer core, tees in the OTEL bridge when requested,
// and wraps the result with sampling.
func newCore(cfg *Config, otelProvider log.LoggerProvider) zapcore.Core {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	encoder := NewRedactingEncoder(newEncoder(cfg.Format), cfg.RedactKeys)
	core := zapcore.NewCore(encoder, zapcore.AddSync(out), cfg.Level)

	if cfg.OTEL && otelProvider != nil {
		otelCore := otelzap.NewCore("github.com/fyrsmithlabs/stepwrap",
			otelzap.WithLoggerProvider(otelProvider),
		)
		core = zapcore.NewTee(core, otelCore)
	}

	return newSampledCore(core, cfg.Sampling)
}
