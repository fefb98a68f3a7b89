package logger

import (
	"context"
	"strings"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	obsctx "github.com/JohnConnorCode/kivett-bednar-sub000/internal/observability/context"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Module = fx.Module("logger",
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, log *zap.Logger) {
		restore := zap.ReplaceGlobals(log)
		lc.Append(fx.StopHook(func() {
			_ = log.Sync()
			restore()
		}))
	}),
)

// New builds the process logger: JSON in production, console otherwise.
func New(cfg config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Log.Level))
	zcfg.EncoderConfig.TimeKey = "ts"

	log, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return log.With(
		zap.String("service", cfg.ServiceName),
		zap.String("env", cfg.Environment),
	), nil
}

// FromContext returns the global logger enriched with trace and request fields.
func FromContext(ctx context.Context) *zap.Logger {
	log := zap.L()
	if ctx == nil {
		return log
	}

	fields := make([]zap.Field, 0, 5)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if requestID := obsctx.RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if sessionID := obsctx.CheckoutSessionFromContext(ctx); sessionID != "" {
		fields = append(fields, zap.String("checkout_session", sessionID))
	}
	if eventID := obsctx.EventIDFromContext(ctx); eventID != "" {
		fields = append(fields, zap.String("event_id", eventID))
	}
	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
