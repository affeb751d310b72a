package observability

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// ParseLevel maps a configured level name to a zerolog level. Empty or unknown names
// fall back to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// NewLogger builds the process logger on w. The development env writes console lines,
// any other env writes JSON records with the caller attached.
func NewLogger(w io.Writer, serviceName, env string) zerolog.Logger {
	if env == "development" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	fields := zerolog.New(w).With().
		Timestamp().
		Str("service", serviceName).
		Str("env", env)
	if env != "development" {
		fields = fields.Caller()
	}
	return fields.Logger()
}

// InitLogger installs the process logger as the zerolog global
func InitLogger(serviceName, env, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = NewLogger(os.Stdout, serviceName, env)
}

// WithSpan tags logger with the ids of the span carried by ctx, if it has one
func WithSpan(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}
	return logger.With().
		Stringer("trace_id", sc.TraceID()).
		Stringer("span_id", sc.SpanID()).
		Logger()
}

// LoggerFromContext returns the global logger tagged with ctx's trace context
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	logger := WithSpan(ctx, log.Logger)
	return &logger
}
