package telemetry

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTELHook adds trace and span IDs to every log entry
type OTELHook struct{}

func (h OTELHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return
	}

	e.Str("trace_id", span.SpanContext().TraceID().String())
	e.Str("span_id", span.SpanContext().SpanID().String())

	if level == zerolog.ErrorLevel {
		span.SetStatus(codes.Error, msg)
	}
}

// Logger wraps zerolog with OTEL integration
type Logger struct {
	zerolog.Logger
}

// NewLogger creates a new logger with OTEL hooks
func NewLogger(component string) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	logger := zerolog.New(os.Stderr).
		With().
		Timestamp().
		Str("component", component).
		Logger().
		Hook(OTELHook{})

	return &Logger{Logger: logger}
}

// WithContext returns a logger with context (for trace propagation)
func (l *Logger) WithContext(ctx context.Context) *zerolog.Logger {
	logger := l.Logger.With().Ctx(ctx).Logger()
	return &logger
}

// Convenience methods for export operations

// LogResyncStart logs the start of a kind resync in one account and region
func (l *Logger) LogResyncStart(ctx context.Context, kind, accountID, region string) {
	l.WithContext(ctx).Info().
		Str("kind", kind).
		Str("account_id", accountID).
		Str("region", region).
		Msg("resync started")
}

// LogResyncComplete logs a finished kind resync with document counts
func (l *Logger) LogResyncComplete(ctx context.Context, kind string, documents, batches int, durationSeconds float64) {
	l.WithContext(ctx).Info().
		Str("kind", kind).
		Int("documents", documents).
		Int("batches", batches).
		Float64("duration_s", durationSeconds).
		Msg("resync complete")
}

// LogActionFailure logs a failed enrichment action
func (l *Logger) LogActionFailure(ctx context.Context, actionName, identifier string, err error) {
	l.WithContext(ctx).Warn().
		Err(err).
		Str("action", actionName).
		Str("identifier", identifier).
		Msg("action failed")
}

// LogAccountSkipped logs an account excluded from the run
func (l *Logger) LogAccountSkipped(ctx context.Context, accountID string, err error) {
	l.WithContext(ctx).Warn().
		Err(err).
		Str("account_id", accountID).
		Msg("account skipped")
}
