package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ExportSpan wraps the span covering one whole export run.
type ExportSpan struct {
	span trace.Span
}

// StartExport starts the run-level span.
func StartExport(ctx context.Context, kinds []string) (context.Context, *ExportSpan) {
	ctx, span := Tracer.Start(ctx, "harava.export.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.StringSlice("export.kinds", kinds),
		),
	)
	return ctx, &ExportSpan{span: span}
}

// SetTotals sets the run outcome attributes.
func (s *ExportSpan) SetTotals(accounts, regions, documents, batches, denied, failures int64) {
	s.span.SetAttributes(
		attribute.Int64("export.accounts", accounts),
		attribute.Int64("export.regions", regions),
		attribute.Int64("export.documents", documents),
		attribute.Int64("export.batches", batches),
		attribute.Int64("export.denied", denied),
		attribute.Int64("export.failures", failures),
	)
}

// End ends the run span.
func (s *ExportSpan) End() {
	s.span.End()
}

// StartResync starts a span for one kind resync in one account and region.
func StartResync(ctx context.Context, kind, accountID, region string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, "harava.export.resync",
		trace.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("account_id", accountID),
			attribute.String("region", region),
		),
	)
}

// EndResync ends a resync span with its document counts.
func EndResync(span trace.Span, documents, batches int64, durationSeconds float64) {
	span.SetAttributes(
		attribute.Int64("documents.exported", documents),
		attribute.Int64("batches.emitted", batches),
		attribute.Float64("duration.seconds", durationSeconds),
	)
	span.End()
}

// RecordError marks a span failed without ending it.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.SetAttributes(
		attribute.String("error.message", err.Error()),
		attribute.Bool("error.occurred", true),
	)
}

// RecordAccountSkippedEvent emits a structured span event for an account
// excluded from the run.
func RecordAccountSkippedEvent(span trace.Span, accountID, reason string) {
	if span == nil {
		return
	}

	span.AddEvent("export.account.skipped", trace.WithAttributes(
		attribute.String("event.type", "export.account.skipped"),
		attribute.String("account_id", accountID),
		attribute.String("reason", reason),
	))
}
