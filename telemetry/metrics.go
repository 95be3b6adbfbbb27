package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Typed recorders over the package instruments. Call sites pass plain
// values; attribute sets are assembled here so labels stay consistent
// across the codebase.

// RecordDocumentsExported records documents that reached the emitter.
func RecordDocumentsExported(ctx context.Context, kind string, count int64) {
	DocumentsExported.Add(ctx, count,
		metric.WithAttributeSet(attribute.NewSet(
			attribute.String("kind", kind),
		)),
	)
}

// RecordDocumentDenied records one document dropped by the export policy.
func RecordDocumentDenied(ctx context.Context, docType string) {
	DocumentsDenied.Add(ctx, 1,
		metric.WithAttributeSet(attribute.NewSet(
			attribute.String("type", docType),
		)),
	)
}

// RecordPageFetched records one provider list page.
func RecordPageFetched(ctx context.Context, kind string) {
	PagesFetched.Add(ctx, 1,
		metric.WithAttributeSet(attribute.NewSet(
			attribute.String("kind", kind),
		)),
	)
}

// RecordActionFailure records a failed enrichment action. Mode is
// "default" or "option".
func RecordActionFailure(ctx context.Context, actionName, mode string) {
	ActionFailures.Add(ctx, 1,
		metric.WithAttributeSet(attribute.NewSet(
			attribute.String("action", actionName),
			attribute.String("mode", mode),
		)),
	)
}

// RecordResyncDuration records one kind resync in one region.
func RecordResyncDuration(ctx context.Context, kind, region string, seconds float64) {
	ResyncDuration.Record(ctx, seconds,
		metric.WithAttributeSet(attribute.NewSet(
			attribute.String("kind", kind),
			attribute.String("region", region),
		)),
	)
}

// RecordAccountsHealthy records how many accounts passed the credential
// probe for this run.
func RecordAccountsHealthy(ctx context.Context, count int64) {
	AccountsHealthy.Record(ctx, count)
}

// RecordRegionsSelected records how many regions survived policy
// filtering for one account.
func RecordRegionsSelected(ctx context.Context, accountID string, count int64) {
	RegionsSelected.Record(ctx, count,
		metric.WithAttributeSet(attribute.NewSet(
			attribute.String("account_id", accountID),
		)),
	)
}
