// Package export coordinates one run: sessions → regions → kind
// resyncs, with every batch passing the optional policy filter before
// the emitter.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/yairfalse/harava/awsapi"
	"github.com/yairfalse/harava/internal/emitter"
	"github.com/yairfalse/harava/kinds"
	"github.com/yairfalse/harava/policy"
	"github.com/yairfalse/harava/regions"
	"github.com/yairfalse/harava/retry"
	"github.com/yairfalse/harava/session"
	"github.com/yairfalse/harava/telemetry"
	"github.com/yairfalse/harava/types"
)

// ErrUnknownKind marks a requested type name missing from the catalog.
var ErrUnknownKind = errors.New("unknown kind")

// Global services resolve through us-east-1.
const globalRegion = "us-east-1"

// Engine coordinates sessions → regions → resync → filter → emit flow
type Engine struct {
	strategy     session.Strategy
	resolver     *regions.Resolver
	regionPolicy regions.Policy
	catalog      *kinds.Registry
	emitter      emitter.Emitter
	filter       *policy.Filter
	batchSize    int
	retry        retry.Policy
	logger       *telemetry.Logger

	// newClients is swapped in tests to avoid real SDK clients.
	newClients func(s session.Session, region string) *awsapi.Registry
}

// New creates an engine over a validated strategy, a kind catalog, and
// an emitter.
func New(strategy session.Strategy, catalog *kinds.Registry, em emitter.Emitter) *Engine {
	return &Engine{
		strategy: strategy,
		resolver: regions.NewResolver(),
		catalog:  catalog,
		emitter:  em,
		retry:    retry.Default(),
		logger:   telemetry.NewLogger("export"),
		newClients: func(s session.Session, region string) *awsapi.Registry {
			return awsapi.NewRegistry(s.Config(region))
		},
	}
}

// WithFilter sets the document admission filter
func (e *Engine) WithFilter(f *policy.Filter) *Engine {
	e.filter = f
	return e
}

// WithRegionPolicy sets the allow and deny lists applied to enabled regions
func (e *Engine) WithRegionPolicy(p regions.Policy) *Engine {
	e.regionPolicy = p
	return e
}

// WithBatchSize sets the document batch size for every kind
func (e *Engine) WithBatchSize(size int) *Engine {
	e.batchSize = size
	return e
}

// WithRetry sets the retry policy resyncs run under
func (e *Engine) WithRetry(p retry.Policy) *Engine {
	e.retry = p
	return e
}

// Run executes one export run. Account and kind level failures are
// recorded in the report and the run continues; only credential
// failures, an unknown requested kind, and context cancellation abort.
func (e *Engine) Run(ctx context.Context, req Request) (*Report, error) {
	report := &Report{
		StartTime: time.Now(),
		Success:   true,
	}

	ctx, espan := telemetry.StartExport(ctx, req.Kinds)
	defer func() {
		espan.SetTotals(int64(report.Accounts), int64(report.Regions),
			int64(report.Documents), int64(report.Batches),
			int64(report.Denied), int64(len(report.Failures)))
		espan.End()
	}()

	e.logger.WithContext(ctx).Info().
		Strs("kinds", req.Kinds).
		Msg("starting export run")

	selected, err := e.selectKinds(req.Kinds)
	if err != nil {
		report.Success = false
		return e.finishRun(report), err
	}

	if err := e.strategy.Healthcheck(ctx); err != nil {
		report.Success = false
		return e.finishRun(report), fmt.Errorf("healthcheck failed: %w", err)
	}

	sessions, err := e.strategy.Sessions(ctx)
	if err != nil {
		report.Success = false
		return e.finishRun(report), fmt.Errorf("resolve sessions: %w", err)
	}
	report.Accounts = len(sessions)
	telemetry.RecordAccountsHealthy(ctx, int64(len(sessions)))

	for _, sess := range sessions {
		if err := ctx.Err(); err != nil {
			report.Success = false
			return e.finishRun(report), err
		}
		e.runAccount(ctx, sess, selected, req, report)
	}

	if err := ctx.Err(); err != nil {
		report.Success = false
		return e.finishRun(report), err
	}
	return e.finishRun(report), nil
}

// selectKinds resolves requested type names against the catalog. An
// empty request selects everything, in type-name order.
func (e *Engine) selectKinds(names []string) ([]kinds.Kind, error) {
	if len(names) == 0 {
		var all []kinds.Kind
		e.catalog.Ascend(func(k kinds.Kind) bool {
			all = append(all, k)
			return true
		})
		return all, nil
	}

	selected := make([]kinds.Kind, 0, len(names))
	for _, name := range names {
		k, ok := e.catalog.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKind, name)
		}
		selected = append(selected, k)
	}
	return selected, nil
}

// runAccount resolves the account's regions and resyncs every selected
// kind, global kinds once and regional kinds per region.
func (e *Engine) runAccount(ctx context.Context, sess session.Session, selected []kinds.Kind, req Request, report *Report) {
	base := e.newClients(sess, globalRegion)

	allowed, err := e.resolver.Allowed(ctx, base.Account, sess.Account.ID, e.regionPolicy)
	if err != nil {
		e.logger.LogAccountSkipped(ctx, sess.Account.ID, err)
		telemetry.RecordAccountSkippedEvent(trace.SpanFromContext(ctx), sess.Account.ID, err.Error())
		report.fail("", sess.Account.ID, "", err)
		return
	}
	report.Regions += len(allowed)
	telemetry.RecordRegionsSelected(ctx, sess.Account.ID, int64(len(allowed)))

	for _, k := range selected {
		if ctx.Err() != nil {
			return
		}
		if k.Global() {
			e.runKind(ctx, sess, k, globalRegion, base, req, report)
		}
	}

	for _, region := range allowed {
		clients := e.newClients(sess, region)
		for _, k := range selected {
			if ctx.Err() != nil {
				return
			}
			if k.Global() {
				continue
			}
			e.runKind(ctx, sess, k, region, clients, req, report)
		}
	}
}

// runKind resyncs one kind in one account and region. Failure skips
// only this unit.
func (e *Engine) runKind(ctx context.Context, sess session.Session, k kinds.Kind, region string, clients *awsapi.Registry, req Request, report *Report) {
	start := time.Now()
	ctx, span := telemetry.StartResync(ctx, k.Type(), sess.Account.ID, region)
	e.logger.LogResyncStart(ctx, k.Type(), sess.Account.ID, region)

	sc := kinds.Scope{
		Account:   sess.Account,
		Region:    region,
		Clients:   clients,
		BatchSize: e.batchSize,
		Include:   req.Include[k.Type()],
		Retry:     e.retry,
		Log:       e.logger,
	}

	docsBefore := report.Documents
	batchesBefore := report.Batches

	err := k.Resync(ctx, sc, e.emitFor(k.Type(), report))
	duration := time.Since(start).Seconds()
	documents := report.Documents - docsBefore
	batches := report.Batches - batchesBefore

	telemetry.RecordResyncDuration(ctx, k.Type(), region, duration)
	telemetry.RecordError(span, err)
	telemetry.EndResync(span, int64(documents), int64(batches), duration)

	if err != nil {
		e.logger.WithContext(ctx).Error().
			Err(err).
			Str("kind", k.Type()).
			Str("account_id", sess.Account.ID).
			Str("region", region).
			Msg("resync failed")
		report.fail(k.Type(), sess.Account.ID, region, err)
		return
	}

	e.logger.LogResyncComplete(ctx, k.Type(), documents, batches, duration)
}

// emitFor builds the emit path for one kind: filter each document, then
// hand the survivors to the emitter as one batch.
func (e *Engine) emitFor(kind string, report *Report) kinds.EmitFunc {
	return func(ctx context.Context, docs []types.Document) error {
		kept := docs
		if e.filter != nil && e.filter.Loaded() {
			kept = make([]types.Document, 0, len(docs))
			for _, doc := range docs {
				verdict, err := e.filter.Admit(ctx, doc)
				if err != nil {
					return fmt.Errorf("export filter: %w", err)
				}
				if !verdict.Allow {
					report.Denied++
					telemetry.RecordDocumentDenied(ctx, doc.Type)
					continue
				}
				kept = append(kept, doc)
			}
		}
		if len(kept) == 0 {
			return nil
		}

		if err := e.emitter.Emit(ctx, emitter.Batch{Kind: kind, Docs: kept}); err != nil {
			return err
		}
		report.Documents += len(kept)
		report.Batches++
		telemetry.RecordDocumentsExported(ctx, kind, int64(len(kept)))
		return nil
	}
}

func (e *Engine) finishRun(report *Report) *Report {
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	if len(report.Failures) > 0 {
		report.Success = false
	}

	e.logger.Info().
		Int("accounts", report.Accounts).
		Int("regions", report.Regions).
		Int("documents", report.Documents).
		Int("batches", report.Batches).
		Int("denied", report.Denied).
		Int("failures", len(report.Failures)).
		Dur("duration", report.Duration).
		Bool("success", report.Success).
		Msg("export run complete")

	return report
}
