// Package kinds catalogs the resource types harava exports. Each kind
// declares its type name, its enrichment actions, and how it lists and
// describes resources in one account and region.
package kinds

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yairfalse/harava/action"
	"github.com/yairfalse/harava/awsapi"
	"github.com/yairfalse/harava/builder"
	"github.com/yairfalse/harava/inspector"
	"github.com/yairfalse/harava/paginator"
	"github.com/yairfalse/harava/resync"
	"github.com/yairfalse/harava/retry"
	"github.com/yairfalse/harava/telemetry"
	"github.com/yairfalse/harava/types"
)

// EmitFunc receives each completed document batch.
type EmitFunc = resync.EmitFunc

// Scope is everything a kind needs for one resync: whose resources,
// where, with which clients, and how aggressively.
type Scope struct {
	Account   types.AccountInfo
	Region    string
	Clients   *awsapi.Registry
	BatchSize int
	Include   []string
	Retry     retry.Policy
	Log       *telemetry.Logger
}

// Kind is one exportable resource type.
type Kind interface {
	// Type is the document type name, Provider::Service::Resource.
	Type() string

	// Global kinds exist per account, not per region, and resync once.
	Global() bool

	// Actions lists the kind's default and opt-in enrichment actions.
	// The returned runners are unbound; live clients attach in Resync.
	// A kind with no default runners materializes documents straight
	// from its list call.
	Actions() *action.Map

	// Resync lists, describes, and emits every resource of this kind
	// in the scope.
	Resync(ctx context.Context, sc Scope, emit EmitFunc) error
}

// noClients backs Actions() introspection, where runners are named but
// never run.
var noClients = &awsapi.Registry{}

// toResult reshapes an SDK struct into a property map keyed with the AWS
// API's own member casing. Top-level nil members and response metadata
// are dropped.
func toResult(v any) (action.Result, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode properties: %w", err)
	}
	var out action.Result
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	delete(out, "ResultMetadata")
	for key, value := range out {
		if value == nil {
			delete(out, key)
		}
	}
	return out, nil
}

// alignByID turns a keyed describe response into a position-aligned
// result column. Identifiers missing from the response get a nil slot.
func alignByID[T any](ids []string, byID map[string]T) ([]action.Result, error) {
	results := make([]action.Result, len(ids))
	for i, id := range ids {
		item, ok := byID[id]
		if !ok {
			continue
		}
		res, err := toResult(item)
		if err != nil {
			return nil, err
		}
		results[i] = res
	}
	return results, nil
}

// document assembles one wire document from merged results in the scope.
func document(typeName string, sc Scope, results []action.Result) types.Document {
	return *builder.New(typeName).
		WithAccount(sc.Account.ID).
		WithRegion(sc.Region).
		WithProperties(results...).
		Build()
}

// clampBatch bounds the scope batch size to a per-kind API limit.
func clampBatch(sc Scope, limit int) int {
	size := sc.BatchSize
	if size <= 0 {
		size = paginator.DefaultBatchSize
	}
	if limit > 0 && size > limit {
		return limit
	}
	return size
}

// newPager builds the kind's batch pager. Every page fetched from the
// provider records once.
func newPager[T any](typeName string, sc Scope, limit int, fetch paginator.PageFunc[T]) *paginator.BatchPager[T] {
	counted := func(ctx context.Context) ([]T, bool, error) {
		items, more, err := fetch(ctx)
		if err == nil {
			telemetry.RecordPageFetched(ctx, typeName)
		}
		return items, more, err
	}
	return paginator.NewBatchPager(counted, clampBatch(sc, limit))
}

// singleResync pages identifiers and inspects each one individually,
// with the handler bounding concurrency inside a batch.
func singleResync(ctx context.Context, typeName string, sc Scope, pager *paginator.BatchPager[string], actions *action.Map, emit EmitFunc) error {
	insp := inspector.NewSingle(actions, sc.Log)
	h := &resync.Handler[string]{
		Kind:  typeName,
		Pager: pager,
		Retry: sc.Retry,
		Log:   sc.Log,
		Materialize: func(ctx context.Context, id string) (types.Document, error) {
			results, err := insp.Inspect(ctx, id, sc.Include)
			if err != nil {
				return types.Document{}, err
			}
			return document(typeName, sc, results), nil
		},
	}
	_, err := h.Run(ctx, emit)
	return err
}

// batchResync pages identifiers and inspects each whole batch with one
// action invocation per action.
func batchResync(ctx context.Context, typeName string, sc Scope, pager *paginator.BatchPager[string], actions *action.Map, emit EmitFunc) error {
	insp := inspector.NewBatch(actions, sc.Log)
	h := &resync.Handler[string]{
		Kind:  typeName,
		Pager: pager,
		Retry: sc.Retry,
		Log:   sc.Log,
		MaterializeBatch: func(ctx context.Context, ids []string) ([]types.Document, error) {
			rows, err := insp.InspectBatch(ctx, ids, sc.Include)
			if err != nil {
				return nil, err
			}
			docs := make([]types.Document, 0, len(rows))
			for _, row := range rows {
				docs = append(docs, document(typeName, sc, row))
			}
			return docs, nil
		},
	}
	_, err := h.Run(ctx, emit)
	return err
}

// itemResync materializes documents straight from listed items, with an
// optional inspector pass for the kind's enrichment actions. identify
// extracts the identifier the actions receive.
func itemResync[T any](ctx context.Context, typeName string, sc Scope, pager *paginator.BatchPager[T], actions *action.Map, identify func(T) string, emit EmitFunc) error {
	var insp *inspector.Single
	if actions != nil {
		insp = inspector.NewSingle(actions, sc.Log)
	}
	h := &resync.Handler[T]{
		Kind:  typeName,
		Pager: pager,
		Retry: sc.Retry,
		Log:   sc.Log,
		Materialize: func(ctx context.Context, item T) (types.Document, error) {
			props, err := toResult(item)
			if err != nil {
				return types.Document{}, err
			}
			results := []action.Result{props}
			if insp != nil {
				extra, err := insp.Inspect(ctx, identify(item), sc.Include)
				if err != nil {
					return types.Document{}, err
				}
				results = append(results, extra...)
			}
			return document(typeName, sc, results), nil
		},
	}
	_, err := h.Run(ctx, emit)
	return err
}
