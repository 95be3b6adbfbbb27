// Package resync drives one resource kind through the list, materialize,
// emit cycle that every export shares.
package resync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yairfalse/harava/paginator"
	"github.com/yairfalse/harava/retry"
	"github.com/yairfalse/harava/telemetry"
	"github.com/yairfalse/harava/types"
)

// DefaultConcurrency bounds in-flight materialize calls inside a batch.
const DefaultConcurrency = 8

// MaterializeFunc turns one listed item into a document. It may call the
// provider again or just reshape what listing already returned.
type MaterializeFunc[T any] func(ctx context.Context, item T) (types.Document, error)

// BatchMaterializeFunc turns a whole batch into documents with a single
// round trip. Used by kinds whose describe API accepts many identifiers.
type BatchMaterializeFunc[T any] func(ctx context.Context, items []T) ([]types.Document, error)

// EmitFunc receives each completed batch of documents.
type EmitFunc func(ctx context.Context, docs []types.Document) error

// Stats summarizes one handler run.
type Stats struct {
	Listed   int
	Emitted  int
	Skipped  int
	Batches  int
	Duration time.Duration
}

// Handler runs the cycle for one kind in one account and region. Batches
// are processed sequentially; concurrency happens only inside a batch.
//
// Listing errors abort the run. A materialize failure that survives the
// retry policy costs only the items it covered. Emit errors abort the run.
type Handler[T any] struct {
	// Kind names the resource type for logs and errors.
	Kind string

	// Pager supplies listed items in fixed-size batches.
	Pager *paginator.BatchPager[T]

	// Exactly one of Materialize or MaterializeBatch must be set.
	Materialize      MaterializeFunc[T]
	MaterializeBatch BatchMaterializeFunc[T]

	// Concurrency bounds parallel Materialize calls. Ignored for
	// MaterializeBatch. Zero means DefaultConcurrency.
	Concurrency int

	// Retry wraps every materialize call. Zero value retries nothing.
	Retry retry.Policy

	Log *telemetry.Logger
}

// Run drains the pager, materializes each batch, and emits the results.
func (h *Handler[T]) Run(ctx context.Context, emit EmitFunc) (Stats, error) {
	if h.Materialize == nil && h.MaterializeBatch == nil {
		return Stats{}, fmt.Errorf("resync %s: no materializer configured", h.Kind)
	}
	if h.Log == nil {
		h.Log = telemetry.NewLogger("resync")
	}

	start := time.Now()
	stats := Stats{}

	for h.Pager.HasMore() {
		batch, err := h.Pager.Next(ctx)
		if err != nil {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("list %s: %w", h.Kind, err)
		}
		if len(batch) == 0 {
			continue
		}
		stats.Listed += len(batch)

		var docs []types.Document
		if h.MaterializeBatch != nil {
			docs = h.runBatch(ctx, batch)
		} else {
			docs = h.runEach(ctx, batch)
		}
		stats.Skipped += len(batch) - len(docs)

		if len(docs) == 0 {
			continue
		}
		if err := emit(ctx, docs); err != nil {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("emit %s: %w", h.Kind, err)
		}
		stats.Emitted += len(docs)
		stats.Batches++
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// runBatch materializes the batch in one call. On final failure the whole
// batch is skipped and the run continues.
func (h *Handler[T]) runBatch(ctx context.Context, batch []T) []types.Document {
	var docs []types.Document
	err := h.Retry.Do(ctx, func(ctx context.Context) error {
		var merr error
		docs, merr = h.MaterializeBatch(ctx, batch)
		return merr
	})
	if err != nil {
		h.Log.WithContext(ctx).Warn().
			Err(err).
			Str("kind", h.Kind).
			Int("items", len(batch)).
			Msg("batch skipped")
		return nil
	}
	return docs
}

// runEach materializes items concurrently, preserving listing order in the
// output. Failed items are logged and dropped.
func (h *Handler[T]) runEach(ctx context.Context, batch []T) []types.Document {
	concurrency := h.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	docs := make([]types.Document, len(batch))
	done := make([]bool, len(batch))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, item := range batch {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-sem }()

			var doc types.Document
			err := h.Retry.Do(ctx, func(ctx context.Context) error {
				var merr error
				doc, merr = h.Materialize(ctx, item)
				return merr
			})
			if err != nil {
				h.Log.WithContext(ctx).Warn().
					Err(err).
					Str("kind", h.Kind).
					Msg("item skipped")
				return
			}
			docs[i] = doc
			done[i] = true
		}(i, item)
	}
	wg.Wait()

	out := make([]types.Document, 0, len(batch))
	for i := range docs {
		if done[i] {
			out = append(out, docs[i])
		}
	}
	return out
}
