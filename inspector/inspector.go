// Package inspector fans enrichment actions out over discovered
// identifiers and collects their partial results.
//
// Failure isolation: an option action that fails only loses its own
// results. A default action that fails aborts the identifier (single) or
// the whole batch (batch), because documents built without their default
// properties would be misleading.
package inspector

import (
	"context"
	"fmt"
	"sync"

	"github.com/yairfalse/harava/action"
	"github.com/yairfalse/harava/telemetry"
)

// slot is one action's outcome in a fan-out. Workers write only their
// own slot, so declaration order survives concurrent completion.
type slot struct {
	decl    action.Decl
	results []action.Result
	err     error
}

func runAll(ctx context.Context, decls []action.Decl, identifiers []string) []slot {
	slots := make([]slot, len(decls))

	var wg sync.WaitGroup
	for i, d := range decls {
		slots[i].decl = d
		wg.Add(1)
		go func(i int, d action.Decl) {
			defer wg.Done()
			results, err := d.Runner.Run(ctx, identifiers)
			slots[i].results = results
			slots[i].err = err
		}(i, d)
	}
	wg.Wait()

	return slots
}

// Single inspects one identifier at a time.
type Single struct {
	actions *action.Map
	log     *telemetry.Logger
}

// NewSingle creates a single-identifier inspector over the given map.
func NewSingle(actions *action.Map, log *telemetry.Logger) *Single {
	if log == nil {
		log = telemetry.NewLogger("inspector")
	}
	return &Single{actions: actions, log: log}
}

// Inspect runs the merged actions for one identifier concurrently and
// returns their partial results in declaration order. Option failures
// are logged and excluded; a default failure fails the identifier.
func (s *Single) Inspect(ctx context.Context, identifier string, include []string) ([]action.Result, error) {
	decls := s.actions.Merge(include)
	if len(decls) == 0 {
		return nil, nil
	}

	results := make([]action.Result, 0, len(decls))
	for _, sl := range runAll(ctx, decls, []string{identifier}) {
		name := sl.decl.Runner.Name()
		if sl.err != nil {
			if sl.decl.Default {
				telemetry.RecordActionFailure(ctx, name, "default")
				return nil, fmt.Errorf("default action %s for %q: %w", name, identifier, sl.err)
			}
			telemetry.RecordActionFailure(ctx, name, "option")
			s.log.LogActionFailure(ctx, name, identifier, sl.err)
			continue
		}
		if len(sl.results) > 0 && sl.results[0] != nil {
			results = append(results, sl.results[0])
		}
	}
	return results, nil
}

// Batch inspects a whole identifier batch with one action invocation per
// action.
type Batch struct {
	actions *action.Map
	log     *telemetry.Logger
}

// NewBatch creates a batch inspector over the given map.
func NewBatch(actions *action.Map, log *telemetry.Logger) *Batch {
	if log == nil {
		log = telemetry.NewLogger("inspector")
	}
	return &Batch{actions: actions, log: log}
}

// InspectBatch runs every merged action once over the identifier slice,
// concurrently across actions, and transposes the columns into one row
// of partial results per identifier. A failed option drops its column; a
// failed default fails the whole batch. Identifiers with no surviving
// results still get a row, which builds into a metadata-only document.
func (b *Batch) InspectBatch(ctx context.Context, identifiers []string, include []string) ([][]action.Result, error) {
	if len(identifiers) == 0 {
		return nil, nil
	}

	rows := make([][]action.Result, len(identifiers))

	decls := b.actions.Merge(include)
	if len(decls) == 0 {
		return rows, nil
	}

	for _, sl := range runAll(ctx, decls, identifiers) {
		name := sl.decl.Runner.Name()
		if sl.err != nil {
			if sl.decl.Default {
				telemetry.RecordActionFailure(ctx, name, "default")
				return nil, fmt.Errorf("default action %s for batch of %d: %w", name, len(identifiers), sl.err)
			}
			telemetry.RecordActionFailure(ctx, name, "option")
			b.log.WithContext(ctx).Warn().
				Err(sl.err).
				Str("action", name).
				Int("batch_size", len(identifiers)).
				Msg("option action failed, column dropped")
			continue
		}
		if len(sl.results) != len(identifiers) {
			b.log.WithContext(ctx).Warn().
				Str("action", name).
				Int("expected", len(identifiers)).
				Int("got", len(sl.results)).
				Msg("action returned short column")
		}
		for i := range identifiers {
			if i < len(sl.results) && sl.results[i] != nil {
				rows[i] = append(rows[i], sl.results[i])
			}
		}
	}
	return rows, nil
}
