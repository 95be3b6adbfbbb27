// Package action defines the enrichment calls a resource kind can run
// against discovered identifiers, and the map that selects them.
package action

import (
	"context"
	"fmt"
)

// Result is a partial property dictionary produced by one action for one
// identifier. Results from several actions are merged by the builder.
type Result map[string]any

// Runner executes one enrichment call for a slice of identifiers and
// returns one result per identifier, position aligned.
type Runner interface {
	Name() string
	Run(ctx context.Context, identifiers []string) ([]Result, error)
}

type singleRunner struct {
	name string
	fn   func(ctx context.Context, identifier string) (Result, error)
}

// Single wraps a per-identifier call as a Runner. The wrapped function is
// invoked once per identifier in order.
func Single(name string, fn func(ctx context.Context, identifier string) (Result, error)) Runner {
	return singleRunner{name: name, fn: fn}
}

func (r singleRunner) Name() string { return r.name }

func (r singleRunner) Run(ctx context.Context, identifiers []string) ([]Result, error) {
	results := make([]Result, 0, len(identifiers))
	for _, id := range identifiers {
		res, err := r.fn(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s failed for %q: %w", r.name, id, err)
		}
		results = append(results, res)
	}
	return results, nil
}

type batchRunner struct {
	name string
	fn   func(ctx context.Context, identifiers []string) ([]Result, error)
}

// Batch wraps a call that handles a whole identifier slice at once.
func Batch(name string, fn func(ctx context.Context, identifiers []string) ([]Result, error)) Runner {
	return batchRunner{name: name, fn: fn}
}

func (r batchRunner) Name() string { return r.name }

func (r batchRunner) Run(ctx context.Context, identifiers []string) ([]Result, error) {
	return r.fn(ctx, identifiers)
}

// Decl is one merged action together with its selection class. Default
// actions must succeed; option failures only drop their own results.
type Decl struct {
	Runner  Runner
	Default bool
}

// Map holds the actions a kind always runs and the ones a caller can
// opt into. Declaration order is preserved through Merge, which keeps
// property merging deterministic.
type Map struct {
	defaults []Runner
	options  []Runner
}

// NewMap creates a map with the given default actions.
func NewMap(defaults ...Runner) *Map {
	return &Map{defaults: defaults}
}

// WithOptions adds opt-in actions and returns the map for chaining.
func (m *Map) WithOptions(options ...Runner) *Map {
	m.options = append(m.options, options...)
	return m
}

// Merge returns the defaults followed by every option whose name appears
// in include. Both lists keep declaration order; unknown names are
// ignored and duplicates select an option only once.
func (m *Map) Merge(include []string) []Decl {
	want := make(map[string]bool, len(include))
	for _, name := range include {
		want[name] = true
	}

	merged := make([]Decl, 0, len(m.defaults)+len(m.options))
	for _, r := range m.defaults {
		merged = append(merged, Decl{Runner: r, Default: true})
	}
	for _, r := range m.options {
		if want[r.Name()] {
			merged = append(merged, Decl{Runner: r, Default: false})
		}
	}
	return merged
}

// DefaultNames lists the default action names in declaration order.
func (m *Map) DefaultNames() []string {
	names := make([]string, 0, len(m.defaults))
	for _, r := range m.defaults {
		names = append(names, r.Name())
	}
	return names
}

// OptionNames lists the opt-in action names in declaration order.
func (m *Map) OptionNames() []string {
	names := make([]string, 0, len(m.options))
	for _, r := range m.options {
		names = append(names, r.Name())
	}
	return names
}
