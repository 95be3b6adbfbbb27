package kinds

import (
	"context"
	"sync"

	"github.com/google/btree"

	"github.com/yairfalse/harava/action"
)

// Registry holds kinds ordered by type name, so every walk over the
// catalog is deterministic.
type Registry struct {
	mu    sync.RWMutex
	index *btree.BTreeG[Kind]
}

// NewRegistry creates a registry seeded with the given kinds.
func NewRegistry(kinds ...Kind) *Registry {
	r := &Registry{
		index: btree.NewG[Kind](8, func(a, b Kind) bool {
			return a.Type() < b.Type()
		}),
	}
	for _, k := range kinds {
		r.Register(k)
	}
	return r
}

// Register adds a kind, replacing any previous kind with the same type
// name.
func (r *Registry) Register(k Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index.ReplaceOrInsert(k)
}

// Get looks a kind up by its exact type name.
func (r *Registry) Get(typeName string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index.Get(probeKind(typeName))
}

// Ascend visits every kind in type-name order until fn returns false.
func (r *Registry) Ascend(fn func(Kind) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.index.Ascend(func(k Kind) bool { return fn(k) })
}

// Types lists the registered type names in order.
func (r *Registry) Types() []string {
	var names []string
	r.Ascend(func(k Kind) bool {
		names = append(names, k.Type())
		return true
	})
	return names
}

// Len reports how many kinds are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index.Len()
}

// probeKind is a btree lookup key; only Type is ever called.
type probeKind string

func (p probeKind) Type() string                                  { return string(p) }
func (p probeKind) Global() bool                                  { return false }
func (p probeKind) Actions() *action.Map                          { return nil }
func (p probeKind) Resync(context.Context, Scope, EmitFunc) error { return nil }
