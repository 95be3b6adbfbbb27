// Package emitter defines the output backends for exported documents.
package emitter

import (
	"context"

	"github.com/yairfalse/harava/types"
)

// Batch is one kind's worth of documents handed to the backends.
type Batch struct {
	Kind string
	Docs []types.Document
}

// Emitter outputs document batches to a backend.
type Emitter interface {
	// Emit sends one batch to the backend.
	Emit(ctx context.Context, batch Batch) error

	// Close flushes and releases the backend.
	Close() error
}

// MultiEmitter fans out to multiple emitters.
type MultiEmitter struct {
	emitters []Emitter
}

// NewMultiEmitter creates an emitter that sends to multiple backends.
func NewMultiEmitter(emitters ...Emitter) *MultiEmitter {
	return &MultiEmitter{emitters: emitters}
}

// Emit sends to all emitters, returns first error.
func (m *MultiEmitter) Emit(ctx context.Context, batch Batch) error {
	for _, e := range m.emitters {
		if err := e.Emit(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all emitters.
func (m *MultiEmitter) Close() error {
	for _, e := range m.emitters {
		if err := e.Close(); err != nil {
			return err
		}
	}
	return nil
}
