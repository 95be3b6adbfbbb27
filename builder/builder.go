// Package builder assembles exported documents from partial action results.
package builder

import (
	"github.com/yairfalse/harava/action"
	"github.com/yairfalse/harava/types"
)

// Builder accumulates partial property results for one resource and
// produces its wire document. Results merge in append order, later
// values win per key. Build is idempotent: the first call fixes the
// document and every later call returns the same instance.
type Builder struct {
	typeName  string
	results   []action.Result
	accountID string
	region    string
	built     *types.Document
}

// New creates a builder for the given resource type name.
func New(typeName string) *Builder {
	return &Builder{typeName: typeName}
}

// WithProperties appends partial results to merge, in order.
func (b *Builder) WithProperties(results ...action.Result) *Builder {
	b.results = append(b.results, results...)
	return b
}

// WithAccount sets the owning account stamped into the document metadata.
func (b *Builder) WithAccount(accountID string) *Builder {
	b.accountID = accountID
	return b
}

// WithRegion sets the region stamped into the document metadata.
func (b *Builder) WithRegion(region string) *Builder {
	b.region = region
	return b
}

// Build merges the accumulated results and returns the document. The
// account and region are always stamped, even when no action produced
// properties.
func (b *Builder) Build() *types.Document {
	if b.built != nil {
		return b.built
	}

	props := make(map[string]any)
	for _, result := range b.results {
		for key, value := range result {
			props[key] = value
		}
	}

	b.built = &types.Document{
		Type:       b.typeName,
		Properties: props,
		AccountID:  b.accountID,
		Region:     b.region,
	}
	return b.built
}
