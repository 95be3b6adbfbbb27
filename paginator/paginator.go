// Package paginator re-buffers provider pages into fixed-size batches.
//
// Cloud list APIs page on their own terms. Downstream stages want stable
// batch sizes regardless of how the provider paged, so BatchPager drains
// pages into a buffer and cuts batches of exactly the requested size,
// with only the final batch allowed to run short. Relative item order is
// preserved and nothing is retried here; a page error surfaces as is.
package paginator

import "context"

// DefaultBatchSize bounds a batch when the caller does not set one.
const DefaultBatchSize = 100

// PageFunc fetches the next provider page. The second return reports
// whether another page remains.
type PageFunc[T any] func(ctx context.Context) (items []T, more bool, err error)

// FromPages adapts a fixed set of pages into a PageFunc. Single-page
// APIs (ListBuckets, DescribeTrails) and tests use it.
func FromPages[T any](pages [][]T) PageFunc[T] {
	i := 0
	return func(ctx context.Context) ([]T, bool, error) {
		if i >= len(pages) {
			return nil, false, nil
		}
		page := pages[i]
		i++
		return page, i < len(pages), nil
	}
}

// BatchPager yields fixed-size batches from a paged provider. It follows
// the SDK paginator shape: loop on HasMore, pull with Next. Next may
// return an empty batch once when the provider turns out to be exhausted.
type BatchPager[T any] struct {
	fetch     PageFunc[T]
	batchSize int
	buf       []T
	more      bool
	err       error
}

// NewBatchPager creates a pager cutting batches of batchSize items.
// A non-positive size falls back to DefaultBatchSize.
func NewBatchPager[T any](fetch PageFunc[T], batchSize int) *BatchPager[T] {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BatchPager[T]{fetch: fetch, batchSize: batchSize, more: true}
}

// HasMore reports whether Next can still produce items. After a fetch
// error it is false.
func (p *BatchPager[T]) HasMore() bool {
	return p.err == nil && (len(p.buf) > 0 || p.more)
}

// Next returns the next batch. Every batch holds exactly batchSize items
// except the last, which holds whatever remains. A provider error is
// returned unchanged and ends the iteration.
func (p *BatchPager[T]) Next(ctx context.Context) ([]T, error) {
	if p.err != nil {
		return nil, p.err
	}

	for len(p.buf) < p.batchSize && p.more {
		items, more, err := p.fetch(ctx)
		if err != nil {
			p.err = err
			p.more = false
			p.buf = nil
			return nil, err
		}
		p.buf = append(p.buf, items...)
		p.more = more
	}

	if len(p.buf) == 0 {
		return nil, nil
	}

	n := min(p.batchSize, len(p.buf))
	batch := make([]T, n)
	copy(batch, p.buf)
	p.buf = p.buf[n:]
	return batch, nil
}

// Collect drains the pager and returns all non-empty batches.
func Collect[T any](ctx context.Context, p *BatchPager[T]) ([][]T, error) {
	var batches [][]T
	for p.HasMore() {
		batch, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			continue
		}
		batches = append(batches, batch)
	}
	return batches, nil
}
