package action

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleRunsPerIdentifier(t *testing.T) {
	var seen []string
	r := Single("Describe", func(_ context.Context, id string) (Result, error) {
		seen = append(seen, id)
		return Result{"id": id}, nil
	})

	results, err := r.Run(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"a", "b", "c"}, seen)
	assert.Equal(t, "b", results[1]["id"])
}

func TestSingleStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	r := Single("Describe", func(_ context.Context, id string) (Result, error) {
		calls++
		if id == "b" {
			return nil, boom
		}
		return Result{}, nil
	})

	_, err := r.Run(context.Background(), []string{"a", "b", "c"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestBatchPassesWholeSlice(t *testing.T) {
	r := Batch("Tags", func(_ context.Context, ids []string) ([]Result, error) {
		results := make([]Result, len(ids))
		for i, id := range ids {
			results[i] = Result{"arn": id}
		}
		return results, nil
	})

	results, err := r.Run(context.Background(), []string{"arn:1", "arn:2"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "arn:2", results[1]["arn"])
}

func TestMergeKeepsDeclarationOrder(t *testing.T) {
	noop := func(_ context.Context, _ string) (Result, error) { return Result{}, nil }
	m := NewMap(Single("Describe", noop)).
		WithOptions(Single("Tags", noop), Single("Policy", noop), Single("Lifecycle", noop))

	merged := m.Merge([]string{"Lifecycle", "Tags"})

	require.Len(t, merged, 3)
	assert.Equal(t, "Describe", merged[0].Runner.Name())
	assert.True(t, merged[0].Default)
	assert.Equal(t, "Tags", merged[1].Runner.Name())
	assert.False(t, merged[1].Default)
	assert.Equal(t, "Lifecycle", merged[2].Runner.Name())
}

func TestMergeIgnoresUnknownAndDuplicates(t *testing.T) {
	noop := func(_ context.Context, _ string) (Result, error) { return Result{}, nil }
	m := NewMap(Single("Describe", noop)).WithOptions(Single("Tags", noop))

	merged := m.Merge([]string{"Tags", "Tags", "NoSuchAction"})

	require.Len(t, merged, 2)
	assert.Equal(t, "Tags", merged[1].Runner.Name())
}

func TestMergeEmptyInclude(t *testing.T) {
	noop := func(_ context.Context, _ string) (Result, error) { return Result{}, nil }
	m := NewMap(Single("Describe", noop)).WithOptions(Single("Tags", noop))

	merged := m.Merge(nil)

	require.Len(t, merged, 1)
	assert.Equal(t, "Describe", merged[0].Runner.Name())
}

func TestMapNames(t *testing.T) {
	noop := func(_ context.Context, _ string) (Result, error) { return Result{}, nil }
	m := NewMap(Single("Describe", noop)).WithOptions(Single("Tags", noop), Single("Policy", noop))

	assert.Equal(t, []string{"Describe"}, m.DefaultNames())
	assert.Equal(t, []string{"Tags", "Policy"}, m.OptionNames())
}
