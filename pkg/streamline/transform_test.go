package streamline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asears/go-streamline/pkg/streamline"
)

func TestFilterKeepsMatchingItems(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input []int
		pred  func(int) bool
		want  []int
	}{
		"even":       {input: []int{1, 2, 3, 4, 5, 6}, pred: func(v int) bool { return v%2 == 0 }, want: []int{2, 4, 6}},
		"all":        {input: []int{1, 2, 3}, pred: func(int) bool { return true }, want: []int{1, 2, 3}},
		"none":       {input: []int{1, 2, 3}, pred: func(int) bool { return false }, want: nil},
		"empty":      {input: nil, pred: func(int) bool { return true }, want: nil},
		"negatives":  {input: []int{-2, -1, 0, 1, 2}, pred: func(v int) bool { return v > 0 }, want: []int{1, 2}},
		"singleitem": {input: []int{7}, pred: func(v int) bool { return v == 7 }, want: []int{7}},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := streamline.New[int]().
				Filter(tc.pred).
				Collect(context.Background(), streamline.SliceSource(tc.input))
			require.NoError(t, err)

			// Equivalent to keeping every item the predicate accepts, in order.
			var want []int
			for _, v := range tc.input {
				if tc.pred(v) {
					want = append(want, v)
				}
			}
			assert.Equal(t, want, got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMapProjectsEveryItem(t *testing.T) {
	t.Parallel()

	got, err := streamline.New[int]().
		Map(func(_ context.Context, v int) (int, error) { return v * v, nil }).
		Collect(context.Background(), streamline.SliceSource([]int{1, 2, 3, 4}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 9, 16}, got)
}

func TestMapError(t *testing.T) {
	t.Parallel()

	_, err := streamline.New[int]().
		Map(func(_ context.Context, v int) (int, error) {
			if v == 3 {
				return 0, assert.AnError
			}

			return v, nil
		}).
		Collect(context.Background(), streamline.SliceSource([]int{1, 2, 3}))
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBatchGroups(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		total int
		size  int
	}{
		"exact multiple":   {total: 9, size: 3},
		"short last group": {total: 8, size: 3},
		"size one":         {total: 4, size: 1},
		"size above total": {total: 2, size: 10},
		"single group":     {total: 5, size: 5},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			input := make([]int, tc.total)
			for i := range input {
				input[i] = i
			}

			groups, err := streamline.Batch(streamline.New[int](), tc.size).
				Collect(context.Background(), streamline.SliceSource(input))
			require.NoError(t, err)

			wantGroups := (tc.total + tc.size - 1) / tc.size
			require.Len(t, groups, wantGroups)

			var flat []int
			for i, group := range groups {
				require.NotEmpty(t, group)
				if i < len(groups)-1 {
					assert.Len(t, group, tc.size)
				}
				flat = append(flat, group...)
			}
			assert.Equal(t, input, flat)
		})
	}
}

func TestBatchEmptyInput(t *testing.T) {
	t.Parallel()

	groups, err := streamline.Batch(streamline.New[int](), 3).
		Collect(context.Background(), streamline.SliceSource[int](nil))
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestNewBatchInvalidSize(t *testing.T) {
	t.Parallel()

	_, err := streamline.NewBatch[int](0)
	assert.ErrorIs(t, err, streamline.ErrBatchSize)

	_, err = streamline.NewBatch[int](-2)
	assert.ErrorIs(t, err, streamline.ErrBatchSize)
}
