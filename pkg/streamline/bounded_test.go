package streamline_test

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asears/go-streamline/pkg/streamline"
)

func TestNewBoundedInvalidConfig(t *testing.T) {
	t.Parallel()

	fn := func(_ context.Context, v int) (int, error) { return v, nil }

	_, err := streamline.NewBounded(fn, 0, 4)
	assert.ErrorIs(t, err, streamline.ErrMaxConcurrent)

	_, err = streamline.NewBounded(fn, 4, 0)
	assert.ErrorIs(t, err, streamline.ErrHighWaterMark)
}

func TestBoundedConcurrencyCeiling(t *testing.T) {
	t.Parallel()

	const maxConcurrent = 3

	var current, peak atomic.Int64
	fn := func(_ context.Context, v int) (int, error) {
		running := current.Add(1)
		for {
			seen := peak.Load()
			if running <= seen || peak.CompareAndSwap(seen, running) {
				break
			}
		}
		time.Sleep(time.Duration(rand.Intn(3)) * time.Millisecond)
		current.Add(-1)

		return v * 10, nil
	}

	input := make([]int, 50)
	for i := range input {
		input[i] = i
	}

	pipe, stage := streamline.BoundedMap(streamline.New[int](), maxConcurrent, 2, fn)
	got, err := pipe.Collect(context.Background(), streamline.SliceSource(input))
	require.NoError(t, err)

	assert.LessOrEqual(t, peak.Load(), int64(maxConcurrent))
	assert.EqualValues(t, len(input), stage.Stats().Processed())
	assert.Zero(t, stage.Stats().InFlight())

	want := make([]int, len(input))
	for i, v := range input {
		want[i] = v * 10
	}
	assert.Equal(t, want, got)
}

func TestBoundedOutputOrderUnderJitter(t *testing.T) {
	t.Parallel()

	fn := func(_ context.Context, v int) (int, error) {
		// Random completion jitter so operations finish out of order.
		time.Sleep(time.Duration(rand.Intn(4)) * time.Millisecond)

		return v + 100, nil
	}

	input := make([]int, 40)
	for i := range input {
		input[i] = i
	}

	pipe, _ := streamline.BoundedMap(streamline.New[int](), 8, 4, fn)
	got, err := pipe.Collect(context.Background(), streamline.SliceSource(input))
	require.NoError(t, err)

	want := make([]int, len(input))
	for i, v := range input {
		want[i] = v + 100
	}
	assert.Equal(t, want, got)
}

func TestBoundedBackpressureEvents(t *testing.T) {
	t.Parallel()

	fn := func(_ context.Context, v int) (int, error) {
		time.Sleep(2 * time.Millisecond)

		return v, nil
	}

	input := make([]int, 20)
	for i := range input {
		input[i] = i
	}

	pipe, stage := streamline.BoundedMap(streamline.New[int](), 1, 1, fn)
	got, err := pipe.Collect(context.Background(), streamline.SliceSource(input))
	require.NoError(t, err)

	assert.Equal(t, input, got)
	assert.Positive(t, stage.Stats().BackpressureEvents())
	assert.EqualValues(t, len(input), stage.Stats().Processed())
}

func TestBoundedOperationError(t *testing.T) {
	t.Parallel()

	fn := func(_ context.Context, v int) (int, error) {
		if v == 7 {
			return 0, assert.AnError
		}
		time.Sleep(time.Millisecond)

		return v, nil
	}

	var calls atomic.Int32

	input := make([]int, 30)
	for i := range input {
		input[i] = i
	}

	pipe, _ := streamline.BoundedMap(streamline.New[int](), 4, 2, fn)
	got, err := pipe.Catch(func(error) { calls.Add(1) }).
		Collect(context.Background(), streamline.SliceSource(input))

	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, got)
	assert.EqualValues(t, 1, calls.Load())
}

func TestBoundedEmptyInput(t *testing.T) {
	t.Parallel()

	pipe, stage := streamline.BoundedMap(streamline.New[int](), 2, 2, func(_ context.Context, v int) (int, error) {
		return v, nil
	})
	got, err := pipe.Collect(context.Background(), streamline.SliceSource[int](nil))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, stage.Stats().Processed())
}

func TestBoundedThenBatch(t *testing.T) {
	t.Parallel()

	bounded, _ := streamline.BoundedMap(streamline.New[int](), 3, 2, func(_ context.Context, v int) (int, error) {
		time.Sleep(time.Duration(rand.Intn(2)) * time.Millisecond)

		return v, nil
	})

	got, err := streamline.Batch(bounded, 4).
		Collect(context.Background(), streamline.SliceSource([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}, {8, 9}}, got)
}
