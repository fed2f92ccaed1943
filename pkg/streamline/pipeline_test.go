package streamline_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asears/go-streamline/pkg/streamline"
	"github.com/asears/go-streamline/pkg/streamline/measure"
)

func TestPipelineScenario(t *testing.T) {
	t.Parallel()

	base := streamline.New[int]().
		Filter(func(v int) bool { return v%2 == 0 }).
		Map(func(_ context.Context, v int) (int, error) { return v * 2, nil })

	got, err := streamline.Batch(base, 3).
		Collect(context.Background(), streamline.SliceSource([]int{1, 2, 3, 4, 5, 6, 7, 8}))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{4, 8, 12}, {16}}, got)
}

func TestCollectEmptySource(t *testing.T) {
	t.Parallel()

	got, err := streamline.New[string]().
		Collect(context.Background(), streamline.SliceSource[string](nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatchInvokedOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var seen error

	got, err := streamline.New[int]().
		Map(func(_ context.Context, v int) (int, error) {
			if v == 5 {
				return 0, assert.AnError
			}

			return v, nil
		}).
		Catch(func(err error) {
			calls.Add(1)
			seen = err
		}).
		Collect(context.Background(), streamline.SliceSource([]int{1, 2, 3, 4, 5, 6}))

	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, got)
	assert.EqualValues(t, 1, calls.Load())
	assert.ErrorIs(t, seen, assert.AnError)

	var stageErr *streamline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "map-1", stageErr.Name)
}

func TestCatchOrder(t *testing.T) {
	t.Parallel()

	var order []string

	_, err := streamline.New[int]().
		Map(func(_ context.Context, _ int) (int, error) { return 0, assert.AnError }).
		Catch(func(error) { order = append(order, "first") }).
		Catch(func(error) { order = append(order, "second") }).
		Collect(context.Background(), streamline.SliceSource([]int{1}))

	require.Error(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestConfigurationErrorFailsFast(t *testing.T) {
	t.Parallel()

	var processed atomic.Int32

	base := streamline.New[int]().
		Map(func(_ context.Context, v int) (int, error) {
			processed.Add(1)

			return v, nil
		})

	_, err := streamline.Batch(base, 0).
		Collect(context.Background(), streamline.SliceSource([]int{1, 2, 3}))

	require.Error(t, err)
	assert.ErrorIs(t, err, streamline.ErrBatchSize)
	assert.Zero(t, processed.Load(), "no item may be processed after a configuration error")
}

func TestExecuteSinkOutputNotRolledBack(t *testing.T) {
	t.Parallel()

	var written []int
	sink := streamline.SinkFunc[int](func(_ context.Context, v int) error {
		written = append(written, v)

		return nil
	})

	err := streamline.New[int]().
		Map(func(_ context.Context, v int) (int, error) {
			if v == 3 {
				return 0, assert.AnError
			}

			return v, nil
		}).
		Execute(context.Background(), streamline.SliceSource([]int{1, 2, 3, 4}), sink)

	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, written)
}

func TestExecuteNilSourceAndSink(t *testing.T) {
	t.Parallel()

	err := streamline.New[int]().Execute(context.Background(), nil, &streamline.Collector[int]{})
	assert.ErrorIs(t, err, streamline.ErrSourceMustBeSet)

	err = streamline.New[int]().Execute(context.Background(), streamline.SliceSource([]int{1}), nil)
	assert.ErrorIs(t, err, streamline.ErrSinkMustBeSet)
}

func TestExecuteCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := streamline.New[int]().
		Collect(ctx, streamline.SliceSource([]int{1, 2, 3}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCancelStopsPullingFromSource(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	var pulled int
	src := streamline.SourceFunc(func(context.Context) (int, bool, error) {
		pulled++
		if pulled == 5 {
			cancel()
		}

		return pulled, true, nil
	})

	_, err := streamline.New[int]().Collect(ctx, src)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, pulled)
}

func TestPipeCustomStage(t *testing.T) {
	t.Parallel()

	duplicate := streamline.StageFunc[int, int](func(_ context.Context, v int) (streamline.Emission[int], error) {
		return streamline.Emit(v, v), nil
	})

	got, err := streamline.New[int]().
		Pipe(duplicate).
		Collect(context.Background(), streamline.SliceSource([]int{1, 2}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 2, 2}, got)
}

func TestPipeNilStage(t *testing.T) {
	t.Parallel()

	_, err := streamline.New[int]().
		Pipe(nil).
		Collect(context.Background(), streamline.SliceSource([]int{1}))
	assert.ErrorIs(t, err, streamline.ErrStageMustBeSet)
}

func TestMapToChangesItemType(t *testing.T) {
	t.Parallel()

	got, err := streamline.MapTo(streamline.New[int](), func(_ context.Context, v int) (string, error) {
		return string(rune('a' + v)), nil
	}).Collect(context.Background(), streamline.SliceSource([]int{0, 1, 2}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestChanSource(t *testing.T) {
	t.Parallel()

	ch := make(chan int, 3)
	ch <- 1
	ch <- 2
	ch <- 3
	close(ch)

	got, err := streamline.New[int]().
		Collect(context.Background(), streamline.ChanSource(ch))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestWithMeasure(t *testing.T) {
	t.Parallel()

	msr := measure.New()

	_, err := streamline.New[int](streamline.WithMeasure(msr)).
		Filter(func(v int) bool { return v > 2 }).
		Map(func(_ context.Context, v int) (int, error) { return v, nil }).
		Collect(context.Background(), streamline.SliceSource([]int{1, 2, 3, 4, 5}))
	require.NoError(t, err)

	filterMetric := msr.Metric("filter-1")
	require.NotNil(t, filterMetric)
	assert.EqualValues(t, 5, filterMetric.Count())

	mapMetric := msr.Metric("map-2")
	require.NotNil(t, mapMetric)
	assert.EqualValues(t, 3, mapMetric.Count())
}

func TestWithDrawer(t *testing.T) {
	t.Parallel()

	fileName := filepath.Join(t.TempDir(), "pipeline.svg")
	msr := measure.New()

	_, err := streamline.New[int](streamline.WithDrawer(fileName), streamline.WithMeasure(msr)).
		Filter(func(v int) bool { return v%2 == 0 }).
		Map(func(_ context.Context, v int) (int, error) { return v * 2, nil }).
		Collect(context.Background(), streamline.SliceSource([]int{1, 2, 3, 4}))
	require.NoError(t, err)

	content, err := os.ReadFile(fileName)
	require.NoError(t, err)
	assert.Contains(t, string(content), "digraph")
	assert.Contains(t, string(content), "filter-1")
	assert.Contains(t, string(content), "map-2")
	assert.Contains(t, string(content), "sink")
}
