package streamline

import "context"

// NewFilter returns a stage that emits the item unchanged iff pred returns
// true, and nothing otherwise. pred must be side-effect free.
func NewFilter[T any](pred func(T) bool) Stage[T, T] {
	return StageFunc[T, T](func(_ context.Context, item T) (Emission[T], error) {
		if !pred(item) {
			return Skip[T](), nil
		}

		return Emit(item), nil
	})
}

// NewMap returns a stage that emits exactly one item, fn(item). Any error
// returned by fn aborts the pipeline.
func NewMap[I, O any](fn func(ctx context.Context, item I) (O, error)) Stage[I, O] {
	return StageFunc[I, O](func(ctx context.Context, item I) (Emission[O], error) {
		out, err := fn(ctx, item)
		if err != nil {
			return Skip[O](), err
		}

		return Emit(out), nil
	})
}

// batchStage accumulates items and emits them as groups of size items.
// A non-empty pending group is released by Flush when the upstream is
// exhausted, so it never emits an empty group and the concatenation of all
// groups equals the input sequence.
type batchStage[T any] struct {
	size    int
	pending []T
}

// NewBatch returns a stage that groups items into slices of size items, the
// last group possibly shorter. size must be greater than 0.
func NewBatch[T any](size int) (Stage[T, []T], error) {
	if size <= 0 {
		return nil, ErrBatchSize
	}

	return &batchStage[T]{size: size}, nil
}

func (b *batchStage[T]) Process(_ context.Context, item T) (Emission[[]T], error) {
	b.pending = append(b.pending, item)
	if len(b.pending) < b.size {
		return Skip[[]T](), nil
	}

	group := b.pending
	b.pending = nil

	return Emit(group), nil
}

func (b *batchStage[T]) Flush(_ context.Context) (Emission[[]T], error) {
	if len(b.pending) == 0 {
		return Skip[[]T](), nil
	}

	group := b.pending
	b.pending = nil

	return Emit(group), nil
}
