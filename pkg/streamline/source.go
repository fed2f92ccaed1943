package streamline

import "context"

// Source produces the items a pipeline consumes. Next returns the next item,
// or ok=false once the source is exhausted. A source is iterated at most
// once.
type Source[T any] interface {
	Next(ctx context.Context) (item T, ok bool, err error)
	Close() error
}

type sliceSource[T any] struct {
	items []T
	idx   int
}

// SliceSource returns a source backed by an in-memory slice.
func SliceSource[T any](items []T) Source[T] {
	return &sliceSource[T]{items: items}
}

func (s *sliceSource[T]) Next(_ context.Context) (T, bool, error) {
	if s.idx >= len(s.items) {
		var zero T

		return zero, false, nil
	}

	item := s.items[s.idx]
	s.idx++

	return item, true, nil
}

func (s *sliceSource[T]) Close() error { return nil }

type funcSource[T any] struct {
	fn func(ctx context.Context) (T, bool, error)
}

// SourceFunc adapts a generator function to the Source interface. fn must
// return ok=false once exhausted and keep returning it afterwards.
func SourceFunc[T any](fn func(ctx context.Context) (T, bool, error)) Source[T] {
	return &funcSource[T]{fn: fn}
}

func (s *funcSource[T]) Next(ctx context.Context) (T, bool, error) {
	return s.fn(ctx)
}

func (s *funcSource[T]) Close() error { return nil }

type chanSource[T any] struct {
	ch <-chan T
}

// ChanSource returns a source that drains a channel until it is closed.
func ChanSource[T any](ch <-chan T) Source[T] {
	return &chanSource[T]{ch: ch}
}

func (s *chanSource[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case item, open := <-s.ch:
		if !open {
			return zero, false, nil
		}

		return item, true, nil
	}
}

func (s *chanSource[T]) Close() error { return nil }
