package streamline

import "context"

// Emission is the explicit result of processing one item: zero, one or many
// downstream items. Use Emit and Skip to construct it; a nil return value
// never means "skip".
type Emission[O any] struct {
	items []O
}

// Emit returns an Emission carrying the given items, in order.
func Emit[O any](items ...O) Emission[O] {
	return Emission[O]{items: items}
}

// Skip returns an Emission carrying no items.
func Skip[O any]() Emission[O] {
	return Emission[O]{}
}

// Items returns the emitted items, in order. It may be empty.
func (e Emission[O]) Items() []O {
	return e.items
}

// Stage turns one upstream item into zero or more downstream items.
// Process is invoked once per upstream item, in arrival order. A stage owns
// no items between invocations; an item it has emitted is never mutated by
// the stage again.
type Stage[I, O any] interface {
	Process(ctx context.Context, item I) (Emission[O], error)
}

// StageFunc adapts a plain function to the Stage interface.
type StageFunc[I, O any] func(ctx context.Context, item I) (Emission[O], error)

func (f StageFunc[I, O]) Process(ctx context.Context, item I) (Emission[O], error) {
	return f(ctx, item)
}

// Flusher is implemented by stages that buffer items between invocations.
// Flush is called once when the upstream is exhausted and must release any
// pending state. The pipeline detects it by type assertion.
type Flusher[O any] interface {
	Flush(ctx context.Context) (Emission[O], error)
}
