package streamline

import "context"

// Sink consumes the items a pipeline produces. Already-written output is
// never rolled back when a later item fails; durability is the sink's own
// concern.
type Sink[T any] interface {
	Write(ctx context.Context, item T) error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc[T any] func(ctx context.Context, item T) error

func (f SinkFunc[T]) Write(ctx context.Context, item T) error {
	return f(ctx, item)
}

// Collector is an in-memory sink that accumulates every item it receives,
// in order.
type Collector[T any] struct {
	items []T
}

func (c *Collector[T]) Write(_ context.Context, item T) error {
	c.items = append(c.items, item)

	return nil
}

// Items returns the collected items, in arrival order.
func (c *Collector[T]) Items() []T {
	return c.items
}
