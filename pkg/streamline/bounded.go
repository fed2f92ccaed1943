package streamline

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/asears/go-streamline/internal/reorder"
)

type boundedTask[I any] struct {
	seq  uint64
	item I
}

// Bounded applies an asynchronous per-item operation under a hard
// concurrency ceiling and a bounded pending queue. At most maxConcurrent
// operations run simultaneously and at most highWaterMark items wait in the
// internal queue; once the queue is full, Process blocks, which stalls the
// upstream feed. That stall is how backpressure propagates.
//
// Results are emitted in the same relative order their inputs arrived, even
// when the underlying operations complete out of order: a result whose
// predecessor is still running is held back until the predecessor is ready.
//
// If an operation fails, the error surfaces on the next drain step. Already
// running sibling operations are allowed to complete, their results are not
// discarded, and no new operations are admitted.
type Bounded[I, O any] struct {
	fn            func(ctx context.Context, item I) (O, error)
	maxConcurrent int
	highWaterMark int

	stats BoundedStats
	buf   *reorder.Buffer[O]

	startOnce sync.Once
	closeOnce sync.Once
	tasks     chan boundedTask[I]
	grp       *errgroup.Group
	seq       uint64

	mu  sync.Mutex
	err error
}

// NewBounded creates a Bounded stage around fn. maxConcurrent and
// highWaterMark must both be greater than 0.
func NewBounded[I, O any](fn func(ctx context.Context, item I) (O, error), maxConcurrent, highWaterMark int) (*Bounded[I, O], error) {
	if maxConcurrent <= 0 {
		return nil, ErrMaxConcurrent
	}
	if highWaterMark <= 0 {
		return nil, ErrHighWaterMark
	}

	return &Bounded[I, O]{
		fn:            fn,
		maxConcurrent: maxConcurrent,
		highWaterMark: highWaterMark,
		buf:           reorder.New[O](),
	}, nil
}

// Stats returns the live counters of the stage.
func (b *Bounded[I, O]) Stats() *BoundedStats {
	return &b.stats
}

func (b *Bounded[I, O]) start(ctx context.Context) {
	b.startOnce.Do(func() {
		b.tasks = make(chan boundedTask[I], b.highWaterMark)
		b.grp = &errgroup.Group{}
		for i := 0; i < b.maxConcurrent; i++ {
			b.grp.Go(func() error {
				return b.worker(ctx)
			})
		}
	})
}

func (b *Bounded[I, O]) worker(ctx context.Context) error {
	for task := range b.tasks {
		if b.firstErr() != nil {
			// No new operations once an error is observed. Keep draining the
			// queue so a blocked Process call is released and Flush does not
			// hang on a full channel.
			continue
		}

		b.stats.inFlight.Add(1)
		out, err := b.fn(ctx, task.item)
		b.stats.inFlight.Add(-1)

		if err != nil {
			b.setErr(err)

			continue
		}

		b.stats.processed.Add(1)
		b.buf.Put(task.seq, out)
	}

	return nil
}

func (b *Bounded[I, O]) setErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err == nil {
		b.err = err
	}
}

func (b *Bounded[I, O]) firstErr() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.err
}

// Process admits one item and returns every completed result that is next
// in input order. It blocks while the pending queue is at highWaterMark.
func (b *Bounded[I, O]) Process(ctx context.Context, item I) (Emission[O], error) {
	b.start(ctx)

	if err := b.firstErr(); err != nil {
		return Skip[O](), err
	}

	task := boundedTask[I]{seq: b.seq, item: item}
	b.seq++

	select {
	case b.tasks <- task:
	default:
		b.stats.backpressure.Add(1)
		select {
		case b.tasks <- task:
		case <-ctx.Done():
			return Skip[O](), ctx.Err()
		}
	}

	if ready := b.buf.Release(); len(ready) > 0 {
		return Emit(ready...), nil
	}

	return Skip[O](), nil
}

// Flush waits for every admitted operation to finish and returns the
// remaining results in input order.
func (b *Bounded[I, O]) Flush(_ context.Context) (Emission[O], error) {
	if b.tasks == nil {
		return Skip[O](), nil
	}

	b.closeOnce.Do(func() { close(b.tasks) })

	if err := b.grp.Wait(); err != nil {
		return Skip[O](), err
	}
	if err := b.firstErr(); err != nil {
		return Skip[O](), err
	}

	if ready := b.buf.Release(); len(ready) > 0 {
		return Emit(ready...), nil
	}

	return Skip[O](), nil
}

// Close stops the worker pool and waits for in-flight operations to finish.
// The pipeline calls it when an execution ends without reaching Flush, e.g.
// after an error in another stage. It is safe to call more than once.
func (b *Bounded[I, O]) Close() error {
	if b.tasks == nil {
		return nil
	}

	b.closeOnce.Do(func() { close(b.tasks) })

	return b.grp.Wait()
}
