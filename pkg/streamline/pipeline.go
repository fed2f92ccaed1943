package streamline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/asears/go-streamline/pkg/streamline/drawer"
	"github.com/asears/go-streamline/pkg/streamline/measure"
)

const (
	sourceStepName = "source"
	sinkStepName   = "sink"
)

type emitFunc[T any] func(ctx context.Context, item T) error

// core holds the state shared by every typed view of one pipeline: the
// stage list, error observers, attached features and the first
// configuration error recorded while building.
type core struct {
	logger     zerolog.Logger
	measure    *measure.Measure
	drawer     *drawer.SVGDrawer
	stages     []string
	observers  []func(error)
	closers    []func() error
	buildErr   error
	sinkLinked bool
}

// Pipeline is an ordered chain of stages turning items of type I into items
// of type O. It is built once with the fluent methods and the Append, Batch
// and BoundedMap functions, then executed with Collect or Execute. The
// stage list is immutable once execution begins.
type Pipeline[I, O any] struct {
	core  *core
	feed  func(ctx context.Context, item I, emit emitFunc[O]) error
	flush func(ctx context.Context, emit emitFunc[O]) error
}

// New creates an empty pipeline that passes items of type T through
// unchanged.
func New[T any](opts ...Option) *Pipeline[T, T] {
	c := newCore(opts...)

	return &Pipeline[T, T]{
		core: c,
		feed: func(ctx context.Context, item T, emit emitFunc[T]) error {
			return emit(ctx, item)
		},
		flush: func(context.Context, emitFunc[T]) error {
			return nil
		},
	}
}

func (c *core) fail(err error) {
	if c.buildErr == nil && err != nil {
		c.buildErr = err
	}
}

func (c *core) addStage(kind string) string {
	name := fmt.Sprintf("%s-%d", kind, len(c.stages)+1)
	prev := sourceStepName
	if len(c.stages) > 0 {
		prev = c.stages[len(c.stages)-1]
	}
	c.stages = append(c.stages, name)

	if c.measure != nil {
		c.measure.AddMetric(name)
	}
	if c.drawer != nil {
		if err := c.drawer.AddStep(name); err != nil {
			c.fail(err)
		}
		if err := c.drawer.AddLink(prev, name); err != nil {
			c.fail(err)
		}
	}

	return name
}

func (c *core) observe(name string, elapsed time.Duration) {
	if c.measure == nil {
		return
	}
	if mt := c.measure.Metric(name); mt != nil {
		mt.AddDuration(elapsed)
	}
}

func (c *core) addCloser(stage any) {
	if closer, ok := stage.(interface{ Close() error }); ok {
		c.closers = append(c.closers, closer.Close)
	}
}

func (c *core) closeAll() {
	for _, closeFn := range c.closers {
		_ = closeFn()
	}
}

func (c *core) notify(err error) {
	for _, observer := range c.observers {
		observer(err)
	}
}

func (c *core) finish() error {
	if c.drawer == nil {
		return nil
	}

	if !c.sinkLinked {
		if err := c.drawer.AddStep(sinkStepName); err != nil {
			return errors.Wrap(err, "unable to add sink step")
		}
		prev := sourceStepName
		if len(c.stages) > 0 {
			prev = c.stages[len(c.stages)-1]
		}
		if err := c.drawer.AddLink(prev, sinkStepName); err != nil {
			return errors.Wrap(err, "unable to link sink step")
		}
		c.sinkLinked = true
	}

	if c.measure != nil {
		if err := c.drawer.AddMeasure(c.measure); err != nil {
			return errors.Wrap(err, "unable to add measure to drawer")
		}
	}

	return errors.Wrap(c.drawer.Draw(), "unable to draw pipeline")
}

// broken returns a pipeline view that always fails with the recorded
// configuration error. Execution never reaches it because Collect and
// Execute fail fast on buildErr, but the closures must still exist.
func broken[I, O any](c *core, err error) *Pipeline[I, O] {
	return &Pipeline[I, O]{
		core: c,
		feed: func(context.Context, I, emitFunc[O]) error {
			return err
		},
		flush: func(context.Context, emitFunc[O]) error {
			return err
		},
	}
}

// Append adds a stage to the pipeline and returns the new typed view. kind
// names the stage in logs, metrics and drawings; an index suffix keeps
// names unique.
func Append[I, M, O any](p *Pipeline[I, M], kind string, stage Stage[M, O]) *Pipeline[I, O] {
	c := p.core
	if stage == nil {
		c.fail(ErrStageMustBeSet)

		return broken[I, O](c, ErrStageMustBeSet)
	}

	name := c.addStage(kind)
	c.addCloser(stage)
	upFeed, upFlush := p.feed, p.flush

	through := func(ctx context.Context, in M, emit emitFunc[O]) error {
		start := time.Now()
		emission, err := stage.Process(ctx, in)
		c.observe(name, time.Since(start))
		if err != nil {
			return stageError(name, err)
		}
		for _, out := range emission.Items() {
			if err := emit(ctx, out); err != nil {
				return err
			}
		}

		return nil
	}

	return &Pipeline[I, O]{
		core: c,
		feed: func(ctx context.Context, in I, emit emitFunc[O]) error {
			return upFeed(ctx, in, func(ctx context.Context, mid M) error {
				return through(ctx, mid, emit)
			})
		},
		flush: func(ctx context.Context, emit emitFunc[O]) error {
			// Upstream pending state drains through this stage first, then
			// this stage releases its own.
			err := upFlush(ctx, func(ctx context.Context, mid M) error {
				return through(ctx, mid, emit)
			})
			if err != nil {
				return err
			}

			flusher, ok := stage.(Flusher[O])
			if !ok {
				return nil
			}
			emission, err := flusher.Flush(ctx)
			if err != nil {
				return stageError(name, err)
			}
			for _, out := range emission.Items() {
				if err := emit(ctx, out); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

// Pipe appends a custom stage that preserves the item type. Use Append for
// stages that change it.
func (p *Pipeline[I, O]) Pipe(stage Stage[O, O]) *Pipeline[I, O] {
	return Append(p, "stage", stage)
}

// Filter appends a stage that keeps only items satisfying pred.
func (p *Pipeline[I, O]) Filter(pred func(O) bool) *Pipeline[I, O] {
	return Append(p, "filter", NewFilter(pred))
}

// Map appends a stage that replaces every item with fn(item).
func (p *Pipeline[I, O]) Map(fn func(ctx context.Context, item O) (O, error)) *Pipeline[I, O] {
	return Append(p, "map", NewMap(fn))
}

// Catch registers an error observer. Observers are invoked in registration
// order, once each, when an execution fails.
func (p *Pipeline[I, O]) Catch(handler func(error)) *Pipeline[I, O] {
	p.core.observers = append(p.core.observers, handler)

	return p
}

// MapTo appends a mapping stage that changes the item type.
func MapTo[I, M, O any](p *Pipeline[I, M], fn func(ctx context.Context, item M) (O, error)) *Pipeline[I, O] {
	return Append(p, "map", NewMap(fn))
}

// Batch appends a stage that groups items into slices of size items, the
// last group possibly shorter. size must be greater than 0.
func Batch[I, M any](p *Pipeline[I, M], size int) *Pipeline[I, []M] {
	stage, err := NewBatch[M](size)
	if err != nil {
		p.core.fail(err)

		return broken[I, []M](p.core, err)
	}

	return Append(p, "batch", stage)
}

// BoundedMap appends a Bounded stage applying fn with at most maxConcurrent
// concurrent operations and a pending queue of highWaterMark items. It
// returns the stage alongside the new pipeline view so callers can inspect
// its statistics.
func BoundedMap[I, M, O any](p *Pipeline[I, M], maxConcurrent, highWaterMark int, fn func(ctx context.Context, item M) (O, error)) (*Pipeline[I, O], *Bounded[M, O]) {
	stage, err := NewBounded(fn, maxConcurrent, highWaterMark)
	if err != nil {
		p.core.fail(err)

		return broken[I, O](p.core, err), nil
	}

	return Append[I, M, O](p, "bounded", stage), stage
}

// Collect drains the source through every stage and returns all final-stage
// outputs in order. On failure it returns a nil slice and the first fatal
// error, after invoking every registered observer.
func (p *Pipeline[I, O]) Collect(ctx context.Context, src Source[I]) ([]O, error) {
	collector := &Collector[O]{}
	if err := p.Execute(ctx, src, collector); err != nil {
		return nil, err
	}

	return collector.Items(), nil
}

// Execute drains the source through every stage and forwards all
// final-stage outputs to the sink. Output already written to the sink when
// a later item fails is not rolled back.
func (p *Pipeline[I, O]) Execute(ctx context.Context, src Source[I], sink Sink[O]) error {
	c := p.core
	if c.buildErr != nil {
		return errors.Wrap(c.buildErr, "unable to build pipeline")
	}
	if src == nil {
		return ErrSourceMustBeSet
	}
	if sink == nil {
		return ErrSinkMustBeSet
	}

	logger := c.logger.With().Str("run_id", uuid.NewString()).Logger()
	logger.Debug().Int("stages", len(c.stages)).Msg("pipeline execution started")
	start := time.Now()

	var pulled, emitted int64
	emit := func(ctx context.Context, item O) error {
		if err := sink.Write(ctx, item); err != nil {
			return errors.Wrap(err, "unable to write to sink")
		}
		emitted++

		return nil
	}

	err := func() error {
		defer func() {
			_ = src.Close()
		}()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item, ok, err := src.Next(ctx)
			if err != nil {
				return errors.Wrap(err, "unable to read from source")
			}
			if !ok {
				break
			}
			pulled++

			if err := p.feed(ctx, item, emit); err != nil {
				return err
			}
		}

		return p.flush(ctx, emit)
	}()
	c.closeAll()

	if err != nil {
		c.notify(err)
		logger.Error().Err(err).
			Int64("items_in", pulled).
			Int64("items_out", emitted).
			Msg("pipeline execution failed")

		return err
	}

	logger.Debug().
		Int64("items_in", pulled).
		Int64("items_out", emitted).
		Dur("elapsed", time.Since(start)).
		Msg("pipeline execution finished")

	return c.finish()
}
