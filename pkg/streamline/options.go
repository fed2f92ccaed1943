package streamline

import (
	"github.com/rs/zerolog"

	"github.com/asears/go-streamline/pkg/streamline/drawer"
	"github.com/asears/go-streamline/pkg/streamline/measure"
)

// Option configures a pipeline at construction time.
type Option func(c *core)

func newCore(opts ...Option) *core {
	c := &core{
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.drawer != nil {
		c.fail(c.drawer.AddStep(sourceStepName))
	}

	return c
}

// WithLogger attaches a structured logger. Executions log their run id,
// stage count, item counts and failure cause.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *core) {
		c.logger = logger
	}
}

// WithMeasure attaches a timing measure. The caller keeps the handle and
// inspects the per-stage metrics once the execution has finished.
func WithMeasure(msr *measure.Measure) Option {
	return func(c *core) {
		c.measure = msr
	}
}

// WithDrawer renders the pipeline graph to the given file when an
// execution finishes. Combined with WithMeasure, stages are heat-coloured
// by their average duration.
func WithDrawer(svgFileName string) Option {
	return func(c *core) {
		c.drawer = drawer.NewSVGDrawer(svgFileName)
	}
}
