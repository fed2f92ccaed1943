// Package measure collects per-stage timing and throughput metrics for a
// pipeline execution. Attach it with the WithMeasure pipeline option and
// inspect the metrics once the execution has finished.
package measure

import "sync"

// Measure holds one Metric per pipeline stage.
type Measure struct {
	mu    sync.Mutex
	steps map[string]*Metric
}

// New creates an empty Measure.
func New() *Measure {
	return &Measure{
		steps: make(map[string]*Metric),
	}
}

// AddMetric registers a metric for the given stage name and returns it.
// Registering the same name twice returns the existing metric.
func (m *Measure) AddMetric(name string) *Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mt, ok := m.steps[name]; ok {
		return mt
	}

	mt := &Metric{}
	m.steps[name] = mt

	return mt
}

// Metric returns the metric for the given stage name, or nil.
func (m *Measure) Metric(name string) *Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.steps[name]
}

// AllMetrics returns every registered metric keyed by stage name.
func (m *Measure) AllMetrics() map[string]*Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make(map[string]*Metric, len(m.steps))
	for name, mt := range m.steps {
		all[name] = mt
	}

	return all
}
