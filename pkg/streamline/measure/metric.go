package measure

import (
	"sync"
	"time"
)

// Metric accumulates processing durations for a single stage.
type Metric struct {
	mu      sync.Mutex
	total   int64
	elapsed time.Duration
}

// AddDuration records one processed item and the time it took.
func (mt *Metric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total++
	mt.elapsed += elapsed
}

// Count returns the number of items the stage processed.
func (mt *Metric) Count() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.total
}

// TotalDuration returns the cumulative processing time of the stage.
func (mt *Metric) TotalDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.elapsed
}

// AVGDuration returns the average processing time per item.
func (mt *Metric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.total == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.elapsed) / float64(mt.total)))
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}
