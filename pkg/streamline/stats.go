package streamline

import "sync/atomic"

// BoundedStats exposes counters from a Bounded stage. Counter fields use
// atomic operations so they can be read while an execution is running.
type BoundedStats struct {
	inFlight     atomic.Int64
	processed    atomic.Int64
	backpressure atomic.Int64
}

// InFlight returns the number of operations currently running.
func (s *BoundedStats) InFlight() int64 { return s.inFlight.Load() }

// Processed returns the number of operations that completed successfully.
func (s *BoundedStats) Processed() int64 { return s.processed.Load() }

// BackpressureEvents returns the number of times the pending queue was full
// when a new item arrived, forcing the upstream to stall.
func (s *BoundedStats) BackpressureEvents() int64 { return s.backpressure.Load() }
