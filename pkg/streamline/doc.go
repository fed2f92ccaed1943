// Package streamline provides a composable stream-processing pipeline.
//
// A pipeline is an ordered chain of stages. Each stage turns one upstream
// item into zero, one or many downstream items. The pipeline pulls items
// from a Source one at a time and drives each item depth-first through the
// whole chain before pulling the next one, so memory use is bounded by the
// buffering needs of the individual stages rather than by the input size.
//
// Backpressure falls out of this pull-driven model: a stage that cannot
// accept more work simply blocks the upstream feed. The only stage that
// introduces concurrency is Bounded, which runs an asynchronous operation
// under a hard concurrency ceiling and a bounded internal queue while
// still emitting results in input order.
//
// The pipeline stops on the first encountered error. Registered error
// observers are notified once, in registration order, before the error is
// returned from Collect or Execute.
//
// A pipeline is built once and executed once at a time. Running the same
// pipeline concurrently from multiple goroutines is undefined behaviour
// and is the caller's responsibility to avoid.
package streamline
