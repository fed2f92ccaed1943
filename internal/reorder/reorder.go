// Package reorder restores input order over results that complete out of
// order. Values are tagged with a sequence number on the way in and released
// only once every lower sequence number has been released.
package reorder

import "sync"

// Buffer holds out-of-order values until their turn comes up. Sequence
// numbers start at 0 and must be dense: every number is eventually Put
// exactly once.
type Buffer[T any] struct {
	mu      sync.Mutex
	next    uint64
	pending map[uint64]T
}

// New creates an empty buffer expecting sequence number 0 first.
func New[T any]() *Buffer[T] {
	return &Buffer[T]{pending: make(map[uint64]T)}
}

// Put stores the value completed for the given sequence number.
func (b *Buffer[T]) Put(seq uint64, val T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[seq] = val
}

// Release returns the longest run of consecutive values starting at the
// next expected sequence number and removes them from the buffer. It
// returns nil when the next expected value has not completed yet.
func (b *Buffer[T]) Release() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	var run []T
	for {
		val, ok := b.pending[b.next]
		if !ok {
			return run
		}
		delete(b.pending, b.next)
		b.next++
		run = append(run, val)
	}
}

// Len returns the number of values still held back.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.pending)
}
