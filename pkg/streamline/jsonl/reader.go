package jsonl

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

const readChunkSize = 32 * 1024

// Reader streams parsed values out of line-delimited JSON input, one value
// per line, reading the input in fixed-size chunks so memory use stays
// bounded regardless of file size.
type Reader[T any] struct {
	src    io.Reader
	parser *Parser[T]
	queue  []T
	chunk  []byte
	count  int64
	done   bool
}

// NewReader creates a reader over r.
func NewReader[T any](r io.Reader) *Reader[T] {
	return &Reader[T]{
		src:    r,
		parser: NewParser[T](),
		chunk:  make([]byte, readChunkSize),
	}
}

// Records returns the number of values produced so far.
func (r *Reader[T]) Records() int64 { return r.count }

// Next returns the next value, or ok=false once the input is exhausted.
func (r *Reader[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	for {
		if len(r.queue) > 0 {
			val := r.queue[0]
			r.queue = r.queue[1:]
			r.count++

			return val, true, nil
		}
		if r.done {
			return zero, false, nil
		}

		select {
		case <-ctx.Done():
			return zero, false, ctx.Err()
		default:
		}

		n, err := r.src.Read(r.chunk)
		if n > 0 {
			vals, parseErr := r.parser.Push(r.chunk[:n])
			r.queue = append(r.queue, vals...)
			if parseErr != nil {
				return zero, false, parseErr
			}
		}
		if errors.Is(err, io.EOF) {
			r.done = true

			val, ok, parseErr := r.parser.Flush()
			if parseErr != nil {
				return zero, false, parseErr
			}
			if ok {
				r.queue = append(r.queue, val)
			}

			continue
		}
		if err != nil {
			return zero, false, errors.Wrap(err, "unable to read jsonl input")
		}
	}
}

// Close closes the underlying reader when it is an io.Closer.
func (r *Reader[T]) Close() error {
	if closer, ok := r.src.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
