package jsonl

import (
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Writer streams values to line-delimited JSON output, one compact JSON
// value per line.
type Writer[T any] struct {
	dst    io.Writer
	pretty bool
	indent string
	count  int64
}

// NewWriter creates a writer to w.
func NewWriter[T any](w io.Writer) *Writer[T] {
	return &Writer[T]{dst: w}
}

// Pretty switches the writer to multi-line indented JSON per value, still
// newline terminated. The output is easier to read but no longer strict
// one-value-per-line JSONL, so it cannot be fed back into a Reader. Callers
// trade interoperability for readability explicitly.
func (w *Writer[T]) Pretty(indent string) *Writer[T] {
	w.pretty = true
	w.indent = indent

	return w
}

// Records returns the number of values written so far.
func (w *Writer[T]) Records() int64 { return w.count }

// Write implements the pipeline Sink interface.
func (w *Writer[T]) Write(_ context.Context, item T) error {
	var (
		data []byte
		err  error
	)
	if w.pretty {
		data, err = json.MarshalIndent(item, "", w.indent)
	} else {
		data, err = json.Marshal(item)
	}
	if err != nil {
		return errors.Wrap(err, "unable to marshal jsonl value")
	}

	data = append(data, '\n')
	if _, err := w.dst.Write(data); err != nil {
		return errors.Wrap(err, "unable to write jsonl value")
	}
	w.count++

	return nil
}
