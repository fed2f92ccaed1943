package csvio

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/pkg/errors"

	"github.com/asears/go-streamline/pkg/streamline/record"
)

// Writer streams records to CSV output. The column order comes from the
// explicit header passed to NewWriter or, when none is given, from the key
// order of the first record written. Values containing separators, quotes
// or newlines are quoted with doubled embedded quotes.
type Writer struct {
	csv         *csv.Writer
	header      []string
	wroteHeader bool
	rows        int64
}

// NewWriter creates a writer to w. An explicit header fixes the column
// order up front; otherwise the first record written defines it.
func NewWriter(w io.Writer, header ...string) *Writer {
	return &Writer{
		csv:    csv.NewWriter(w),
		header: header,
	}
}

// Rows returns the number of data records written so far.
func (w *Writer) Rows() int64 { return w.rows }

// Write implements the pipeline Sink interface. The header row is written
// before the first record.
func (w *Writer) Write(_ context.Context, rec *record.Record) error {
	if !w.wroteHeader {
		if len(w.header) == 0 {
			w.header = rec.Keys()
		}
		if err := w.csv.Write(w.header); err != nil {
			return errors.Wrap(err, "unable to write csv header")
		}
		w.wroteHeader = true
	}

	row := make([]string, len(w.header))
	for i, name := range w.header {
		row[i] = rec.String(name)
	}
	if err := w.csv.Write(row); err != nil {
		return errors.Wrap(err, "unable to write csv row")
	}
	w.rows++

	return nil
}

// Flush writes any buffered output to the underlying writer.
func (w *Writer) Flush() error {
	w.csv.Flush()

	return errors.Wrap(w.csv.Error(), "unable to flush csv writer")
}
