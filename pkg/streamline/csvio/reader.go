// Package csvio provides streaming CSV adapters for pipelines: a Reader
// usable as a pipeline Source, a Writer usable as a Sink, and file-level
// helpers built on top of them. The wire format is RFC-4180 compatible:
// comma separated, double-quote escaping, header row.
package csvio

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/asears/go-streamline/pkg/streamline/record"
)

// Reader streams records out of CSV input one row at a time, so memory use
// stays bounded regardless of file size. The first non-empty row is the
// header and defines the field-name order of every record. Blank rows are
// skipped and field values are trimmed of surrounding whitespace.
//
// Rows with fewer fields than the header are padded with empty values,
// rows with more fields are truncated; both are counted and exposed as
// warnings rather than treated as fatal.
type Reader struct {
	csv       *csv.Reader
	src       io.Reader
	header    []string
	rows      int64
	padded    int64
	truncated int64
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1

	return &Reader{
		csv: csvReader,
		src: r,
	}
}

// Header returns the field names from the header row, or nil before the
// first record has been read.
func (r *Reader) Header() []string {
	header := make([]string, len(r.header))
	copy(header, r.header)

	return header
}

// Rows returns the number of data records produced so far.
func (r *Reader) Rows() int64 { return r.rows }

// PaddedRows returns the number of rows that had fewer fields than the
// header.
func (r *Reader) PaddedRows() int64 { return r.padded }

// TruncatedRows returns the number of rows that had more fields than the
// header.
func (r *Reader) TruncatedRows() int64 { return r.truncated }

// Next returns the next record, or ok=false once the input is exhausted.
func (r *Reader) Next(ctx context.Context) (*record.Record, bool, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		default:
		}

		row, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, errors.Wrap(err, "unable to read csv row")
		}

		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		if blankRow(row) {
			continue
		}

		if r.header == nil {
			r.header = row

			continue
		}

		rec := record.New()
		for i, name := range r.header {
			if i < len(row) {
				rec.Set(name, row[i])

				continue
			}
			rec.Set(name, "")
		}
		if len(row) < len(r.header) {
			r.padded++
		}
		if len(row) > len(r.header) {
			r.truncated++
		}
		r.rows++

		return rec, true, nil
	}
}

// Close closes the underlying reader when it is an io.Closer.
func (r *Reader) Close() error {
	if closer, ok := r.src.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

func blankRow(row []string) bool {
	for _, field := range row {
		if field != "" {
			return false
		}
	}

	return true
}
