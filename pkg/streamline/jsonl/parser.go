// Package jsonl provides streaming line-delimited JSON adapters for
// pipelines: a chunk-fed Parser, a Reader usable as a pipeline Source, a
// Writer usable as a Sink, and file-level helpers built on top of them.
// The wire format is one UTF-8 JSON value per line.
package jsonl

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParseError is the fatal error produced when a line is not a valid JSON
// value. It carries the offending line for diagnostics.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse jsonl line %q: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Cause implements the causer interface from github.com/pkg/errors.
func (e *ParseError) Cause() error { return e.Err }

// Parser turns arbitrarily-chunked text into parsed values. Chunks are
// appended to an internal buffer and every complete line becomes one
// value; a partial trailing line stays buffered until more data arrives.
// Chunk boundaries therefore never have to align with line boundaries.
type Parser[T any] struct {
	buf []byte
}

// NewParser creates an empty parser.
func NewParser[T any]() *Parser[T] {
	return &Parser[T]{}
}

// Push appends one chunk and returns the values parsed from every complete
// line it finished. Blank lines are skipped; a line that is not valid JSON
// is a fatal ParseError.
func (p *Parser[T]) Push(chunk []byte) ([]T, error) {
	p.buf = append(p.buf, chunk...)

	var out []T
	for {
		idx := bytes.IndexByte(p.buf, '\n')
		if idx < 0 {
			return out, nil
		}

		line := p.buf[:idx]
		p.buf = p.buf[idx+1:]

		val, ok, err := decodeLine[T](line)
		if err != nil {
			return out, err
		}
		if ok {
			out = append(out, val)
		}
	}
}

// Flush parses a non-empty remaining buffer as one final value once no
// further input will arrive. ok is false when the buffer was empty.
func (p *Parser[T]) Flush() (T, bool, error) {
	line := p.buf
	p.buf = nil

	return decodeLine[T](line)
}

func decodeLine[T any](line []byte) (T, bool, error) {
	var val T

	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return val, false, nil
	}

	if err := json.Unmarshal(trimmed, &val); err != nil {
		var zero T

		return zero, false, &ParseError{Line: string(line), Err: err}
	}

	return val, true, nil
}
