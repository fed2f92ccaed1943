// Package record provides the ordered field-name to value mapping flowing
// through the format adapters. Key order is insertion order; for CSV the
// header row defines it for every subsequent record.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// ErrNotObject is returned when decoding JSON that is not an object.
var ErrNotObject = errors.New("record must be a JSON object")

// Record is an ordered mapping from field name to value. The zero value is
// not usable; create records with New.
type Record struct {
	keys   []string
	values map[string]any
}

// New creates an empty record.
func New() *Record {
	return &Record{
		values: make(map[string]any),
	}
}

// Set stores the value under the given field name. A new name is appended
// to the key order; an existing one keeps its position.
func (r *Record) Set(key string, val any) *Record {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = val

	return r
}

// Get returns the value stored under the given field name.
func (r *Record) Get(key string) (any, bool) {
	val, ok := r.values[key]

	return val, ok
}

// String returns the value under the given field name rendered as a
// string, or the empty string when the field is absent or nil.
func (r *Record) String(key string) string {
	val, ok := r.values[key]
	if !ok || val == nil {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}

	return fmt.Sprint(val)
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)

	return keys
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.keys)
}

// Clone returns a shallow copy of the record.
func (r *Record) Clone() *Record {
	clone := &Record{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]any, len(r.values)),
	}
	copy(clone.keys, r.keys)
	for key, val := range r.values {
		clone.values[key] = val
	}

	return clone
}

// Equal reports whether both records hold the same fields with the same
// values in the same order.
func (r *Record) Equal(other *Record) bool {
	if other == nil || len(r.keys) != len(other.keys) {
		return false
	}
	for i, key := range r.keys {
		if other.keys[i] != key {
			return false
		}
		if !reflect.DeepEqual(r.values[key], other.values[key]) {
			return false
		}
	}

	return true
}

// MarshalJSON encodes the record as a JSON object with fields in key
// order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to marshal key %s", key)
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')

		valJSON, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, errors.Wrapf(err, "unable to marshal value of %s", key)
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving the field order of the
// input. Numbers decode as json.Number so values survive a round trip
// unchanged.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "unable to read opening token")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrNotObject
	}

	r.keys = nil
	r.values = make(map[string]any)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return errors.Wrap(err, "unable to read key")
		}
		key, ok := keyTok.(string)
		if !ok {
			return ErrNotObject
		}

		var val any
		if err := dec.Decode(&val); err != nil {
			return errors.Wrapf(err, "unable to decode value of %s", key)
		}
		r.Set(key, val)
	}

	if _, err := dec.Token(); err != nil {
		return errors.Wrap(err, "unable to read closing token")
	}

	return nil
}
