package csvimport

import (
	"bytes"
	"encoding/json"
)

// Fields is an ordered text mapping with unique keys.
// Keys keep the position of their first Set.
type Fields struct {
	keys   []string
	values map[string]string
}

// Set assigns value to key. An existing key is overwritten in place.
func (f *Fields) Set(key, value string) {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the value stored under key.
func (f Fields) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Value returns the value stored under key, or "" when absent.
func (f Fields) Value(key string) string {
	return f.values[key]
}

// Keys returns the keys in insertion order.
func (f Fields) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Len returns the number of keys.
func (f Fields) Len() int {
	return len(f.keys)
}

// Map returns a copy of the values as a plain map.
func (f Fields) Map() map[string]string {
	out := make(map[string]string, len(f.keys))
	for _, k := range f.keys {
		out[k] = f.values[k]
	}
	return out
}

// MarshalJSON encodes the fields as a JSON object in key order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RawRow is one data line of a parsed file, keyed by the file's own headers.
type RawRow struct {
	Fields

	// Line is the 1-based physical line (or sheet row) the values came from.
	Line int `json:"-"`
}

// NormalizedRow is a RawRow re-keyed to a template header list.
// It is only produced by Normalize.
type NormalizedRow struct {
	Fields

	Line int `json:"-"`
}
