package models

import (
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Value is the content of one record field: a single string when the field
// matched once, an ordered list when it matched several times.
type Value []string

// Scalar builds a single-valued Value.
func Scalar(s string) Value { return Value{s} }

// IsList reports whether the value holds more than one string.
func (v Value) IsList() bool { return len(v) > 1 }

// Join flattens the value with the given separator.
func (v Value) Join(sep string) string { return strings.Join(v, sep) }

func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 1 {
		return json.Marshal(v[0])
	}
	return json.Marshal([]string(v))
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = Value{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("record value must be a string or an array of strings: %w", err)
	}
	*v = Value(list)
	return nil
}

// Record is one extracted row. Field order follows insertion order so that
// tabular exports get stable columns.
type Record struct {
	fields *orderedmap.OrderedMap[string, Value]
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{fields: orderedmap.New[string, Value]()}
}

// Set stores a field value, keeping the original position on overwrite.
func (r *Record) Set(name string, v Value) {
	if r.fields == nil {
		r.fields = orderedmap.New[string, Value]()
	}
	r.fields.Set(name, v)
}

// Get returns the value for a field.
func (r Record) Get(name string) (Value, bool) {
	if r.fields == nil {
		return nil, false
	}
	return r.fields.Get(name)
}

// Keys returns field names in insertion order.
func (r Record) Keys() []string {
	if r.fields == nil {
		return nil
	}
	keys := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of fields.
func (r Record) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("{}"), nil
	}
	return r.fields.MarshalJSON()
}

func (r *Record) UnmarshalJSON(b []byte) error {
	r.fields = orderedmap.New[string, Value]()
	return r.fields.UnmarshalJSON(b)
}
