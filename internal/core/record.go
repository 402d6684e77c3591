package core

import (
	"bytes"
	"encoding/json"
)

// layout is the field order shared by every Record of one table.
type layout struct {
	fields []string
	index  map[string]int
}

func newLayout(fields []string) *layout {
	l := &layout{
		fields: fields,
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		l.index[f] = i
	}
	return l
}

// Record is the typed mapping view of one row: field name to Value, keeping
// the field order of the table it came from.
type Record struct {
	layout *layout
	values []Value
}

// NewRecord builds a standalone Record. fields and values must have the same
// length and fields must be unique.
func NewRecord(fields []string, values []Value) (Record, error) {
	if len(fields) != len(values) {
		return Record{}, &ShapeMismatchError{Want: len(fields), Got: len(values)}
	}
	l := newLayout(append([]string(nil), fields...))
	if len(l.index) != len(fields) {
		for i, f := range fields {
			if j := l.index[f]; j != i {
				return Record{}, &DuplicateFieldError{Field: f, First: i, Again: j}
			}
		}
	}
	return Record{layout: l, values: append([]Value(nil), values...)}, nil
}

// Len returns the number of fields in r.
func (r Record) Len() int { return len(r.values) }

// Fields returns the field names of r in order.
func (r Record) Fields() []string {
	if r.layout == nil {
		return nil
	}
	return append([]string(nil), r.layout.fields...)
}

// Get returns the value of field.
func (r Record) Get(field string) (Value, bool) {
	if r.layout == nil {
		return Value{}, false
	}
	i, ok := r.layout.index[field]
	if !ok {
		return Value{}, false
	}
	return r.values[i], true
}

// Values returns the values of r in field order.
func (r Record) Values() []Value {
	return append([]Value(nil), r.values...)
}

// Map returns r as a plain map.
func (r Record) Map() map[string]Value {
	m := make(map[string]Value, len(r.values))
	if r.layout == nil {
		return m
	}
	for i, f := range r.layout.fields {
		m[f] = r.values[i]
	}
	return m
}

// MarshalJSON encodes r as an object whose keys follow field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if r.layout != nil {
		for i, f := range r.layout.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f)
			if err != nil {
				return nil, err
			}
			val, err := r.values[i].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
