package core

import (
	"errors"
	"fmt"
	"maps"
)

// TableSource supplies the raw header row and data rows of one table.
type TableSource interface {
	Headers() []string
	Rows() [][]string
}

// RawTable is a TableSource over already tokenized CSV content.
type RawTable struct {
	Header []string
	Data   [][]string
}

func (t RawTable) Headers() []string { return t.Header }
func (t RawTable) Rows() [][]string  { return t.Data }

// TypedTable is one table with an inferred type per field.
//
// All views are computed once by NewTypedTable. A TypedTable is never
// modified afterwards, so it is safe for concurrent readers. Every accessor
// returns a copy.
type TypedTable struct {
	name    string
	layout  *layout
	types   map[string]ScalarType
	raw     [][]string
	typed   [][]Value
	records []Record
}

// BuildTable reads headers and rows from src, normalizes the headers and
// builds a TypedTable.
func BuildTable(name string, src TableSource) (*TypedTable, error) {
	return NewTypedTable(name, NormalizeHeaders(src.Headers()), src.Rows())
}

// NewTypedTable infers a type for every field over the full row set and
// converts each row. fields must be unique and every row must have exactly
// one cell per field.
//
// A blank cell in an Integer field becomes 0; a blank cell of any other type
// becomes Missing.
func NewTypedTable(name string, fields []string, rows [][]string) (*TypedTable, error) {
	l := newLayout(append([]string(nil), fields...))
	if len(l.index) != len(fields) {
		for i, f := range fields {
			if j := l.index[f]; j != i {
				return nil, &DuplicateFieldError{Table: name, Field: f, First: i, Again: j}
			}
		}
	}

	raw := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) != len(fields) {
			return nil, &ShapeMismatchError{Table: name, Row: i, Want: len(fields), Got: len(row)}
		}
		raw[i] = append([]string(nil), row...)
	}

	types := make(map[string]ScalarType, len(fields))
	parsers := make([]ParseFunc, len(fields))
	column := make([]string, len(raw))
	for j, field := range fields {
		for i, row := range raw {
			column[i] = row[j]
		}
		typ, parse, err := InferType(field, column)
		if err != nil {
			var conflict *TypeConflictError
			if errors.As(err, &conflict) {
				conflict.Table = name
				return nil, conflict
			}
			return nil, fmt.Errorf("table %q: %w", name, err)
		}
		types[field] = typ
		parsers[j] = parse
	}

	t := &TypedTable{
		name:    name,
		layout:  l,
		types:   types,
		raw:     raw,
		typed:   make([][]Value, len(raw)),
		records: make([]Record, len(raw)),
	}

	for i, row := range raw {
		values := make([]Value, len(fields))
		for j, cell := range row {
			if cell == "" {
				if types[fields[j]] == TypeInteger {
					values[j] = IntegerValue(0)
				} else {
					values[j] = Missing()
				}
				continue
			}
			v, err := parsers[j](cell)
			if err != nil {
				return nil, fmt.Errorf("table %q row %d field %q: %w", name, i, fields[j], err)
			}
			values[j] = v
		}
		t.typed[i] = values
		t.records[i] = Record{layout: l, values: values}
	}

	return t, nil
}

// Name returns the logical table name.
func (t *TypedTable) Name() string { return t.name }

// Fields returns the field identifiers in column order.
func (t *TypedTable) Fields() []string {
	return append([]string(nil), t.layout.fields...)
}

// HasField reports whether the table has field.
func (t *TypedTable) HasField(field string) bool {
	_, ok := t.layout.index[field]
	return ok
}

// Type returns the inferred type of field.
func (t *TypedTable) Type(field string) (ScalarType, bool) {
	typ, ok := t.types[field]
	return typ, ok
}

// Types returns a copy of the field to type mapping.
func (t *TypedTable) Types() map[string]ScalarType {
	return maps.Clone(t.types)
}

// Len returns the number of data rows.
func (t *TypedTable) Len() int { return len(t.raw) }

// RawRows returns a copy of the raw string rows.
func (t *TypedTable) RawRows() [][]string {
	out := make([][]string, len(t.raw))
	for i, row := range t.raw {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// TypedRows returns a copy of each row as values aligned with Fields.
func (t *TypedTable) TypedRows() [][]Value {
	out := make([][]Value, len(t.typed))
	for i, row := range t.typed {
		out[i] = append([]Value(nil), row...)
	}
	return out
}

// Records returns each row as a typed mapping. The records do not share
// storage with the table.
func (t *TypedTable) Records() []Record {
	out := make([]Record, len(t.records))
	for i, rec := range t.records {
		out[i] = Record{layout: rec.layout, values: append([]Value(nil), rec.values...)}
	}
	return out
}

// FieldType is one entry of a table schema.
type FieldType struct {
	Name string     `json:"name"`
	Type ScalarType `json:"type"`
}

// Schema returns the fields with their types in column order.
func (t *TypedTable) Schema() []FieldType {
	out := make([]FieldType, len(t.layout.fields))
	for i, f := range t.layout.fields {
		out[i] = FieldType{Name: f, Type: t.types[f]}
	}
	return out
}
