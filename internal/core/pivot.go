package core

import (
	"bytes"
	"encoding/json"
)

// Pivot transposes rows into columns: field name to the values of that field
// in row order. Every row must have exactly the fields of the first row.
func Pivot(rows []Record) (map[string][]Value, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	fields := rows[0].Fields()
	cols := make(map[string][]Value, len(fields))
	for _, f := range fields {
		cols[f] = make([]Value, len(rows))
	}

	for i, row := range rows {
		if row.Len() != len(fields) {
			return nil, &ShapeMismatchError{Row: i, Want: len(fields), Got: row.Len()}
		}
		for _, f := range fields {
			v, ok := row.Get(f)
			if !ok {
				return nil, &ShapeMismatchError{Row: i, Field: f, Want: len(fields), Got: row.Len()}
			}
			cols[f][i] = v
		}
	}

	return cols, nil
}

// Matrix is a header row followed by one value list per data row, in header
// order.
type Matrix struct {
	Header []string
	Rows   [][]Value
}

// MarshalJSON encodes m as [[header...], [row...], ...].
func (m *Matrix) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	header, err := json.Marshal(m.Header)
	if err != nil {
		return nil, err
	}
	buf.Write(header)
	for _, row := range m.Rows {
		buf.WriteByte(',')
		enc, err := json.Marshal(row)
		if err != nil {
			return nil, err
		}
		buf.Write(enc)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// ToMatrix converts rows to a Matrix whose header is the field order of the
// first row.
func ToMatrix(rows []Record) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	header := rows[0].Fields()
	m := &Matrix{Header: header, Rows: make([][]Value, len(rows))}

	for i, row := range rows {
		if row.Len() != len(header) {
			return nil, &ShapeMismatchError{Row: i, Want: len(header), Got: row.Len()}
		}
		values := make([]Value, len(header))
		for j, f := range header {
			v, ok := row.Get(f)
			if !ok {
				return nil, &ShapeMismatchError{Row: i, Field: f, Want: len(header), Got: row.Len()}
			}
			values[j] = v
		}
		m.Rows[i] = values
	}

	return m, nil
}
