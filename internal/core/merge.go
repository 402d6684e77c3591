package core

// merge.go reconciles several TypedTables into one row set.
//
// The union schema is a best-effort interleaving, not a canonical merge. It
// guarantees every field of every table appears exactly once and that the
// base table's field order is kept; where other tables' extra fields land is
// an implementation detail.

import (
	"slices"
	"strings"
)

// flagMarker marks fields whose absence means "not flagged" rather than
// "unknown".
const flagMarker = "flag"

// UnionFields returns the ordered union of the tables' field names.
//
// The table with the most fields (the first one on a tie) provides the base
// order. Each other table, in argument order, splices in its fields that are
// not yet present, each at the index it has in its own table.
func UnionFields(tables ...*TypedTable) []string {
	if len(tables) == 0 {
		return nil
	}

	base := 0
	for i, t := range tables {
		if len(t.layout.fields) > len(tables[base].layout.fields) {
			base = i
		}
	}

	result := tables[base].Fields()
	seen := make(map[string]bool, len(result))
	for _, f := range result {
		seen[f] = true
	}

	for i, t := range tables {
		if i == base {
			continue
		}
		for pos, f := range t.layout.fields {
			if seen[f] {
				continue
			}
			result = slices.Insert(result, min(pos, len(result)), f)
			seen[f] = true
		}
	}

	return result
}

// SourceSpan records how many merged rows came from one input table.
type SourceSpan struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

// MergedTable is the result of MergeTables.
type MergedTable struct {
	// Fields is the union schema.
	Fields []string

	// Types holds one type per union field: the type the source tables agree
	// on, or Text when they disagree.
	Types map[string]ScalarType

	// Rows covers every input row, table by table, each with every field.
	Rows []Record

	// Sources lists the input tables in merge order.
	Sources []SourceSpan
}

// MergeTables concatenates the rows of all tables over their union schema.
//
// A field absent from a table is filled in every row of that table with 0
// when its name contains "flag", and with Missing otherwise.
func MergeTables(tables ...*TypedTable) *MergedTable {
	fields := UnionFields(tables...)
	l := newLayout(fields)

	merged := &MergedTable{
		Fields:  fields,
		Types:   unionTypes(fields, tables),
		Sources: make([]SourceSpan, 0, len(tables)),
	}

	total := 0
	for _, t := range tables {
		total += t.Len()
	}
	merged.Rows = make([]Record, 0, total)

	for _, t := range tables {
		// src[j] is the column of union field j in t, or -1 when absent.
		src := make([]int, len(fields))
		for j, f := range fields {
			if i, ok := t.layout.index[f]; ok {
				src[j] = i
			} else {
				src[j] = -1
			}
		}

		for _, row := range t.typed {
			values := make([]Value, len(fields))
			for j, f := range fields {
				if src[j] >= 0 {
					values[j] = row[src[j]]
				} else {
					values[j] = defaultFor(f)
				}
			}
			merged.Rows = append(merged.Rows, Record{layout: l, values: values})
		}

		merged.Sources = append(merged.Sources, SourceSpan{Table: t.name, Rows: t.Len()})
	}

	return merged
}

// defaultFor returns the fill value for a field a table does not have.
func defaultFor(field string) Value {
	if strings.Contains(field, flagMarker) {
		return IntegerValue(0)
	}
	return Missing()
}

// unionTypes resolves one type per union field. The Integer 0 filled into a
// missing flag field counts as an Integer observation.
func unionTypes(fields []string, tables []*TypedTable) map[string]ScalarType {
	types := make(map[string]ScalarType, len(fields))
	for _, f := range fields {
		var seen []ScalarType
		for _, t := range tables {
			if typ, ok := t.types[f]; ok {
				seen = append(seen, typ)
			} else if t.Len() > 0 && defaultFor(f).Kind() == KindInteger {
				seen = append(seen, TypeInteger)
			}
		}

		types[f] = seen[0]
		for _, typ := range seen[1:] {
			if typ != seen[0] {
				types[f] = TypeText
				break
			}
		}
	}
	return types
}

// Columns pivots the merged rows. An empty merge yields an empty column per
// field.
func (m *MergedTable) Columns() (map[string][]Value, error) {
	if len(m.Rows) == 0 {
		cols := make(map[string][]Value, len(m.Fields))
		for _, f := range m.Fields {
			cols[f] = []Value{}
		}
		return cols, nil
	}
	return Pivot(m.Rows)
}

// Matrix converts the merged rows to header-plus-rows form. An empty merge
// yields the header alone.
func (m *MergedTable) Matrix() (*Matrix, error) {
	if len(m.Rows) == 0 {
		return &Matrix{Header: append([]string(nil), m.Fields...), Rows: [][]Value{}}, nil
	}
	return ToMatrix(m.Rows)
}
