package core

// infer.go determines one scalar type per field from its raw values.
//
// Each non-blank value is offered to the Candidates in order and takes the
// type of the first parser that accepts it. Precedence is part of the
// contract: "20200304" is an Integer, not a Date, because Integer is tried
// first. Blank values carry no evidence.
//
// Per-value types are then reconciled for the whole field:
//
//   - one type seen: the field has that type
//   - any value was Text: the field is Text (every string is valid Text)
//   - both Integer and Date seen, no Text: TypeConflictError
//   - no non-blank values: Text

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseFunc converts a non-blank raw cell into a typed Value.
type ParseFunc func(raw string) (Value, error)

// Candidate pairs a parser with the type it proves.
type Candidate struct {
	Type  ScalarType
	Parse ParseFunc
}

// Candidates are tried in order for every value.
var Candidates = []Candidate{
	{Type: TypeInteger, Parse: ParseInteger},
	{Type: TypeDate, Parse: ParseDate},
	{Type: TypeText, Parse: ParseText},
}

// ParseInteger accepts an optionally signed base-10 integer that fits in 64
// bits. Decimals, exponents, separators and surrounding spaces are rejected.
func ParseInteger(raw string) (Value, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid integer %q", raw)
	}
	return IntegerValue(n), nil
}

// ParseDate accepts YYYY-MM-DD, or MM/DD/YYYY which is rewritten to ISO order
// before parsing. A one-digit month or day in the slash form is zero padded.
func ParseDate(raw string) (Value, error) {
	iso := raw
	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		if len(parts) != 3 || len(parts[2]) != 4 {
			return Value{}, fmt.Errorf("invalid date %q: want MM/DD/YYYY", raw)
		}
		iso = parts[2] + "-" + padDatePart(parts[0]) + "-" + padDatePart(parts[1])
	}

	t, err := time.Parse(isoDateLayout, iso)
	if err != nil {
		return Value{}, fmt.Errorf("invalid date %q", raw)
	}
	return DateValue(t), nil
}

func padDatePart(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// ParseText accepts any string unchanged.
func ParseText(raw string) (Value, error) {
	return TextValue(raw), nil
}

// ParserFor returns the parser used to convert cells of type t.
func ParserFor(t ScalarType) ParseFunc {
	for _, c := range Candidates {
		if c.Type == t {
			return c.Parse
		}
	}
	return ParseText
}

// resolveType returns the type of the first candidate accepting raw.
func resolveType(raw string) (ScalarType, bool) {
	for _, c := range Candidates {
		if _, err := c.Parse(raw); err == nil {
			return c.Type, true
		}
	}
	return 0, false
}

// InferType determines the scalar type of a field from all of its observed
// raw values (one per row, "" for blank) and returns the parser to convert
// its cells with.
func InferType(field string, values []string) (ScalarType, ParseFunc, error) {
	// firstRow[t] is 1 + the row index where type t was first seen, 0 if never.
	var firstRow [numScalarTypes]int

	for i, raw := range values {
		if raw == "" {
			continue
		}
		t, ok := resolveType(raw)
		if !ok {
			return 0, nil, fmt.Errorf("field %q row %d: no parser accepted %q", field, i, raw)
		}
		if firstRow[t] == 0 {
			firstRow[t] = i + 1
		}
	}

	switch {
	case firstRow[TypeText] > 0:
		return TypeText, ParseText, nil
	case firstRow[TypeInteger] > 0 && firstRow[TypeDate] > 0:
		return 0, nil, newTypeConflict(field, values, firstRow[TypeInteger]-1, firstRow[TypeDate]-1)
	case firstRow[TypeInteger] > 0:
		return TypeInteger, ParseInteger, nil
	case firstRow[TypeDate] > 0:
		return TypeDate, ParseDate, nil
	default:
		return TypeText, ParseText, nil
	}
}

// newTypeConflict builds the error for a field holding both integers and
// dates, ordering the two sightings by row.
func newTypeConflict(field string, values []string, intRow, dateRow int) *TypeConflictError {
	e := &TypeConflictError{
		Field:     field,
		Want:      TypeInteger,
		WantValue: values[intRow],
		WantRow:   intRow,
		Got:       TypeDate,
		GotValue:  values[dateRow],
		GotRow:    dateRow,
	}
	if dateRow < intRow {
		e.Want, e.Got = e.Got, e.Want
		e.WantValue, e.GotValue = e.GotValue, e.WantValue
		e.WantRow, e.GotRow = e.GotRow, e.WantRow
	}
	return e
}
