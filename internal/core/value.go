package core

// value.go defines the typed cell model shared by every table view.
//
// A Value is a tagged variant: Missing, Integer, Date or Text. The payloads
// are pgtype values so that a cell renders the same way it would when handed
// to pgx, and so that JSON encoding follows pgtype's conventions:
//
//   - Integer: JSON number
//   - Date: "YYYY-MM-DD"
//   - Text: JSON string
//   - Missing: null
//
// Missing is distinct from both the empty string and integer zero.

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ScalarType is the inferred type of a field.
type ScalarType int

const (
	TypeInteger ScalarType = iota
	TypeDate
	TypeText
)

// numScalarTypes is the count of ScalarType values, used for fixed-size lookups.
const numScalarTypes = 3

func (t ScalarType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeDate:
		return "date"
	case TypeText:
		return "text"
	default:
		return "unknown"
	}
}

// MarshalText lets ScalarType render by name in JSON and YAML.
func (t ScalarType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindInteger
	KindDate
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindDate:
		return "date"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// isoDateLayout is the only layout a Date value is rendered with.
const isoDateLayout = "2006-01-02"

// Value is one typed cell.
type Value struct {
	kind Kind
	i    pgtype.Int8
	d    pgtype.Date
	s    pgtype.Text
}

// Missing returns the missing marker.
func Missing() Value {
	return Value{}
}

// IntegerValue wraps n as an Integer cell.
func IntegerValue(n int64) Value {
	return Value{kind: KindInteger, i: pgtype.Int8{Int64: n, Valid: true}}
}

// DateValue wraps the calendar date of t as a Date cell. The time of day and
// location are dropped.
func DateValue(t time.Time) Value {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Value{kind: KindDate, d: pgtype.Date{Time: day, Valid: true}}
}

// TextValue wraps s as a Text cell. The empty string is a valid Text value;
// use Missing for absent data.
func TextValue(s string) Value {
	return Value{kind: KindText, s: pgtype.Text{String: s, Valid: true}}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is the missing marker.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Int returns the integer payload.
func (v Value) Int() (int64, bool) {
	return v.i.Int64, v.kind == KindInteger
}

// Date returns the date payload at midnight UTC.
func (v Value) Date() (time.Time, bool) {
	return v.d.Time, v.kind == KindDate
}

// Text returns the text payload.
func (v Value) Text() (string, bool) {
	return v.s.String, v.kind == KindText
}

// PgValue returns the pgtype payload, or nil for a missing cell.
func (v Value) PgValue() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindDate:
		return v.d
	case KindText:
		return v.s
	default:
		return nil
	}
}

// Equal reports whether v and o hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.i.Int64 == o.i.Int64
	case KindDate:
		return v.d.Time.Equal(o.d.Time)
	case KindText:
		return v.s.String == o.s.String
	default:
		return true
	}
}

// String renders v for text interchange. Missing renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i.Int64, 10)
	case KindDate:
		return v.d.Time.Format(isoDateLayout)
	case KindText:
		return v.s.String
	default:
		return ""
	}
}

// GoString makes test failure output readable.
func (v Value) GoString() string {
	if v.kind == KindMissing {
		return "core.Missing()"
	}
	return fmt.Sprintf("core.Value{%s %q}", v.kind, v.String())
}

var jsonNull = []byte("null")

// MarshalJSON implements json.Marshaler using the pgtype encodings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInteger:
		return v.i.MarshalJSON()
	case KindDate:
		return v.d.MarshalJSON()
	case KindText:
		return v.s.MarshalJSON()
	default:
		return bytes.Clone(jsonNull), nil
	}
}
