package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) Value {
	return DateValue(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func TestCandidates_Order(t *testing.T) {
	require.Len(t, Candidates, 3)
	assert.Equal(t, TypeInteger, Candidates[0].Type)
	assert.Equal(t, TypeDate, Candidates[1].Type)
	assert.Equal(t, TypeText, Candidates[2].Type)
}

func TestParseInteger(t *testing.T) {
	valid := map[string]int64{
		"0":                    0,
		"42":                   42,
		"-7":                   -7,
		"+3":                   3,
		"007":                  7,
		"9223372036854775807":  9223372036854775807,
		"-9223372036854775808": -9223372036854775808,
	}
	for raw, want := range valid {
		v, err := ParseInteger(raw)
		require.NoError(t, err, raw)
		n, ok := v.Int()
		assert.True(t, ok, raw)
		assert.Equal(t, want, n, raw)
	}

	for _, raw := range []string{"1.5", "1e3", "1,000", " 1", "1 ", "0x10", "abc", "9223372036854775808", ""} {
		_, err := ParseInteger(raw)
		assert.Error(t, err, raw)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want Value
	}{
		{"2020-03-04", date(2020, time.March, 4)},
		{"03/04/2020", date(2020, time.March, 4)},
		{"3/4/2020", date(2020, time.March, 4)},
		{"12/31/1999", date(1999, time.December, 31)},
		{"02/29/2020", date(2020, time.February, 29)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDate(tt.raw)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %#v, want %#v", got, tt.want)
		})
	}

	for _, raw := range []string{"2020-13-01", "02/30/2020", "03/04/20", "2020/03/04", "04.03.2020", "March 4, 2020", "20200304", "1/2/3/2020"} {
		_, err := ParseDate(raw)
		assert.Error(t, err, raw)
	}
}

func TestInferType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   ScalarType
	}{
		{"all integers", []string{"1", "2", "-3"}, TypeInteger},
		{"integers with blanks", []string{"1", "", "3"}, TypeInteger},
		{"iso dates", []string{"2020-01-01", "2021-12-31"}, TypeDate},
		{"mixed date styles", []string{"2020-03-04", "03/04/2020"}, TypeDate},
		{"text", []string{"a", "b"}, TypeText},
		{"integer then text widens", []string{"5", "abc"}, TypeText},
		{"text then date widens", []string{"n/a", "2020-01-01"}, TypeText},
		{"all blank", []string{"", ""}, TypeText},
		{"no rows", nil, TypeText},
		{"integer beats date", []string{"20200304"}, TypeInteger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, parse, err := InferType("f", tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, typ)
			require.NotNil(t, parse)
		})
	}
}

func TestInferType_Conflict(t *testing.T) {
	_, _, err := InferType("week", []string{"", "5", "7", "2020-01-01"})

	var conflict *TypeConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "week", conflict.Field)
	assert.Equal(t, TypeInteger, conflict.Want)
	assert.Equal(t, "5", conflict.WantValue)
	assert.Equal(t, 1, conflict.WantRow)
	assert.Equal(t, TypeDate, conflict.Got)
	assert.Equal(t, "2020-01-01", conflict.GotValue)
	assert.Equal(t, 3, conflict.GotRow)
}

func TestInferType_ConflictDateFirst(t *testing.T) {
	_, _, err := InferType("d", []string{"01/02/2020", "5"})

	var conflict *TypeConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, TypeDate, conflict.Want)
	assert.Equal(t, 0, conflict.WantRow)
	assert.Equal(t, TypeInteger, conflict.Got)
	assert.Equal(t, 1, conflict.GotRow)
}

func TestParserFor(t *testing.T) {
	v, err := ParserFor(TypeDate)("1/2/2020")
	require.NoError(t, err)
	assert.Equal(t, KindDate, v.Kind())

	v, err = ParserFor(ScalarType(99))("x")
	require.NoError(t, err)
	assert.Equal(t, KindText, v.Kind())
}
