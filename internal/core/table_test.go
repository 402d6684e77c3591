package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTable(t *testing.T) {
	src := RawTable{
		Header: []string{"Data As Of", "Week (A05)", "COVID-19 Deaths", "State"},
		Data: [][]string{
			{"03/04/2020", "1", "10", "Ohio"},
			{"2020-03-11", "2", "", "Iowa"},
			{"", "3", "7", ""},
		},
	}

	tbl, err := BuildTable("weekly", src)
	require.NoError(t, err)

	assert.Equal(t, "weekly", tbl.Name())
	assert.Equal(t, []string{"Data_As_Of", "Week", "COVID_19_Deaths", "State"}, tbl.Fields())
	assert.Equal(t, map[string]ScalarType{
		"Data_As_Of":      TypeDate,
		"Week":            TypeInteger,
		"COVID_19_Deaths": TypeInteger,
		"State":           TypeText,
	}, tbl.Types())
	assert.Equal(t, 3, tbl.Len())

	rows := tbl.TypedRows()
	require.Len(t, rows, 3)
	assert.True(t, date(2020, time.March, 4).Equal(rows[0][0]))
	assert.True(t, date(2020, time.March, 11).Equal(rows[1][0]))

	// Blank Integer cells become 0, any other blank becomes Missing.
	assert.True(t, IntegerValue(0).Equal(rows[1][2]))
	assert.True(t, rows[2][0].IsMissing())
	assert.True(t, rows[2][3].IsMissing())
}

func TestNewTypedTable_DatesAgreeAcrossFormats(t *testing.T) {
	tbl, err := NewTypedTable("t", []string{"a", "b"}, [][]string{{"03/04/2020", "2020-03-04"}})
	require.NoError(t, err)

	row := tbl.TypedRows()[0]
	assert.True(t, row[0].Equal(row[1]), "got %#v and %#v", row[0], row[1])
}

func TestNewTypedTable_Records(t *testing.T) {
	tbl, err := NewTypedTable("t", []string{"id", "name"}, [][]string{{"1", "a"}, {"2", ""}})
	require.NoError(t, err)

	recs := tbl.Records()
	require.Len(t, recs, 2)

	v, ok := recs[1].Get("id")
	require.True(t, ok)
	assert.True(t, IntegerValue(2).Equal(v))

	v, ok = recs[1].Get("name")
	require.True(t, ok)
	assert.True(t, v.IsMissing())

	_, ok = recs[0].Get("nope")
	assert.False(t, ok)

	out, err := json.Marshal(recs)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"name":"a"},{"id":2,"name":null}]`, string(out))
}

func TestNewTypedTable_AllBlankIsText(t *testing.T) {
	tbl, err := NewTypedTable("t", []string{"a", "b"}, [][]string{{"1", ""}, {"2", ""}})
	require.NoError(t, err)

	typ, ok := tbl.Type("b")
	require.True(t, ok)
	assert.Equal(t, TypeText, typ)
	assert.True(t, tbl.TypedRows()[0][1].IsMissing())
}

func TestNewTypedTable_NoRows(t *testing.T) {
	tbl, err := NewTypedTable("t", []string{"a"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Empty(t, tbl.Records())

	typ, _ := tbl.Type("a")
	assert.Equal(t, TypeText, typ)
}

func TestNewTypedTable_TypeConflict(t *testing.T) {
	_, err := NewTypedTable("cases", []string{"x"}, [][]string{{"5"}, {"2020-01-01"}})

	var conflict *TypeConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "cases", conflict.Table)
	assert.Equal(t, "x", conflict.Field)
	assert.Contains(t, err.Error(), `table "cases"`)
}

func TestNewTypedTable_WidensToText(t *testing.T) {
	tbl, err := NewTypedTable("t", []string{"x"}, [][]string{{"5"}, {"abc"}})
	require.NoError(t, err)

	typ, _ := tbl.Type("x")
	assert.Equal(t, TypeText, typ)
	assert.True(t, TextValue("5").Equal(tbl.TypedRows()[0][0]))
}

func TestNewTypedTable_ShapeMismatch(t *testing.T) {
	_, err := NewTypedTable("t", []string{"a", "b"}, [][]string{{"1", "2"}, {"3"}})

	var shape *ShapeMismatchError
	require.ErrorAs(t, err, &shape)
	assert.Equal(t, 1, shape.Row)
	assert.Equal(t, 2, shape.Want)
	assert.Equal(t, 1, shape.Got)
}

func TestNewTypedTable_DuplicateField(t *testing.T) {
	_, err := NewTypedTable("t", []string{"a", "b", "a"}, nil)

	var dup *DuplicateFieldError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.Field)
	assert.Equal(t, 0, dup.First)
	assert.Equal(t, 2, dup.Again)
}

func TestTypedTable_CopiesInput(t *testing.T) {
	fields := []string{"a"}
	rows := [][]string{{"x"}}

	tbl, err := NewTypedTable("t", fields, rows)
	require.NoError(t, err)

	fields[0] = "changed"
	rows[0][0] = "changed"
	assert.Equal(t, []string{"a"}, tbl.Fields())
	assert.Equal(t, [][]string{{"x"}}, tbl.RawRows())

	tbl.Fields()[0] = "changed"
	assert.Equal(t, []string{"a"}, tbl.Fields())
}

func TestTypedTable_ViewsAreCopies(t *testing.T) {
	tbl, err := NewTypedTable("t", []string{"n"}, [][]string{{"1"}})
	require.NoError(t, err)

	tbl.TypedRows()[0][0] = TextValue("changed")
	tbl.Records()[0].values[0] = TextValue("changed")

	assert.Equal(t, [][]Value{{IntegerValue(1)}}, tbl.TypedRows())
	v, ok := tbl.Records()[0].Get("n")
	require.True(t, ok)
	assert.Equal(t, IntegerValue(1), v)

	typ, _ := tbl.Type("n")
	assert.Equal(t, TypeInteger, typ)
}

func TestTypedTable_Schema(t *testing.T) {
	tbl, err := NewTypedTable("t", []string{"n", "d", "s"}, [][]string{{"1", "2020-01-01", "x"}})
	require.NoError(t, err)

	assert.Equal(t, []FieldType{
		{Name: "n", Type: TypeInteger},
		{Name: "d", Type: TypeDate},
		{Name: "s", Type: TypeText},
	}, tbl.Schema())
	assert.True(t, tbl.HasField("d"))
	assert.False(t, tbl.HasField("x"))
}

func TestNewRecord(t *testing.T) {
	r, err := NewRecord([]string{"b", "a"}, []Value{IntegerValue(1), TextValue("x")})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, r.Fields())
	assert.Equal(t, 2, r.Len())
	assert.Len(t, r.Map(), 2)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":"x"}`, string(out))

	_, err = NewRecord([]string{"a"}, nil)
	var shape *ShapeMismatchError
	assert.ErrorAs(t, err, &shape)

	_, err = NewRecord([]string{"a", "a"}, []Value{Missing(), Missing()})
	var dup *DuplicateFieldError
	assert.ErrorAs(t, err, &dup)
}
