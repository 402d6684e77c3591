package csvread

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Delimiters(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"comma", "a,b\n1,2\n3,4\n"},
		{"semicolon", "a;b\n1;2\n3;4\n"},
		{"tab", "a\tb\n1\t2\n3\t4\n"},
		{"pipe", "a|b\n1|2\n3|4\n"},
		{"crlf", "a,b\r\n1,2\r\n3,4\r\n"},
		{"no trailing newline", "a,b\n1,2\n3,4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers, rows, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, headers)
			assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, rows)
		})
	}
}

func TestParse_QuotedDelimiter(t *testing.T) {
	headers, rows, err := Parse("name,city\n\"Smith, J\",Boston\n\"Doe, A\",Austin\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "city"}, headers)
	assert.Equal(t, [][]string{{"Smith, J", "Boston"}, {"Doe, A", "Austin"}}, rows)
}

func TestParse_QuotedMultilineCell(t *testing.T) {
	tests := []struct {
		name string
		text string
		want [][]string
	}{
		{
			"comma",
			"name,note\nA,\"line one\nline two\"\nB,plain\n",
			[][]string{{"A", "line one\nline two"}, {"B", "plain"}},
		},
		{
			"semicolon with commas in note",
			"name;note\nA;\"one, two\nthree\"\nB;plain\n",
			[][]string{{"A", "one, two\nthree"}, {"B", "plain"}},
		},
		{
			"crlf",
			"name,note\r\nA,\"line one\r\nline two\"\r\nB,plain\r\n",
			[][]string{{"A", "line one\nline two"}, {"B", "plain"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers, rows, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, []string{"name", "note"}, headers)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestParse_SkipsEmptyLines(t *testing.T) {
	headers, rows, err := Parse("a,b\n\n1,2\n\n3,4\n\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, headers)
	assert.Len(t, rows, 2)
}

func TestParse_HeaderOnly(t *testing.T) {
	headers, rows, err := Parse("a,b,c\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, headers)
	assert.Empty(t, rows)
}

func TestParse_SingleColumn(t *testing.T) {
	headers, rows, err := Parse("id\n1\n2\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, headers)
	assert.Equal(t, [][]string{{"1"}, {"2"}}, rows)
}

func TestParse_BlankCellsKept(t *testing.T) {
	_, rows, err := Parse("a,b,c\n1,,3\n,,\n")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "", "3"}, {"", "", ""}}, rows)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "", ErrEmpty},
		{"whitespace", "  \n\n", ErrEmpty},
		{"inconsistent", "a,b\n1,2,3\n", ErrNoDialect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.text)
			var mt *MalformedTableError
			require.ErrorAs(t, err, &mt)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestParse_RaggedRowBeyondSample(t *testing.T) {
	r := Reader{SampleSize: 8}
	_, _, err := r.Parse("a,b\n1,2\n3,4,5\n")

	var mt *MalformedTableError
	require.ErrorAs(t, err, &mt)
	assert.Equal(t, 3, mt.Line)
}

func TestReader_ForcedComma(t *testing.T) {
	r := Reader{Comma: ';'}
	headers, rows, err := r.Parse("a;b\n1;2\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, headers)
	assert.Equal(t, [][]string{{"1", "2"}}, rows)
}

func TestSniff_PrefersHighestConsistentCount(t *testing.T) {
	// Commas appear once per line, semicolons twice.
	d, err := Sniff("a;b,x;c\n1;2,y;3\n", DefaultSampleSize)
	require.NoError(t, err)
	assert.Equal(t, ';', d)
}

func TestSniff_IgnoresPartialLastLine(t *testing.T) {
	text := "a,b\n1,2\n3,4,5,6"
	d, err := Sniff(text, len(text)-1)
	require.NoError(t, err)
	assert.Equal(t, ',', d)
}

func TestSniff_QuotedNewlineInsideSample(t *testing.T) {
	d, err := Sniff("id|note\n1|\"a|b\nc\"\n2|d\n", DefaultSampleSize)
	require.NoError(t, err)
	assert.Equal(t, '|', d)
}
