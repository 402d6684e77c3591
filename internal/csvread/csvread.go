// Package csvread tokenizes CSV text into a header row and data rows.
//
// The delimiter is not configured: it is sniffed from a sample at the start
// of the text, the way spreadsheet exports from different tools can be read
// without the caller knowing which tool produced them.
package csvread

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultSampleSize is how many leading bytes are inspected for the delimiter.
const DefaultSampleSize = 1024

// Delimiters are the candidate field separators, in preference order.
var Delimiters = []rune{',', ';', '\t', '|'}

var (
	// ErrEmpty means the text holds no header row.
	ErrEmpty = errors.New("no header row")

	// ErrNoDialect means no candidate delimiter splits the sample consistently.
	ErrNoDialect = errors.New("could not determine delimiter")
)

// MalformedTableError reports text that cannot be read as a table.
type MalformedTableError struct {
	Line int // 1-based line in the text; 0 when not tied to a line
	Err  error
}

func (e *MalformedTableError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed table at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed table: %v", e.Err)
}

func (e *MalformedTableError) Unwrap() error { return e.Err }

// Reader parses CSV text. The zero value is ready to use.
type Reader struct {
	// SampleSize overrides DefaultSampleSize.
	SampleSize int

	// Comma forces a delimiter and skips sniffing.
	Comma rune
}

// Parse is a shortcut for the zero Reader's Parse.
func Parse(text string) (headers []string, rows [][]string, err error) {
	return Reader{}.Parse(text)
}

// Parse splits text into the header row and data rows. Fully empty lines are
// skipped. Every data row must have as many cells as the header.
func (r Reader) Parse(text string) (headers []string, rows [][]string, err error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, &MalformedTableError{Err: ErrEmpty}
	}

	comma := r.Comma
	if comma == 0 {
		size := r.SampleSize
		if size <= 0 {
			size = DefaultSampleSize
		}
		comma, err = Sniff(text, size)
		if err != nil {
			return nil, nil, err
		}
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = comma
	cr.FieldsPerRecord = 0
	cr.ReuseRecord = false

	headers, err = cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, &MalformedTableError{Err: ErrEmpty}
		}
		return nil, nil, malformed(err)
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, malformed(err)
		}
		rows = append(rows, rec)
	}

	return headers, rows, nil
}

func malformed(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &MalformedTableError{Line: pe.Line, Err: pe.Err}
	}
	return &MalformedTableError{Err: err}
}

// Sniff picks the delimiter from the first size bytes of text.
//
// A candidate qualifies when it appears the same, non-zero number of times
// in every complete non-empty record of the sample, ignoring delimiters
// inside double quotes. A quoted cell may span lines, so records are split
// on newlines outside quotes only. The qualifying candidate with the most
// occurrences wins, ties going to the earlier entry in Delimiters. A sample
// without any candidate is a one-column table and reads as comma separated.
func Sniff(text string, size int) (rune, error) {
	sample := text
	truncated := false
	if len(sample) > size {
		sample = sample[:size]
		truncated = true
	}

	records := splitRecords(strings.ReplaceAll(sample, "\r\n", "\n"))
	// The last record of a cut sample is partial.
	if truncated && len(records) > 1 {
		records = records[:len(records)-1]
	}

	var nonEmpty []string
	for _, rec := range records {
		if strings.TrimSpace(rec) != "" {
			nonEmpty = append(nonEmpty, rec)
		}
	}
	if len(nonEmpty) == 0 {
		return 0, &MalformedTableError{Err: ErrEmpty}
	}

	best, bestCount := rune(0), 0
	for _, d := range Delimiters {
		n := countOutsideQuotes(nonEmpty[0], d)
		if n == 0 {
			continue
		}
		consistent := true
		for _, rec := range nonEmpty[1:] {
			if countOutsideQuotes(rec, d) != n {
				consistent = false
				break
			}
		}
		if consistent && n > bestCount {
			best, bestCount = d, n
		}
	}

	if best != 0 {
		return best, nil
	}
	if !anyDelimiter(nonEmpty) {
		return ',', nil
	}
	return 0, &MalformedTableError{Err: ErrNoDialect}
}

// splitRecords splits s on newlines that are not inside double quotes.
func splitRecords(s string) []string {
	var records []string
	quoted := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			quoted = !quoted
		case '\n':
			if !quoted {
				records = append(records, s[start:i])
				start = i + 1
			}
		}
	}
	return append(records, s[start:])
}

func countOutsideQuotes(rec string, d rune) int {
	n := 0
	quoted := false
	for _, c := range rec {
		switch {
		case c == '"':
			quoted = !quoted
		case c == d && !quoted:
			n++
		}
	}
	return n
}

func anyDelimiter(records []string) bool {
	for _, rec := range records {
		for _, d := range Delimiters {
			if countOutsideQuotes(rec, d) > 0 {
				return true
			}
		}
	}
	return false
}
