package core

// header.go turns raw CSV header strings into field identifiers.
//
// Source files often decorate column titles with footnote markers such as
// "(A05)" or "B12-B14" and use punctuation freely. The normalized identifier
// drops the markers and reduces punctuation to single underscores, so that
// "COVID-19 Deaths (A05)" becomes "COVID_19_Deaths".

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// footnoteRangeRegex matches a hyphenated pair of footnote codes ("B12-B14").
	// It must run before footnoteRegex, which would otherwise leave the hyphen.
	footnoteRangeRegex = regexp.MustCompile(`\b[A-Z][0-9]{2}-[A-Z][0-9]{2}\b`)

	// footnoteRegex matches a lone footnote code ("A5", "A05", "A105").
	footnoteRegex = regexp.MustCompile(`\b[A-Z][0-9]{1,3}\b`)

	underscoreRunRegex = regexp.MustCompile(`_{2,3}`)

	headerPunctuation = strings.NewReplacer(
		"(", "_",
		")", "_",
		",", "_",
		"-", "_",
		" ", "_",
	)
)

// NormalizeHeader converts one raw header into a field identifier.
//
// The steps are applied in order:
//  1. strip footnote markers
//  2. replace ( ) , - and space with underscore
//  3. collapse runs of underscores to one
//  4. strip trailing underscores
//
// NormalizeHeader does not check uniqueness; see NormalizeHeaders.
func NormalizeHeader(raw string) string {
	s := footnoteRangeRegex.ReplaceAllString(raw, "")
	s = footnoteRegex.ReplaceAllString(s, "")
	s = headerPunctuation.Replace(s)

	for {
		collapsed := underscoreRunRegex.ReplaceAllString(s, "_")
		if collapsed == s {
			break
		}
		s = collapsed
	}

	return strings.TrimRight(s, "_")
}

// NormalizeHeaders normalizes a full header row and guarantees the result is
// collision-free. An identifier that normalizes to "" is named field_<n> after
// its 1-based column position; a repeated identifier gets a _2, _3, ... suffix
// in column order.
func NormalizeHeaders(raw []string) []string {
	fields := make([]string, len(raw))
	taken := make(map[string]bool, len(raw))

	for i, h := range raw {
		name := NormalizeHeader(h)
		if name == "" {
			name = "field_" + strconv.Itoa(i+1)
		}
		if taken[name] {
			name = disambiguate(name, taken)
		}
		taken[name] = true
		fields[i] = name
	}

	return fields
}

func disambiguate(name string, taken map[string]bool) string {
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", name, n)
		if !taken[candidate] {
			return candidate
		}
	}
}
