// Package export renders a merged table in the supported output formats.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/csvunion/internal/core"
)

// Format names an output encoding.
type Format string

const (
	FormatRows    Format = "json" // JSON array of row objects
	FormatColumns Format = "columns"
	FormatMatrix  Format = "matrix"
	FormatCSV     Format = "csv"
	FormatArrow   Format = "arrow" // Arrow IPC stream
	FormatHTML    Format = "html"
)

// Formats lists every supported format.
var Formats = []Format{FormatRows, FormatColumns, FormatMatrix, FormatCSV, FormatArrow, FormatHTML}

// ParseFormat resolves a format name. "rows" is accepted for FormatRows and
// the empty string means FormatRows.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", "rows":
		return FormatRows, nil
	case FormatRows, FormatColumns, FormatMatrix, FormatCSV, FormatArrow, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// ContentType returns the media type for f.
func ContentType(f Format) string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatArrow:
		return "application/vnd.apache.arrow.stream"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/json"
	}
}

// Write encodes m to w in format f.
func Write(w io.Writer, f Format, m *core.MergedTable) error {
	switch f {
	case FormatRows, FormatColumns, FormatMatrix:
		return WriteJSON(w, f, m)
	case FormatCSV:
		return WriteCSV(w, m)
	case FormatArrow:
		return WriteArrow(w, m)
	case FormatHTML:
		return RenderHTML(w, m, "Merged table")
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}
