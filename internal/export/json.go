package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/JonMunkholm/csvunion/internal/core"
)

// ColumnsView is the column-oriented JSON shape.
type ColumnsView struct {
	Fields  []string                   `json:"fields"`
	Types   map[string]core.ScalarType `json:"types"`
	Columns map[string][]core.Value    `json:"columns"`
}

// View returns the JSON-encodable value for one of the JSON formats.
func View(f Format, m *core.MergedTable) (any, error) {
	switch f {
	case FormatRows:
		if m.Rows == nil {
			return []core.Record{}, nil
		}
		return m.Rows, nil
	case FormatColumns:
		cols, err := m.Columns()
		if err != nil {
			return nil, err
		}
		return ColumnsView{Fields: m.Fields, Types: m.Types, Columns: cols}, nil
	case FormatMatrix:
		return m.Matrix()
	default:
		return nil, fmt.Errorf("format %q is not a JSON view", f)
	}
}

// WriteJSON encodes the f view of m followed by a newline.
func WriteJSON(w io.Writer, f Format, m *core.MergedTable) error {
	v, err := View(f, m)
	if err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(v)
}
