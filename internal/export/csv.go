package export

import (
	"encoding/csv"
	"io"

	"github.com/JonMunkholm/csvunion/internal/core"
)

// WriteCSV writes the header then one line per merged row. Missing cells are
// empty and dates use YYYY-MM-DD.
func WriteCSV(w io.Writer, m *core.MergedTable) error {
	mx, err := m.Matrix()
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(mx.Header); err != nil {
		return err
	}

	record := make([]string, len(mx.Header))
	for _, row := range mx.Rows {
		for i, v := range row {
			record[i] = v.String()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
