package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/apache/arrow/go/v7/arrow/ipc"
	"github.com/apache/arrow/go/v7/arrow/memory"

	"github.com/JonMunkholm/csvunion/internal/core"
)

const secondsPerDay = 24 * 60 * 60

// ArrowSchema maps the merged fields to Arrow columns: Integer to int64, Date
// to date32 and Text to utf8. Every column is nullable.
func ArrowSchema(m *core.MergedTable) *arrow.Schema {
	fields := make([]arrow.Field, len(m.Fields))
	for i, name := range m.Fields {
		fields[i] = arrow.Field{Name: name, Type: arrowType(m.Types[name]), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(t core.ScalarType) arrow.DataType {
	switch t {
	case core.TypeInteger:
		return arrow.PrimitiveTypes.Int64
	case core.TypeDate:
		return arrow.FixedWidthTypes.Date32
	default:
		return arrow.BinaryTypes.String
	}
}

// WriteArrow writes m as an Arrow IPC stream holding a single record batch.
func WriteArrow(w io.Writer, m *core.MergedTable) error {
	mem := memory.NewGoAllocator()
	schema := ArrowSchema(m)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for r, row := range m.Rows {
		values := row.Values()
		for i, v := range values {
			if err := appendValue(b.Field(i), v); err != nil {
				return fmt.Errorf("row %d field %q: %w", r, m.Fields[i], err)
			}
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := iw.Write(rec); err != nil {
		_ = iw.Close()
		return fmt.Errorf("write arrow record: %w", err)
	}
	return iw.Close()
}

func appendValue(fb array.Builder, v core.Value) error {
	if v.IsMissing() {
		fb.AppendNull()
		return nil
	}

	switch b := fb.(type) {
	case *array.Int64Builder:
		n, ok := v.Int()
		if !ok {
			return fmt.Errorf("%s value in integer column", v.Kind())
		}
		b.Append(n)
	case *array.Date32Builder:
		d, ok := v.Date()
		if !ok {
			return fmt.Errorf("%s value in date column", v.Kind())
		}
		b.Append(arrow.Date32(d.Unix() / secondsPerDay))
	case *array.StringBuilder:
		b.Append(v.String())
	default:
		return fmt.Errorf("unsupported arrow builder %T", fb)
	}
	return nil
}
