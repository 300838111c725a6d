package engine

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"techjobs/internal/models"
)

// ArrowSchema returns a schema with one utf8 column per name.
func ArrowSchema(columns []string) *arrow.Schema {
	fields := make([]arrow.Field, 0, len(columns))
	for _, name := range columns {
		fields = append(fields, arrow.Field{Name: name, Type: arrow.BinaryTypes.String})
	}
	return arrow.NewSchema(fields, nil)
}

// WriteArrow writes rows to w as an Arrow IPC stream holding one record
// batch. Values missing from a row are written as nulls.
func WriteArrow(w io.Writer, columns []string, rows []models.Row) error {
	mem := memory.NewGoAllocator()
	schema := ArrowSchema(columns)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for c, name := range columns {
		fb := b.Field(c).(*array.StringBuilder)
		fb.Reserve(len(rows))
		for _, row := range rows {
			if v, ok := row.GetString(name); ok {
				fb.Append(v)
			} else {
				fb.AppendNull()
			}
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	wr := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := wr.Write(rec); err != nil {
		_ = wr.Close()
		return fmt.Errorf("failed to write arrow record: %w", err)
	}
	if err := wr.Close(); err != nil {
		return fmt.Errorf("failed to close arrow stream: %w", err)
	}
	return nil
}
