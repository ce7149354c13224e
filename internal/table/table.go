package table

import (
	"math"
	"strconv"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
)

// Kind is the inferred storage type of a column.
type Kind int

const (
	KindString Kind = iota
	KindInt64
	KindFloat64
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	default:
		return "string"
	}
}

// Numeric reports whether columns of this kind get numeric statistics.
func (k Kind) Numeric() bool { return k == KindInt64 || k == KindFloat64 }

// Categorical reports whether columns of this kind are treated as labels.
func (k Kind) Categorical() bool { return k == KindString }

func (k Kind) arrowType() arrow.DataType {
	switch k {
	case KindInt64:
		return arrow.PrimitiveTypes.Int64
	case KindFloat64:
		return arrow.PrimitiveTypes.Float64
	case KindBool:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

// Column is a read-only view over one Arrow array of a Table.
type Column struct {
	Name string
	Kind Kind
	data arrow.Array
}

// Len returns the number of rows, nulls included.
func (c Column) Len() int { return c.data.Len() }

// NullN returns the number of null cells.
func (c Column) NullN() int { return c.data.NullN() }

// IsNull reports whether row i is null.
func (c Column) IsNull(i int) bool { return c.data.IsNull(i) }

// Float returns row i as float64. Non-numeric kinds and nulls yield NaN.
func (c Column) Float(i int) float64 {
	if c.data.IsNull(i) {
		return math.NaN()
	}
	switch a := c.data.(type) {
	case *array.Int64:
		return float64(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	}
	return math.NaN()
}

// Floats returns the non-null values of a numeric column in row order.
func (c Column) Floats() []float64 {
	if !c.Kind.Numeric() {
		return nil
	}
	out := make([]float64, 0, c.Len()-c.NullN())
	for i := 0; i < c.Len(); i++ {
		if c.data.IsNull(i) {
			continue
		}
		out = append(out, c.Float(i))
	}
	return out
}

// String returns row i rendered as text. Nulls render as the empty string;
// use IsNull to tell them apart.
func (c Column) String(i int) string {
	if c.data.IsNull(i) {
		return ""
	}
	switch a := c.data.(type) {
	case *array.String:
		return a.Value(i)
	case *array.Int64:
		return strconv.FormatInt(a.Value(i), 10)
	case *array.Float64:
		v := a.Value(i)
		if v == 0 {
			// -0 equals 0
			v = 0
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case *array.Boolean:
		if a.Value(i) {
			return "True"
		}
		return "False"
	}
	return ""
}

// SizeBytes returns the size of every Arrow buffer backing the column,
// including validity bitmaps, offsets and variable-length string data.
func (c Column) SizeBytes() int {
	return dataSize(c.data.Data())
}

func dataSize(d arrow.ArrayData) int {
	var n int
	for _, buf := range d.Buffers() {
		if buf != nil {
			n += buf.Len()
		}
	}
	for _, child := range d.Children() {
		n += dataSize(child)
	}
	return n
}

// Table is an immutable, column-oriented dataset loaded from a file.
type Table struct {
	// Name is the base name of the source file.
	Name string

	rec  arrow.Record
	cols []Column
}

func newTable(name string, names []string, kinds []Kind, arrs []arrow.Array, rows int) *Table {
	fields := make([]arrow.Field, len(names))
	cols := make([]Column, len(names))
	for i := range names {
		fields[i] = arrow.Field{Name: names[i], Type: kinds[i].arrowType(), Nullable: true}
		cols[i] = Column{Name: names[i], Kind: kinds[i], data: arrs[i]}
	}
	schema := arrow.NewSchema(fields, nil)
	rec := array.NewRecord(schema, arrs, int64(rows))
	for _, a := range arrs {
		// the record holds its own reference
		a.Release()
	}
	return &Table{Name: name, rec: rec, cols: cols}
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return int(t.rec.NumRows()) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the columns in source order.
func (t *Table) Columns() []Column { return t.cols }

// Column returns the column at index i.
func (t *Table) Column(i int) Column { return t.cols[i] }

// Schema returns the Arrow schema of the table.
func (t *Table) Schema() *arrow.Schema { return t.rec.Schema() }

// SizeBytes returns the total in-memory size of all column data.
func (t *Table) SizeBytes() int {
	var n int
	for _, c := range t.cols {
		n += c.SizeBytes()
	}
	return n
}

// Release frees the Arrow buffers. The table must not be used afterwards.
func (t *Table) Release() {
	if t.rec != nil {
		t.rec.Release()
		t.rec = nil
	}
}
