package index

import (
	"fmt"
	"slices"
)

// MetadataArray is a row-major int64 table with one named column per field.
type MetadataArray struct {
	fields []string
	data   []int64
	rows   int
}

// NewMetadataArray copies rows into a table. Every row must have one value
// per field.
func NewMetadataArray(fields []string, rows [][]int64) (*MetadataArray, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", ErrShapeMismatch)
	}
	m := &MetadataArray{
		fields: slices.Clone(fields),
		data:   make([]int64, 0, len(fields)*len(rows)),
		rows:   len(rows),
	}
	for i, r := range rows {
		if len(r) != len(fields) {
			return nil, fmt.Errorf("%w: row %d has %d columns, fields are %v", ErrShapeMismatch, i, len(r), fields)
		}
		m.data = append(m.data, r...)
	}
	return m, nil
}

// Shape returns (rows, columns).
func (m *MetadataArray) Shape() (int, int) { return m.rows, len(m.fields) }

func (m *MetadataArray) Fields() []string { return slices.Clone(m.fields) }

// Row returns a copy of row i.
func (m *MetadataArray) Row(i int) []int64 {
	n := len(m.fields)
	return slices.Clone(m.data[i*n : (i+1)*n])
}

func (m *MetadataArray) At(i, col int) int64 {
	return m.data[i*len(m.fields)+col]
}

// FieldIndex returns the column of field, or -1.
func (m *MetadataArray) FieldIndex(field string) int {
	return slices.Index(m.fields, field)
}

func (m *MetadataArray) Column(field string) ([]int64, error) {
	c := m.FieldIndex(field)
	if c < 0 {
		return nil, fmt.Errorf("%w: %q not in %v", ErrUnknownField, field, m.fields)
	}
	out := make([]int64, m.rows)
	for i := range out {
		out[i] = m.At(i, c)
	}
	return out, nil
}

// Select returns a new array holding the given rows in order.
func (m *MetadataArray) Select(rows []int) *MetadataArray {
	n := len(m.fields)
	out := &MetadataArray{fields: m.fields, data: make([]int64, 0, n*len(rows)), rows: len(rows)}
	for _, i := range rows {
		out.data = append(out.data, m.data[i*n:(i+1)*n]...)
	}
	return out
}

// CheckShape fails unless the table has rows rows and len(fields) columns.
func (m *MetadataArray) CheckShape(rows int, fields []string) error {
	if m.rows != rows {
		return fmt.Errorf("%w: %d metadata rows for %d inputs", ErrShapeMismatch, m.rows, rows)
	}
	if len(m.fields) != len(fields) {
		return fmt.Errorf("%w: %d metadata columns for %d fields", ErrShapeMismatch, len(m.fields), len(fields))
	}
	return nil
}
