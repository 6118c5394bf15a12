package index

import (
	"fmt"
	"strconv"
	"strings"
)

// Grouper combines several metadata fields into one group id, the mixed radix
// number whose digits are the field values. It is used for group-wise
// evaluation.
type Grouper struct {
	fields  []string
	cols    []int
	card    []int64
	factors []int64
	n       int
	labels  map[string][]string
}

// NewGrouper sizes each field from the largest value in m. labels optionally
// names the values of a field for GroupString and may widen its cardinality.
func NewGrouper(m *MetadataArray, fields []string, labels map[string][]string) (*Grouper, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no grouping fields", ErrUnknownField)
	}
	g := &Grouper{fields: fields, labels: labels, n: 1}
	rows, _ := m.Shape()
	for _, f := range fields {
		c := m.FieldIndex(f)
		if c < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
		card := int64(len(labels[f]))
		for i := 0; i < rows; i++ {
			v := m.At(i, c)
			if v < 0 {
				return nil, fmt.Errorf("%w: field %s has negative value %d", ErrGroupEncoding, f, v)
			}
			card = max(card, v+1)
		}
		card = max(card, 1)
		g.cols = append(g.cols, c)
		g.factors = append(g.factors, int64(g.n))
		g.card = append(g.card, card)
		g.n *= int(card)
	}
	return g, nil
}

func (g *Grouper) NGroups() int { return g.n }

func (g *Grouper) Fields() []string { return g.fields }

// Group returns the group id of one metadata row.
func (g *Grouper) Group(row []int64) (int, error) {
	id := int64(0)
	for k, c := range g.cols {
		if c >= len(row) {
			return 0, fmt.Errorf("%w: row of %d columns", ErrShapeMismatch, len(row))
		}
		v := row[c]
		if v < 0 || v >= g.card[k] {
			return 0, fmt.Errorf("%w: %s=%d outside [0, %d)", ErrGroupEncoding, g.fields[k], v, g.card[k])
		}
		id += v * g.factors[k]
	}
	return int(id), nil
}

// Groups returns the group id of every row of m.
func (g *Grouper) Groups(m *MetadataArray) ([]int, error) {
	rows, _ := m.Shape()
	out := make([]int, rows)
	for i := range out {
		id, err := g.Group(m.Row(i))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = id
	}
	return out, nil
}

// Counts returns the number of rows of m in each group.
func (g *Grouper) Counts(m *MetadataArray) ([]int, error) {
	groups, err := g.Groups(m)
	if err != nil {
		return nil, err
	}
	counts := make([]int, g.n)
	for _, id := range groups {
		counts[id]++
	}
	return counts, nil
}

// GroupString renders a group id as "field = value" pairs.
func (g *Grouper) GroupString(id int) string {
	parts := make([]string, len(g.fields))
	rest := int64(id)
	for k := len(g.fields) - 1; k >= 0; k-- {
		v := rest / g.factors[k]
		rest %= g.factors[k]
		val := strconv.FormatInt(v, 10)
		if names := g.labels[g.fields[k]]; v < int64(len(names)) {
			val = names[v]
		}
		parts[k] = g.fields[k] + " = " + val
	}
	return strings.Join(parts, ", ")
}
