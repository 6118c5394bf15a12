// Package annotation reads the normalised per-tree annotation tables and
// turns them into geometry slices.
package annotation

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Geometry is the payload kind a labeled table carries.
type Geometry int

const (
	Points Geometry = iota
	Boxes
	Polygons
)

func (g Geometry) String() string {
	switch g {
	case Points:
		return "points"
	case Boxes:
		return "boxes"
	case Polygons:
		return "polygons"
	}
	return fmt.Sprintf("geometry(%d)", int(g))
}

// Columns lists the geometry columns a labeled table of kind g must carry.
func (g Geometry) Columns() []string {
	switch g {
	case Points:
		return []string{"x", "y"}
	case Boxes:
		return []string{"xmin", "ymin", "xmax", "ymax"}
	case Polygons:
		return []string{"polygon"}
	}
	return nil
}

// Row is one annotation without its geometry. Filename is the image id and
// repeats across the annotations of one image.
type Row struct {
	Filename string
	Split    string
	Source   string
}

// Table is a labeled annotation table. Exactly one of the geometry slices is
// filled, parallel to Rows.
type Table struct {
	Geometry Geometry
	Rows     []Row
	Points   [][2]float64
	Boxes    [][4]float64
	Polygons []orb.Polygon
}

func (t *Table) Len() int { return len(t.Rows) }

// Filenames returns the image id of every row.
func (t *Table) Filenames() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Filename
	}
	return out
}

func (t *Table) Sources() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Source
	}
	return out
}

// UnlabeledRow is one record of an unlabeled metadata table. Datetime is
// unix seconds, or -1 when the table has no datetime for it.
type UnlabeledRow struct {
	Filename string
	Location string
	Source   string
	Datetime int64
	Y        int
}

type UnlabeledTable struct {
	Rows []UnlabeledRow
	// HasY reports whether the table carried a y column.
	HasY bool
}

func (t *UnlabeledTable) Len() int { return len(t.Rows) }

func (t *UnlabeledTable) Locations() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Location
	}
	return out
}

func (t *UnlabeledTable) Sources() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Source
	}
	return out
}
