package annotation

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/forest-guardian/treeindex/internal/log"
	"github.com/gocarina/gocsv"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/unicode/norm"
)

type pointRecord struct {
	Filename string  `csv:"filename"`
	Split    string  `csv:"split"`
	Source   string  `csv:"source"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
}

type boxRecord struct {
	Filename string  `csv:"filename"`
	Split    string  `csv:"split"`
	Source   string  `csv:"source"`
	Xmin     float64 `csv:"xmin"`
	Ymin     float64 `csv:"ymin"`
	Xmax     float64 `csv:"xmax"`
	Ymax     float64 `csv:"ymax"`
}

type polygonRecord struct {
	Filename string `csv:"filename"`
	Split    string `csv:"split"`
	Source   string `csv:"source"`
	Polygon  string `csv:"polygon"`
}

type unlabeledRecord struct {
	Filename string `csv:"filename"`
	Location string `csv:"location"`
	Source   string `csv:"source"`
	Datetime string `csv:"datetime"`
	Y        string `csv:"y"`
}

var labeledColumns = []string{"filename", "split", "source"}

// ReadFile returns the contents of a table as UTF-8. encoding is any WHATWG
// label ("utf-8", "windows-1252", "latin1", ...); empty means UTF-8.
func ReadFile(path, encoding string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", path, err)
	}
	if encoding != "" && !strings.EqualFold(encoding, "utf-8") && !strings.EqualFold(encoding, "utf8") {
		enc, err := htmlindex.Get(encoding)
		if err != nil {
			return nil, fmt.Errorf("unknown table encoding %q: %w", encoding, err)
		}
		if raw, err = enc.NewDecoder().Bytes(raw); err != nil {
			return nil, fmt.Errorf("failed to decode %s as %s: %w", path, encoding, err)
		}
	}
	return bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf")), nil
}

func header(data []byte) ([]string, error) {
	cols, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read table header: %w", err)
	}
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return cols, nil
}

func requireColumns(have []string, want ...string) error {
	for _, c := range want {
		if !slices.Contains(have, c) {
			return fmt.Errorf("%w: %q (have %s)", ErrMissingColumn, c, strings.Join(have, ","))
		}
	}
	return nil
}

// label normalises a categorical value so differently composed spellings of
// one place land in one group.
func label(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// LoadLabeled reads a labeled table from path.
func LoadLabeled(path string, g Geometry, encoding string) (*Table, error) {
	data, err := ReadFile(path, encoding)
	if err != nil {
		return nil, err
	}
	t, err := ParseLabeled(data, g)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Info("AnnotationTable:loaded", zap.String("path", path), zap.Stringer("geometry", g), zap.Int("rows", t.Len()))
	return t, nil
}

// ParseLabeled decodes a UTF-8 labeled table. The geometry slices are built
// fresh from the records; nothing is written back into them.
func ParseLabeled(data []byte, g Geometry) (*Table, error) {
	cols, err := header(data)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(cols, append(slices.Clone(labeledColumns), g.Columns()...)...); err != nil {
		return nil, err
	}

	t := &Table{Geometry: g}
	switch g {
	case Points:
		var records []pointRecord
		if err := gocsv.UnmarshalBytes(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse point table: %w", err)
		}
		t.Rows = make([]Row, len(records))
		t.Points = make([][2]float64, len(records))
		for i, r := range records {
			t.Rows[i] = newRow(r.Filename, r.Split, r.Source)
			t.Points[i] = [2]float64{r.X, r.Y}
			if err := finite(i, t.Points[i][:]...); err != nil {
				return nil, err
			}
		}
	case Boxes:
		var records []boxRecord
		if err := gocsv.UnmarshalBytes(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse box table: %w", err)
		}
		t.Rows = make([]Row, len(records))
		t.Boxes = make([][4]float64, len(records))
		for i, r := range records {
			t.Rows[i] = newRow(r.Filename, r.Split, r.Source)
			t.Boxes[i] = [4]float64{r.Xmin, r.Ymin, r.Xmax, r.Ymax}
			if err := finite(i, t.Boxes[i][:]...); err != nil {
				return nil, err
			}
			if r.Xmin > r.Xmax || r.Ymin > r.Ymax {
				return nil, fmt.Errorf("%w: row %d box %v has min past max", ErrInvalidGeometry, i, t.Boxes[i])
			}
		}
	case Polygons:
		var records []polygonRecord
		if err := gocsv.UnmarshalBytes(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse polygon table: %w", err)
		}
		t.Rows = make([]Row, len(records))
		t.Polygons = make([]orb.Polygon, len(records))
		for i, r := range records {
			t.Rows[i] = newRow(r.Filename, r.Split, r.Source)
			p, err := ParsePolygon(r.Polygon)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			t.Polygons[i] = p
		}
	default:
		return nil, fmt.Errorf("%w: unknown geometry %s", ErrInvalidGeometry, g)
	}

	if len(t.Rows) == 0 {
		return nil, ErrEmptyTable
	}
	for i, r := range t.Rows {
		if r.Filename == "" {
			return nil, fmt.Errorf("%w: row %d has no filename", ErrInvalidValue, i)
		}
	}
	return t, nil
}

func newRow(filename, split, source string) Row {
	return Row{
		Filename: strings.TrimSpace(filename),
		Split:    split,
		Source:   label(source),
	}
}

func finite(row int, vs ...float64) error {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: row %d has non-finite coordinate %v", ErrInvalidGeometry, row, vs)
		}
	}
	return nil
}

// ParsePolygon reads a WKT POLYGON. A MULTIPOLYGON with a single member is
// accepted as that member.
func ParsePolygon(s string) (orb.Polygon, error) {
	geom, err := wkt.Unmarshal(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	switch p := geom.(type) {
	case orb.Polygon:
		if len(p) == 0 {
			return nil, fmt.Errorf("%w: empty polygon", ErrInvalidGeometry)
		}
		return p, nil
	case orb.MultiPolygon:
		if len(p) == 1 && len(p[0]) > 0 {
			return p[0], nil
		}
		return nil, fmt.Errorf("%w: multipolygon with %d members", ErrInvalidGeometry, len(p))
	}
	return nil, fmt.Errorf("%w: %s is not a polygon", ErrInvalidGeometry, geom.GeoJSONType())
}

// LoadUnlabeled reads an unlabeled metadata table from path.
func LoadUnlabeled(path, encoding string) (*UnlabeledTable, error) {
	data, err := ReadFile(path, encoding)
	if err != nil {
		return nil, err
	}
	t, err := ParseUnlabeled(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Info("AnnotationTable:loaded", zap.String("path", path), zap.Int("records", t.Len()), zap.Bool("y", t.HasY))
	return t, nil
}

var datetimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}

// ParseUnlabeled decodes a UTF-8 unlabeled table. Missing y values are 0,
// missing datetimes -1.
func ParseUnlabeled(data []byte) (*UnlabeledTable, error) {
	cols, err := header(data)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(cols, "filename", "location"); err != nil {
		return nil, err
	}
	var records []unlabeledRecord
	if err := gocsv.UnmarshalBytes(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse metadata table: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	t := &UnlabeledTable{Rows: make([]UnlabeledRow, len(records)), HasY: slices.Contains(cols, "y")}
	for i, r := range records {
		row := UnlabeledRow{
			Filename: strings.TrimSpace(r.Filename),
			Location: label(r.Location),
			Source:   label(r.Source),
			Datetime: -1,
		}
		if row.Filename == "" {
			return nil, fmt.Errorf("%w: row %d has no filename", ErrInvalidValue, i)
		}
		if s := strings.TrimSpace(r.Datetime); s != "" {
			ts, err := parseDatetime(s)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d datetime %q", ErrInvalidValue, i, s)
			}
			row.Datetime = ts
		}
		if s := strings.TrimSpace(r.Y); s != "" {
			y, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d y %q", ErrInvalidValue, i, s)
			}
			row.Y = y
		}
		t.Rows[i] = row
	}
	return t, nil
}

func parseDatetime(s string) (int64, error) {
	var err error
	for _, layout := range datetimeLayouts {
		var ts time.Time
		if ts, err = time.Parse(layout, s); err == nil {
			return ts.Unix(), nil
		}
	}
	return 0, err
}
