package annotation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseLabeledPoints(t *testing.T) {
	data := []byte("filename,x,y,source,split\n" +
		"a.png,1.5,2,NEON,train\n" +
		"a.png,3,4,NEON,train\n" +
		"b.png,5,6,Weinstein,test\n")

	tbl, err := ParseLabeled(data, Points)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, [][2]float64{{1.5, 2}, {3, 4}, {5, 6}}, tbl.Points)
	assert.Equal(t, []string{"a.png", "a.png", "b.png"}, tbl.Filenames())
	assert.Equal(t, Row{Filename: "b.png", Split: "test", Source: "Weinstein"}, tbl.Rows[2])
	assert.Nil(t, tbl.Boxes)
	assert.Nil(t, tbl.Polygons)
}

func TestSplitLabelKeptVerbatim(t *testing.T) {
	tbl, err := ParseLabeled([]byte("filename,x,y,source,split\na.png,1,2,NEON, train\n"), Points)
	require.NoError(t, err)
	assert.Equal(t, " train", tbl.Rows[0].Split)
}

func TestParseLabeledBoxes(t *testing.T) {
	data := []byte("filename,xmin,ymin,xmax,ymax,source,split\n" +
		"a.png,0,0,10,12,NEON,val\n")

	tbl, err := ParseLabeled(data, Boxes)
	require.NoError(t, err)
	assert.Equal(t, [][4]float64{{0, 0, 10, 12}}, tbl.Boxes)

	_, err = ParseLabeled([]byte("filename,xmin,ymin,xmax,ymax,source,split\na.png,10,0,0,12,NEON,val\n"), Boxes)
	require.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestParseLabeledPolygons(t *testing.T) {
	data := []byte("filename,polygon,source,split\n" +
		"a.png,\"POLYGON ((10 10, 50 10, 30 40, 10 10))\",NEON,train\n" +
		"a.png,\"MULTIPOLYGON (((0 0, 5 0, 5 5, 0 0)))\",NEON,train\n")

	tbl, err := ParseLabeled(data, Polygons)
	require.NoError(t, err)
	require.Len(t, tbl.Polygons, 2)
	assert.Equal(t, orb.Point{30, 40}, tbl.Polygons[0][0][2])
	assert.Len(t, tbl.Polygons[1][0], 4)
}

func TestParseLabeledErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		geom Geometry
		want error
	}{
		{"missing split", "filename,x,y,source\na.png,1,2,NEON\n", Points, ErrMissingColumn},
		{"missing geometry", "filename,split,source,x\na.png,train,NEON,1\n", Points, ErrMissingColumn},
		{"not a polygon", "filename,polygon,source,split\na.png,POINT (1 2),NEON,train\n", Polygons, ErrInvalidGeometry},
		{"bad wkt", "filename,polygon,source,split\na.png,NOT WKT,NEON,train\n", Polygons, ErrInvalidGeometry},
		{"no rows", "filename,x,y,source,split\n", Points, ErrEmptyTable},
		{"no filename", "filename,x,y,source,split\n,1,2,NEON,train\n", Points, ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLabeled([]byte(tt.data), tt.geom)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSourcesAreNormalised(t *testing.T) {
	// "é" composed and decomposed
	data := []byte("filename,x,y,source,split\n" +
		"a.png,1,2, Montr\u00e9al ,train\n" +
		"b.png,1,2,Montre\u0301al,train\n")

	tbl, err := ParseLabeled(data, Points)
	require.NoError(t, err)
	assert.Equal(t, tbl.Rows[0].Source, tbl.Rows[1].Source)
}

func TestLoadLabeledLegacyEncoding(t *testing.T) {
	body := "filename,x,y,source,split\na.png,1,2,Montréal,train\n"
	encoded, err := charmap.Windows1252.NewEncoder().String(body)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "official.csv")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o644))

	tbl, err := LoadLabeled(path, Points, "windows-1252")
	require.NoError(t, err)
	assert.Equal(t, "Montréal", tbl.Rows[0].Source)

	_, err = LoadLabeled(path, Points, "no-such-encoding")
	require.Error(t, err)
}

func TestLoadLabeledBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "random.csv")
	require.NoError(t, os.WriteFile(path, []byte("\xef\xbb\xbffilename,x,y,source,split\na.png,1,2,NEON,train\n"), 0o644))

	tbl, err := LoadLabeled(path, Points, "")
	require.NoError(t, err)
	assert.Equal(t, "a.png", tbl.Rows[0].Filename)
}

func TestParseUnlabeled(t *testing.T) {
	data := []byte("filename,location,datetime\n" +
		"a.tif,Harvard,2019-06-01\n" +
		"b.tif,Bartlett,\n")

	tbl, err := ParseUnlabeled(data)
	require.NoError(t, err)
	assert.False(t, tbl.HasY)
	assert.Equal(t, int64(1559347200), tbl.Rows[0].Datetime)
	assert.Equal(t, int64(-1), tbl.Rows[1].Datetime)
	assert.Equal(t, 0, tbl.Rows[0].Y)
	assert.Equal(t, []string{"Harvard", "Bartlett"}, tbl.Locations())
	assert.Equal(t, []string{"", ""}, tbl.Sources())
}

func TestParseUnlabeledWithY(t *testing.T) {
	data := []byte("filename,location,y,source\n" +
		"a.tif,Harvard,3,NEON\n" +
		"b.tif,Bartlett,7,NEON\n")

	tbl, err := ParseUnlabeled(data)
	require.NoError(t, err)
	assert.True(t, tbl.HasY)
	assert.Equal(t, 3, tbl.Rows[0].Y)
	assert.Equal(t, 7, tbl.Rows[1].Y)
	assert.Equal(t, "NEON", tbl.Rows[1].Source)

	_, err = ParseUnlabeled([]byte("filename,location,y\na.tif,Harvard,many\n"))
	require.ErrorIs(t, err, ErrInvalidValue)
	_, err = ParseUnlabeled([]byte("filename,y\na.tif,1\n"))
	require.ErrorIs(t, err, ErrMissingColumn)
}
