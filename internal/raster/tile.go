package raster

import (
	"errors"
	"fmt"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/forest-guardian/treeindex/internal/log"
	"go.uber.org/zap"
)

var registerOnce sync.Once

func register() {
	registerOnce.Do(godal.RegisterAll)
}

// quietErrors drops GDAL warnings and turns anything worse into the returned error.
var quietErrors = godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
	if ec <= godal.CE_Warning {
		return nil
	}
	return fmt.Errorf("gdal error %d: %s", code, msg)
})

// Tile is an open georeferenced raster. Reads are serialised so one handle
// can be shared between goroutines.
type Tile struct {
	Path string

	mu         sync.Mutex
	ds         *godal.Dataset
	gt         [6]float64
	sizeX      int
	sizeY      int
	nBands     int
	dataType   godal.DataType
	nodata     []float64
	hasNoData  []bool
	projection string
}

func OpenTile(path string) (*Tile, error) {
	register()
	ds, err := godal.Open(path, godal.RasterOnly(), quietErrors)
	if err != nil {
		return nil, fmt.Errorf("failed to open tile %s: %w", path, err)
	}
	gt, err := ds.GeoTransform()
	if err != nil {
		ds.Close()
		return nil, fmt.Errorf("%w: %s has no geotransform: %v", ErrInvalidTile, path, err)
	}
	if gt[1] <= 0 || gt[5] >= 0 || gt[2] != 0 || gt[4] != 0 {
		ds.Close()
		return nil, fmt.Errorf("%w: %s is not north-up, geotransform %v", ErrInvalidTile, path, gt)
	}
	st := ds.Structure()
	bands := ds.Bands()
	t := &Tile{
		Path:       path,
		ds:         ds,
		gt:         gt,
		sizeX:      st.SizeX,
		sizeY:      st.SizeY,
		nBands:     st.NBands,
		dataType:   st.DataType,
		nodata:     make([]float64, len(bands)),
		hasNoData:  make([]bool, len(bands)),
		projection: ds.Projection(),
	}
	for i, b := range bands {
		t.nodata[i], t.hasNoData[i] = b.NoData()
	}
	log.Debug("Tile:opened", zap.String("path", path), zap.Int("width", t.sizeX), zap.Int("height", t.sizeY), zap.Int("bands", t.nBands))
	return t, nil
}

func (t *Tile) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ds == nil {
		return nil
	}
	err := t.ds.Close()
	t.ds = nil
	return err
}

func (t *Tile) GeoTransform() [6]float64 { return t.gt }

// Resolution is the pixel width in tile units.
func (t *Tile) Resolution() float64 { return t.gt[1] }

func (t *Tile) Size() (width, height int) { return t.sizeX, t.sizeY }

func (t *Tile) BandCount() int { return t.nBands }

func (t *Tile) Projection() string { return t.projection }

// NoData returns the declared sentinel of band b, or fallback when the band
// declares none.
func (t *Tile) NoData(b int, fallback float64) (float64, bool) {
	if t.hasNoData[b] {
		return t.nodata[b], true
	}
	return fallback, false
}

// Read fills a buffer for w from every band. The window must lie inside the raster.
func (t *Tile) Read(w Window) (*Pixels, error) {
	if err := w.check(t.sizeX, t.sizeY); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ds == nil {
		return nil, fmt.Errorf("%w: %s is closed", ErrInvalidTile, t.Path)
	}
	px := NewPixels(t.nBands, w.Height, w.Width, t.dataType)
	for i, band := range t.ds.Bands() {
		if err := band.Read(w.ColOff, w.RowOff, px.Band(i), w.Width, w.Height); err != nil {
			return nil, fmt.Errorf("failed to read band %d of %s at %s: %w", i+1, t.Path, w, err)
		}
	}
	return px, nil
}

// Load reads a whole raster (any GDAL-readable image) into memory.
func Load(path string) (*Pixels, error) {
	register()
	ds, err := godal.Open(path, godal.RasterOnly(), quietErrors)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer ds.Close()
	st := ds.Structure()
	if st.NBands == 0 {
		return nil, errors.New("image " + path + " has no bands")
	}
	px := NewPixels(st.NBands, st.SizeY, st.SizeX, st.DataType)
	for i, band := range ds.Bands() {
		if err := band.Read(0, 0, px.Band(i), st.SizeX, st.SizeY); err != nil {
			return nil, fmt.Errorf("failed to read band %d of %s: %w", i+1, path, err)
		}
	}
	return px, nil
}
