package raster

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/airbusgeo/godal"
	"github.com/forest-guardian/treeindex/internal/geoindex"
	"github.com/forest-guardian/treeindex/internal/log"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Format string

const (
	GTiff Format = "tif"
	Array Format = "npy"
)

// DefaultNoData is the sentinel assumed for bands that declare none.
const DefaultNoData = -9999

type Cropper struct {
	NoData float64
	logTag string
}

func NewCropper(nodata float64) *Cropper {
	return &Cropper{NoData: nodata, logTag: "Cropper:"}
}

// Crop reads the window covering e from an open tile. An empty window fails
// with ErrEmptyCrop, a window only partly inside the tile with ErrOutOfBounds,
// and a window holding nothing but nodata with ErrNoDataCrop.
func (c *Cropper) Crop(e geoindex.Extent, t *Tile) (*Pixels, error) {
	w := WindowFromExtent(e, t.GeoTransform())
	px, err := t.Read(w)
	if err != nil {
		log.Debug(c.logTag+"crop rejected", zap.String("extent", e.String()), zap.String("tile", t.Path), zap.Error(err))
		return nil, fmt.Errorf("bounds %s on %s: %w", e, t.Path, err)
	}
	if px.Size() == 0 {
		return nil, fmt.Errorf("%w: bounds %s on %s", ErrEmptyCrop, e, t.Path)
	}
	if c.allNoData(px, t) {
		return nil, fmt.Errorf("%w: bounds %s on %s", ErrNoDataCrop, e, t.Path)
	}
	return px, nil
}

// CropPath opens path for the duration of one crop.
func (c *Cropper) CropPath(e geoindex.Extent, path string) (*Pixels, error) {
	t, err := OpenTile(path)
	if err != nil {
		return nil, err
	}
	defer t.Close()
	return c.Crop(e, t)
}

func (c *Cropper) allNoData(px *Pixels, t *Tile) bool {
	for b := 0; b < px.Bands; b++ {
		nd, _ := t.NoData(b, c.NoData)
		for _, v := range px.Band(b) {
			if v != nd && !(math.IsNaN(v) && math.IsNaN(nd)) {
				return false
			}
		}
	}
	return true
}

// Save crops e and persists it as dir/basename.{tif,npy}, returning the path.
// A GeoTIFF is sized from the extent and tile resolution, which must agree
// with the buffer, and is anchored at the pixel edge the window snapped to;
// an array file stores the buffer as read.
func (c *Cropper) Save(e geoindex.Extent, t *Tile, dir, basename string, format Format) (string, error) {
	px, err := c.Crop(e, t)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create crop directory: %w", err)
	}
	var out string
	switch format {
	case Array:
		out = filepath.Join(dir, basename+".npy")
		err = writeAtomic(out, func(tmp string) error { return WriteArray(tmp, px) })
	case GTiff, "":
		out = filepath.Join(dir, basename+".tif")
		err = writeAtomic(out, func(tmp string) error { return c.writeGTiff(tmp, e, t, px) })
	default:
		return "", fmt.Errorf("unknown crop format %q", format)
	}
	if err != nil {
		log.Error(c.logTag+"failed to save crop", zap.String("out", out), zap.Error(err))
		return "", err
	}
	log.Debug(c.logTag+"saved crop", zap.String("out", out), zap.String("shape", px.String()))
	return out, nil
}

func (c *Cropper) writeGTiff(path string, e geoindex.Extent, t *Tile, px *Pixels) error {
	gt := t.GeoTransform()
	w := WindowFromExtent(e, gt)
	res := t.Resolution()
	height := int(math.Round((e.Top() - e.Bottom()) / res))
	width := int(math.Round((e.Right() - e.Left()) / res))
	if height != px.Height || width != px.Width {
		return fmt.Errorf("%w: extent gives %dx%d, buffer is %dx%d", ErrShapeMismatch, width, height, px.Width, px.Height)
	}
	register()
	ds, err := godal.Create(godal.GTiff, path, px.Bands, px.DataType, width, height)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := ds.SetGeoTransform([6]float64{gt[0] + float64(w.ColOff)*gt[1], gt[1], 0, gt[3] + float64(w.RowOff)*gt[5], 0, gt[5]}); err != nil {
		ds.Close()
		return fmt.Errorf("failed to set geotransform: %w", err)
	}
	if prj := t.Projection(); prj != "" {
		if err := ds.SetProjection(prj); err != nil {
			ds.Close()
			return fmt.Errorf("failed to set projection: %w", err)
		}
	}
	for i, band := range ds.Bands() {
		if nd, ok := t.NoData(i, c.NoData); ok {
			if err := band.SetNoData(nd); err != nil {
				ds.Close()
				return fmt.Errorf("failed to set nodata on band %d: %w", i+1, err)
			}
		}
		if err := band.Write(0, 0, px.Band(i), width, height); err != nil {
			ds.Close()
			return fmt.Errorf("failed to write band %d: %w", i+1, err)
		}
	}
	return ds.Close()
}

// writeAtomic writes through a uuid-named sibling and renames it into place.
func writeAtomic(path string, write func(tmp string) error) error {
	tmp := filepath.Join(filepath.Dir(path), "."+uuid.NewString()+filepath.Ext(path))
	if err := write(tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename %s: %w", tmp, err)
	}
	return nil
}
