package raster

import (
	"fmt"
	"math"

	"github.com/forest-guardian/treeindex/internal/geoindex"
)

// Window is a pixel rectangle; offsets may be negative or past the raster
// edge until it is checked against a tile.
type Window struct {
	ColOff int
	RowOff int
	Width  int
	Height int
}

func (w Window) String() string {
	return fmt.Sprintf("window(col=%d, row=%d, %dx%d)", w.ColOff, w.RowOff, w.Width, w.Height)
}

const offsetEpsilon = 1e-6

// WindowFromExtent maps an extent through a north-up affine transform.
// Offsets are floored and lengths rounded to whole pixels.
func WindowFromExtent(e geoindex.Extent, gt [6]float64) Window {
	col := (e.Left() - gt[0]) / gt[1]
	row := (e.Top() - gt[3]) / gt[5]
	width := (e.Right() - e.Left()) / gt[1]
	height := (e.Bottom() - e.Top()) / gt[5]
	return Window{
		ColOff: int(math.Floor(col + offsetEpsilon)),
		RowOff: int(math.Floor(row + offsetEpsilon)),
		Width:  int(math.Round(width)),
		Height: int(math.Round(height)),
	}
}

// check rejects empty windows and windows the raster cannot fully satisfy.
// Nothing is clipped or padded.
func (w Window) check(sizeX, sizeY int) error {
	if w.Width <= 0 || w.Height <= 0 {
		return fmt.Errorf("%w: %s has no pixels", ErrEmptyCrop, w)
	}
	if w.ColOff >= sizeX || w.RowOff >= sizeY || w.ColOff+w.Width <= 0 || w.RowOff+w.Height <= 0 {
		return fmt.Errorf("%w: %s lies outside %dx%d raster", ErrEmptyCrop, w, sizeX, sizeY)
	}
	if w.ColOff < 0 || w.RowOff < 0 || w.ColOff+w.Width > sizeX || w.RowOff+w.Height > sizeY {
		return fmt.Errorf("%w: %s on %dx%d raster", ErrOutOfBounds, w, sizeX, sizeY)
	}
	return nil
}
