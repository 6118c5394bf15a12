// Package mask rasterises annotation polygons into binary masks.
package mask

import (
	"errors"
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

var ErrDegeneratePolygon = errors.New("degenerate polygon")

// Mask is a binary image, row-major.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

func (m *Mask) At(x, y int) bool { return m.Bits[y*m.Width+x] }

// Count is the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Box returns [xmin, ymin, xmax, ymax] over the set pixels, inclusive, and
// false when no pixel is set.
func (m *Mask) Box() ([4]float64, bool) {
	xmin, ymin, xmax, ymax := m.Width, m.Height, -1, -1
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.Bits[y*m.Width+x] {
				continue
			}
			xmin, xmax = min(xmin, x), max(xmax, x)
			ymin, ymax = min(ymin, y), max(ymax, y)
		}
	}
	if xmax < 0 {
		return [4]float64{}, false
	}
	return [4]float64{float64(xmin), float64(ymin), float64(xmax), float64(ymax)}, true
}

// Rasterize draws the exterior ring of p, filled and outlined, on a width x
// height canvas. Vertices are truncated to whole pixels.
func Rasterize(p orb.Polygon, width, height int) (*Mask, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid mask size %dx%d", width, height)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: no rings", ErrDegeneratePolygon)
	}
	ring := p[0]
	if ring.Closed() {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return nil, fmt.Errorf("%w: %d vertices", ErrDegeneratePolygon, len(ring))
	}
	if planar.Area(orb.Polygon{p[0]}) == 0 {
		return nil, fmt.Errorf("%w: zero area", ErrDegeneratePolygon)
	}

	dc := gg.NewContext(width, height)
	for i, pt := range ring {
		x, y := float64(int(pt[0]))+0.5, float64(int(pt[1]))+0.5
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(1)
	dc.FillPreserve()
	dc.Stroke()

	m := fromAlpha(dc.AsMask())
	if m.Count() == 0 {
		return nil, fmt.Errorf("%w: polygon covers no pixel of %dx%d image", ErrDegeneratePolygon, width, height)
	}
	return m, nil
}

func fromAlpha(a *image.Alpha) *Mask {
	b := a.Bounds()
	m := &Mask{Width: b.Dx(), Height: b.Dy(), Bits: make([]bool, b.Dx()*b.Dy())}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			m.Bits[y*m.Width+x] = a.AlphaAt(b.Min.X+x, b.Min.Y+y).A >= 128
		}
	}
	return m
}

// Decode rasterises every polygon and derives its tight box. The first
// polygon that cannot be decoded aborts the whole image.
func Decode(polygons []orb.Polygon, width, height int) ([]*Mask, [][4]float64, error) {
	masks := make([]*Mask, len(polygons))
	boxes := make([][4]float64, len(polygons))
	for i, p := range polygons {
		m, err := Rasterize(p, width, height)
		if err != nil {
			return nil, nil, fmt.Errorf("polygon %d: %w", i, err)
		}
		masks[i] = m
		boxes[i], _ = m.Box()
	}
	return masks, boxes, nil
}
