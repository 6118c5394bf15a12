package dataset

import (
	"github.com/forest-guardian/treeindex/internal/annotation"
	"github.com/forest-guardian/treeindex/internal/mask"
)

// Target is the per-image label payload of a labeled item.
type Target interface {
	Geometry() annotation.Geometry
	// Len is the number of annotations.
	Len() int
}

type Points struct {
	XY [][2]float64
}

func (p *Points) Geometry() annotation.Geometry { return annotation.Points }
func (p *Points) Len() int                      { return len(p.XY) }

// Boxes are xyxy boxes of a single-class dataset; Labels are all zero.
type Boxes struct {
	Boxes  [][4]float64
	Labels []int
}

func (b *Boxes) Geometry() annotation.Geometry { return annotation.Boxes }
func (b *Boxes) Len() int                      { return len(b.Boxes) }

// Polygons carry one mask per polygon, sized to the image, with the tight
// box of each mask.
type Polygons struct {
	Masks  []*mask.Mask
	Boxes  [][4]float64
	Labels []int
}

func (p *Polygons) Geometry() annotation.Geometry { return annotation.Polygons }
func (p *Polygons) Len() int                      { return len(p.Masks) }
