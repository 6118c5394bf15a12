// Package geoindex maps geographic extents and tile file names onto the keys
// of a fixed-size tiling grid ("{easting}_{northing}", NEON AOP convention).
package geoindex

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/paulmach/orb"
)

const (
	DefaultResolution = 1000
	DefaultSuffix     = "_image"
)

// Key identifies one grid cell, e.g. "257000_4106000".
type Key string

// Extent is a (left, bottom, right, top) box in tile coordinate units.
type Extent struct {
	orb.Bound
}

func NewExtent(left, bottom, right, top float64) Extent {
	return Extent{orb.Bound{Min: orb.Point{left, bottom}, Max: orb.Point{right, top}}}
}

// ExtentFromBounds takes the (left, bottom, right, top) 4-tuple form.
func ExtentFromBounds(b [4]float64) Extent {
	return NewExtent(b[0], b[1], b[2], b[3])
}

func (e Extent) Left() float64   { return e.Min.X() }
func (e Extent) Bottom() float64 { return e.Min.Y() }
func (e Extent) Right() float64  { return e.Max.X() }
func (e Extent) Top() float64    { return e.Max.Y() }

func (e Extent) Bounds() [4]float64 {
	return [4]float64{e.Left(), e.Bottom(), e.Right(), e.Top()}
}

func (e Extent) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", e.Left(), e.Bottom(), e.Right(), e.Top())
}

type Resolver struct {
	Resolution float64
	Suffix     string
	namePat    *regexp.Regexp
}

func NewResolver(resolution float64, suffix string) *Resolver {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return &Resolver{
		Resolution: resolution,
		Suffix:     suffix,
		namePat:    regexp.MustCompile(`(\d+_\d+)` + regexp.QuoteMeta(suffix)),
	}
}

// Resolve floors the extent midpoint to the grid. Every extent whose midpoint
// lies in the same cell yields the same key.
func (r *Resolver) Resolve(e Extent) Key {
	c := e.Center()
	easting := math.Floor(c.X()/r.Resolution) * r.Resolution
	northing := math.Floor(c.Y()/r.Resolution) * r.Resolution
	return Key(fmt.Sprintf("%d_%d", int64(easting), int64(northing)))
}

// ResolveFromName extracts the "<digits>_<digits>" token that directly
// precedes the suffix in the base name of path.
func (r *Resolver) ResolveFromName(path string) (Key, error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	m := r.namePat.FindStringSubmatch(base)
	if m == nil {
		return "", fmt.Errorf("%w: %q has no <digits>_<digits>%s token", ErrPatternMismatch, path, r.Suffix)
	}
	return Key(m[1]), nil
}
