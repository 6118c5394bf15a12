package prepare

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/forest-guardian/treeindex/internal/geoindex"
	"github.com/paulmach/orb/geojson"
)

var ErrNoFeatures = errors.New("no features to crop")

// Feature is one named extent to crop.
type Feature struct {
	Name   string
	Extent geoindex.Extent
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// LoadExtents reads a GeoJSON FeatureCollection and takes each feature's
// bounding box as its extent. Features are named by the nameField property,
// falling back to their position.
func LoadExtents(path, nameField string) ([]Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read extents: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFeatures, path)
	}

	out := make([]Feature, 0, len(fc.Features))
	seen := make(map[string]int)
	for i, f := range fc.Features {
		if f.Geometry == nil {
			return nil, fmt.Errorf("feature %d of %s has no geometry", i, path)
		}
		name := fmt.Sprintf("feature_%d", i)
		if v, ok := f.Properties[nameField]; ok && v != nil {
			name = unsafeName.ReplaceAllString(fmt.Sprint(v), "_")
		}
		if n := seen[name]; n > 0 {
			base := name
			for ; seen[name] > 0; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
			}
			seen[base] = n
		}
		seen[name]++
		out = append(out, Feature{Name: name, Extent: geoindex.Extent{Bound: f.Geometry.Bound()}})
	}
	return out, nil
}
