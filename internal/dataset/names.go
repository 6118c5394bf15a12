package dataset

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/forest-guardian/treeindex/internal/annotation"
)

var ErrInvalidDataset = errors.New("invalid dataset")

const (
	TreePoints   = "TreePoints"
	TreeBoxes    = "TreeBoxes"
	TreePolygons = "TreePolygons"

	unlabeledSuffix = "_unlabeled"
)

// Info describes one published dataset variant.
type Info struct {
	Name     string
	Geometry annotation.Geometry
	Labeled  bool
	Versions []string
}

func (i Info) LatestVersion() string { return i.Versions[len(i.Versions)-1] }

// SplitSchemes lists the table names the variant can be opened with.
func (i Info) SplitSchemes() []string {
	if i.Labeled {
		return []string{"official", "random"}
	}
	return []string{"official"}
}

// TableName is the CSV a split scheme is stored in.
func (i Info) TableName(scheme string) string {
	if i.Labeled {
		return scheme + ".csv"
	}
	return "metadata.csv"
}

var registry = func() map[string]Info {
	m := map[string]Info{}
	for _, v := range []struct {
		name string
		g    annotation.Geometry
	}{{TreePoints, annotation.Points}, {TreeBoxes, annotation.Boxes}, {TreePolygons, annotation.Polygons}} {
		m[v.name] = Info{Name: v.name, Geometry: v.g, Labeled: true, Versions: []string{"1.0"}}
		m[v.name+unlabeledSuffix] = Info{Name: v.name + unlabeledSuffix, Geometry: v.g, Versions: []string{"1.0"}}
	}
	return m
}()

// Lookup returns the variant registered under name.
func Lookup(name string) (Info, error) {
	info, ok := registry[name]
	if !ok {
		return Info{}, fmt.Errorf("%w: unknown dataset %q (have %s)", ErrInvalidDataset, name, strings.Join(Names(), ", "))
	}
	return info, nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (i Info) resolve(version, scheme string) (string, string, error) {
	if version == "" {
		version = i.LatestVersion()
	}
	if !slices.Contains(i.Versions, version) {
		return "", "", fmt.Errorf("%w: %s has no version %q (have %v)", ErrInvalidDataset, i.Name, version, i.Versions)
	}
	if scheme == "" {
		scheme = "official"
	}
	if !slices.Contains(i.SplitSchemes(), scheme) {
		return "", "", fmt.Errorf("%w: split scheme %q not recognized for %s", ErrInvalidDataset, scheme, i.Name)
	}
	return version, scheme, nil
}
