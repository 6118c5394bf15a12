// Package dataset composes annotation tables, the image index and the image
// loader into indexable datasets. A dataset is immutable once opened and Get
// is safe for concurrent use.
package dataset

import (
	"path/filepath"

	"github.com/forest-guardian/treeindex/internal/raster"
)

// Item is one retrieved image. Target is nil for unlabeled datasets.
type Item struct {
	Index    int
	Filename string
	Metadata []int64
	Input    *raster.Pixels
	Target   Target
}

// Source is anything items can be drawn from by position.
type Source interface {
	Len() int
	Get(i int) (*Item, error)
}

// ImageLoader reads the pixels of one image. Implementations must be safe for
// concurrent use.
type ImageLoader interface {
	Load(path string) (*raster.Pixels, error)
}

type LoaderFunc func(path string) (*raster.Pixels, error)

func (f LoaderFunc) Load(path string) (*raster.Pixels, error) { return f(path) }

// RasterLoader opens images with GDAL.
var RasterLoader ImageLoader = LoaderFunc(raster.Load)

type Options struct {
	Version     string
	SplitScheme string
	// Encoding of the CSV tables, a WHATWG label. Empty means UTF-8.
	Encoding string
	Loader   ImageLoader
}

func (o Options) loader() ImageLoader {
	if o.Loader == nil {
		return RasterLoader
	}
	return o.Loader
}

func imagePath(dataDir, filename string) string {
	return filepath.Join(dataDir, "images", filename)
}

// Summary counts what a dataset holds.
type Summary struct {
	Name        string
	Version     string
	SplitScheme string
	Items       int
	Annotations int
	Splits      map[string]int
	Groups      map[string]int
}

// Dataset is the common surface of labeled and unlabeled datasets.
type Dataset interface {
	Source
	Info() Info
	Summary() (*Summary, error)
}

// Open loads the dataset registered under name from dataDir.
func Open(name, dataDir string, opts Options) (Dataset, error) {
	info, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if info.Labeled {
		return OpenLabeled(info, dataDir, opts)
	}
	return OpenUnlabeled(info, dataDir, opts)
}
