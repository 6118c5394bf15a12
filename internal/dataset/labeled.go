package dataset

import (
	"fmt"
	"path/filepath"

	"github.com/forest-guardian/treeindex/internal/annotation"
	"github.com/forest-guardian/treeindex/internal/index"
	"github.com/forest-guardian/treeindex/internal/log"
	"github.com/forest-guardian/treeindex/internal/mask"
	"github.com/forest-guardian/treeindex/internal/raster"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

type LabeledDataset struct {
	info        Info
	dataDir     string
	version     string
	splitScheme string
	table       *annotation.Table
	idx         *index.Labeled
	grouper     *index.Grouper
	loader      ImageLoader
	logTag      string
}

// OpenLabeled reads {dataDir}/{split_scheme}.csv and indexes it.
func OpenLabeled(info Info, dataDir string, opts Options) (*LabeledDataset, error) {
	if !info.Labeled {
		return nil, fmt.Errorf("%w: %s is unlabeled", ErrInvalidDataset, info.Name)
	}
	_, scheme, err := info.resolve(opts.Version, opts.SplitScheme)
	if err != nil {
		return nil, err
	}
	if err := checkDir(dataDir); err != nil {
		return nil, err
	}
	table, err := annotation.LoadLabeled(filepath.Join(dataDir, info.TableName(scheme)), info.Geometry, opts.Encoding)
	if err != nil {
		return nil, err
	}
	return NewLabeled(info, dataDir, table, opts)
}

// NewLabeled builds a dataset over an already loaded table.
func NewLabeled(info Info, dataDir string, table *annotation.Table, opts Options) (*LabeledDataset, error) {
	version, scheme, err := info.resolve(opts.Version, opts.SplitScheme)
	if err != nil {
		return nil, err
	}
	if table.Geometry != info.Geometry {
		return nil, fmt.Errorf("%w: %s expects %s, table holds %s", ErrInvalidDataset, info.Name, info.Geometry, table.Geometry)
	}
	idx, err := index.BuildLabeled(table)
	if err != nil {
		return nil, err
	}
	grouper, err := index.NewGrouper(idx.Metadata, index.LabeledFields, map[string][]string{"source_id": idx.Sources})
	if err != nil {
		return nil, err
	}
	d := &LabeledDataset{
		info:        info,
		dataDir:     dataDir,
		version:     version,
		splitScheme: scheme,
		table:       table,
		idx:         idx,
		grouper:     grouper,
		loader:      opts.loader(),
		logTag:      info.Name + ":",
	}
	if err := check(d.checks()); err != nil {
		return nil, err
	}
	log.Info(d.logTag+"dataset ready", zap.Int("images", d.Len()), zap.Int("annotations", table.Len()), zap.Int("groups", idx.NGroups))
	return d, nil
}

func (d *LabeledDataset) checks() checkInput {
	return checkInput{
		dataDir:  d.dataDir,
		splits:   d.idx.Splits,
		inputs:   d.idx.Index.Len(),
		splitIDs: len(d.idx.Images),
		metadata: d.idx.Metadata,
		fields:   index.LabeledFields,
		ySize:    ySize(d.info.Geometry),
		yRows:    d.table.Len(),
		annots:   d.idx.Index.Rows(),
	}
}

// ySize is the width of one label of a geometry.
func ySize(g annotation.Geometry) int {
	if g == annotation.Points {
		return 2
	}
	return 4
}

func (d *LabeledDataset) Info() Info { return d.info }

func (d *LabeledDataset) DataDir() string { return d.dataDir }

func (d *LabeledDataset) Version() string { return d.version }

func (d *LabeledDataset) SplitScheme() string { return d.splitScheme }

// Len is the number of distinct images.
func (d *LabeledDataset) Len() int { return d.idx.Index.Len() }

func (d *LabeledDataset) NGroups() int { return d.idx.NGroups }

func (d *LabeledDataset) Splits() *index.SplitSet { return d.idx.Splits }

func (d *LabeledDataset) Images() []index.Image { return d.idx.Images }

func (d *LabeledDataset) Metadata() *index.MetadataArray { return d.idx.Metadata }

func (d *LabeledDataset) Grouper() *index.Grouper { return d.grouper }

// Get loads image i and packages its annotations.
func (d *LabeledDataset) Get(i int) (*Item, error) {
	if i < 0 || i >= d.Len() {
		return nil, fmt.Errorf("%w: item %d of %d", index.ErrUnknownImage, i, d.Len())
	}
	img := d.idx.Images[i]
	px, err := d.loader.Load(imagePath(d.dataDir, img.Filename))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", img.Filename, err)
	}
	target, err := d.Target(i, px)
	if err != nil {
		return nil, err
	}
	return &Item{
		Index:    i,
		Filename: img.Filename,
		Metadata: d.idx.Metadata.Row(i),
		Input:    px,
		Target:   target,
	}, nil
}

// Target slices the annotations of image i. px is only consulted by
// polygon datasets, whose masks take the image size.
func (d *LabeledDataset) Target(i int, px *raster.Pixels) (Target, error) {
	img := d.idx.Images[i]
	rows, err := d.idx.Index.Lookup(img.Filename)
	if err != nil {
		return nil, err
	}
	switch d.info.Geometry {
	case annotation.Points:
		xy := make([][2]float64, len(rows))
		for k, r := range rows {
			xy[k] = d.table.Points[r]
		}
		return &Points{XY: xy}, nil
	case annotation.Boxes:
		boxes := make([][4]float64, len(rows))
		for k, r := range rows {
			boxes[k] = d.table.Boxes[r]
		}
		return &Boxes{Boxes: boxes, Labels: make([]int, len(rows))}, nil
	case annotation.Polygons:
		polys := make([]orb.Polygon, len(rows))
		for k, r := range rows {
			polys[k] = d.table.Polygons[r]
		}
		masks, boxes, err := mask.Decode(polys, px.Width, px.Height)
		if err != nil {
			log.Error(d.logTag+"polygon decode failed", zap.String("image", img.Filename), zap.Error(err))
			return nil, fmt.Errorf("image %s: %w", img.Filename, err)
		}
		return &Polygons{Masks: masks, Boxes: boxes, Labels: make([]int, len(rows))}, nil
	}
	return nil, fmt.Errorf("%w: geometry %s", ErrInvalidDataset, d.info.Geometry)
}

// Subset selects the images of one split, in dataset order.
func (d *LabeledDataset) Subset(split string) (*Subset, error) {
	id, err := d.idx.Splits.ID(split)
	if err != nil {
		return nil, err
	}
	var indices []int
	for i, img := range d.idx.Images {
		if img.SplitID == id {
			indices = append(indices, i)
		}
	}
	return &Subset{Split: split, Name: d.idx.Splits.Name(split), source: d, indices: indices}, nil
}

func (d *LabeledDataset) Summary() (*Summary, error) {
	s := &Summary{
		Name:        d.info.Name,
		Version:     d.version,
		SplitScheme: d.splitScheme,
		Items:       d.Len(),
		Annotations: d.table.Len(),
		Splits:      map[string]int{},
		Groups:      map[string]int{},
	}
	for _, img := range d.idx.Images {
		label, _ := d.idx.Splits.Label(img.SplitID)
		s.Splits[label]++
	}
	counts, err := d.grouper.Counts(d.idx.Metadata)
	if err != nil {
		return nil, err
	}
	for g, n := range counts {
		s.Groups[d.grouper.GroupString(g)] = n
	}
	return s, nil
}
