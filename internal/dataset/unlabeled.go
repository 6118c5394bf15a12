package dataset

import (
	"fmt"
	"path/filepath"

	"github.com/forest-guardian/treeindex/internal/annotation"
	"github.com/forest-guardian/treeindex/internal/index"
	"github.com/forest-guardian/treeindex/internal/log"
	"go.uber.org/zap"
)

// UnlabeledDataset has one item per metadata record and no targets.
type UnlabeledDataset struct {
	info    Info
	dataDir string
	version string
	idx     *index.Unlabeled
	grouper *index.Grouper
	loader  ImageLoader
}

// OpenUnlabeled reads {dataDir}/metadata.csv.
func OpenUnlabeled(info Info, dataDir string, opts Options) (*UnlabeledDataset, error) {
	if info.Labeled {
		return nil, fmt.Errorf("%w: %s is labeled", ErrInvalidDataset, info.Name)
	}
	_, scheme, err := info.resolve(opts.Version, opts.SplitScheme)
	if err != nil {
		return nil, err
	}
	if err := checkDir(dataDir); err != nil {
		return nil, err
	}
	table, err := annotation.LoadUnlabeled(filepath.Join(dataDir, info.TableName(scheme)), opts.Encoding)
	if err != nil {
		return nil, err
	}
	return NewUnlabeled(info, dataDir, table, opts)
}

func NewUnlabeled(info Info, dataDir string, table *annotation.UnlabeledTable, opts Options) (*UnlabeledDataset, error) {
	version, _, err := info.resolve(opts.Version, opts.SplitScheme)
	if err != nil {
		return nil, err
	}
	idx, err := index.BuildUnlabeled(table)
	if err != nil {
		return nil, err
	}
	grouper, err := index.NewGrouper(idx.Metadata, []string{"location"}, map[string][]string{"location": idx.Locations})
	if err != nil {
		return nil, err
	}
	d := &UnlabeledDataset{
		info:    info,
		dataDir: dataDir,
		version: version,
		idx:     idx,
		grouper: grouper,
		loader:  opts.loader(),
	}
	err = check(checkInput{
		dataDir:  dataDir,
		splits:   idx.Splits,
		inputs:   len(idx.Filenames),
		splitIDs: len(idx.SplitIDs),
		metadata: idx.Metadata,
		fields:   index.UnlabeledFields,
		ySize:    idx.YSize,
		yRows:    len(idx.Y),
		annots:   len(idx.Filenames),
	})
	if err != nil {
		return nil, err
	}
	log.Info(info.Name+":dataset ready", zap.Int("records", d.Len()), zap.Int("locations", idx.NGroups))
	return d, nil
}

func (d *UnlabeledDataset) Info() Info { return d.info }

func (d *UnlabeledDataset) Len() int { return len(d.idx.Filenames) }

func (d *UnlabeledDataset) NGroups() int { return d.idx.NGroups }

func (d *UnlabeledDataset) YSize() int { return d.idx.YSize }

func (d *UnlabeledDataset) Y() []int { return d.idx.Y }

func (d *UnlabeledDataset) Metadata() *index.MetadataArray { return d.idx.Metadata }

func (d *UnlabeledDataset) Grouper() *index.Grouper { return d.grouper }

// Get returns the metadata and pixels of record i.
func (d *UnlabeledDataset) Get(i int) (*Item, error) {
	if i < 0 || i >= d.Len() {
		return nil, fmt.Errorf("%w: item %d of %d", index.ErrUnknownImage, i, d.Len())
	}
	name := d.idx.Filenames[i]
	px, err := d.loader.Load(imagePath(d.dataDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return &Item{Index: i, Filename: name, Metadata: d.idx.Metadata.Row(i), Input: px}, nil
}

func (d *UnlabeledDataset) Summary() (*Summary, error) {
	s := &Summary{
		Name:        d.info.Name,
		Version:     d.version,
		SplitScheme: "official",
		Items:       d.Len(),
		Splits:      map[string]int{"extra_unlabeled": d.Len()},
		Groups:      map[string]int{},
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
