package index

import (
	"fmt"

	"github.com/forest-guardian/treeindex/internal/annotation"
	"github.com/forest-guardian/treeindex/internal/log"
	"go.uber.org/zap"
)

var (
	LabeledFields   = []string{"source_id"}
	UnlabeledFields = []string{"source_id", "location", "datetime", "y"}
)

// Image is the per-image record of a labeled dataset.
type Image struct {
	Filename string
	SplitID  int
	GroupID  int
}

// Labeled holds everything derived from a labeled table.
type Labeled struct {
	Index    *AnnotationIndex
	Images   []Image
	Splits   *SplitSet
	Sources  []string
	NGroups  int
	Metadata *MetadataArray
}

// BuildLabeled assigns splits and groups and builds the index and metadata
// for t. Split and group are read from an image's first row; any later row of
// the same image that disagrees fails with ErrInconsistentImage.
func BuildLabeled(t *annotation.Table) (*Labeled, error) {
	splits := LabeledSplits()
	rowGroups, sources, err := EncodeGroups(t.Sources())
	if err != nil {
		return nil, err
	}
	x := Build(t.Filenames())

	images := make([]Image, x.Len())
	meta := make([][]int64, x.Len())
	for i, f := range x.images {
		rows := x.rows[f]
		first := t.Rows[rows[0]]
		split, err := splits.ID(first.Split)
		if err != nil {
			return nil, fmt.Errorf("image %s: %w", f, err)
		}
		for _, r := range rows[1:] {
			if t.Rows[r].Split != first.Split {
				return nil, fmt.Errorf("%w: %s has splits %q and %q", ErrInconsistentImage, f, first.Split, t.Rows[r].Split)
			}
			if rowGroups[r] != rowGroups[rows[0]] {
				return nil, fmt.Errorf("%w: %s has sources %q and %q", ErrInconsistentImage, f, first.Source, t.Rows[r].Source)
			}
		}
		images[i] = Image{Filename: f, SplitID: split, GroupID: rowGroups[rows[0]]}
		meta[i] = []int64{int64(images[i].GroupID)}
	}

	m, err := NewMetadataArray(LabeledFields, meta)
	if err != nil {
		return nil, err
	}
	log.Debug("AnnotationIndex:built", zap.Int("rows", t.Len()), zap.Int("images", x.Len()), zap.Int("groups", len(sources)))
	return &Labeled{
		Index:    x,
		Images:   images,
		Splits:   splits,
		Sources:  sources,
		NGroups:  len(sources),
		Metadata: m,
	}, nil
}

// SplitIDs returns the split id of every image.
func (l *Labeled) SplitIDs() []int {
	out := make([]int, len(l.Images))
	for i, img := range l.Images {
		out[i] = img.SplitID
	}
	return out
}

// Unlabeled holds everything derived from an unlabeled table. Every record is
// one item in the single extra_unlabeled split.
type Unlabeled struct {
	Filenames []string
	Splits    *SplitSet
	SplitIDs  []int
	Locations []string
	Sources   []string
	NGroups   int
	Y         []int
	YSize     int
	Metadata  *MetadataArray
}

// UnlabeledLabels returns the y column of t, or zeros when the table has
// none, and the label size of one.
func UnlabeledLabels(t *annotation.UnlabeledTable) ([]int, int) {
	y := make([]int, t.Len())
	if t.HasY {
		for i, r := range t.Rows {
			y[i] = r.Y
		}
	}
	return y, 1
}

func BuildUnlabeled(t *annotation.UnlabeledTable) (*Unlabeled, error) {
	locGroups, locations, err := EncodeGroups(t.Locations())
	if err != nil {
		return nil, err
	}
	srcIDs, sources, err := EncodeGroups(t.Sources())
	if err != nil {
		return nil, err
	}
	y, ySize := UnlabeledLabels(t)

	u := &Unlabeled{
		Filenames: make([]string, t.Len()),
		Splits:    UnlabeledSplits(),
		SplitIDs:  make([]int, t.Len()),
		Locations: locations,
		Sources:   sources,
		NGroups:   len(locations),
		Y:         y,
		YSize:     ySize,
	}
	meta := make([][]int64, t.Len())
	for i, r := range t.Rows {
		u.Filenames[i] = r.Filename
		u.SplitIDs[i] = ExtraUnlabeled
		meta[i] = []int64{int64(srcIDs[i]), int64(locGroups[i]), r.Datetime, int64(y[i])}
	}
	if u.Metadata, err = NewMetadataArray(UnlabeledFields, meta); err != nil {
		return nil, err
	}
	log.Debug("AnnotationIndex:built unlabeled", zap.Int("records", t.Len()), zap.Int("locations", len(locations)))
	return u, nil
}
