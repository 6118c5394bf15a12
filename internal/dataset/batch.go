package dataset

import (
	"context"
	"fmt"

	"github.com/forest-guardian/treeindex/internal/raster"
	"golang.org/x/sync/errgroup"
)

// Subset is a view of a dataset restricted to some positions.
type Subset struct {
	Split   string
	Name    string
	source  Source
	indices []int
}

func (s *Subset) Len() int { return len(s.indices) }

func (s *Subset) Indices() []int { return append([]int(nil), s.indices...) }

func (s *Subset) Get(i int) (*Item, error) {
	if i < 0 || i >= len(s.indices) {
		return nil, fmt.Errorf("%w: item %d of %d in %s", ErrInvalidDataset, i, len(s.indices), s.Split)
	}
	return s.source.Get(s.indices[i])
}

// LoadBatch fetches the items at positions with up to workers concurrent
// Get calls. Items come back in the order of positions; the first error
// cancels the rest.
func LoadBatch(ctx context.Context, src Source, positions []int, workers int) ([]*Item, error) {
	if workers < 1 {
		workers = 1
	}
	items := make([]*Item, len(positions))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for k, pos := range positions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := src.Get(pos)
			if err != nil {
				return err
			}
			items[k] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// BoxBatch keeps images as a list since their sizes differ, and stacks the
// metadata rows.
type BoxBatch struct {
	Inputs   []*raster.Pixels
	Targets  []*Boxes
	Metadata [][]int64
}

func CollateBoxes(items []*Item) (*BoxBatch, error) {
	b := &BoxBatch{
		Inputs:   make([]*raster.Pixels, len(items)),
		Targets:  make([]*Boxes, len(items)),
		Metadata: make([][]int64, len(items)),
	}
	for i, it := range items {
		boxes, ok := it.Target.(*Boxes)
		if !ok {
			return nil, fmt.Errorf("%w: item %s has no box target", ErrInvalidDataset, it.Filename)
		}
		if i > 0 && len(it.Metadata) != len(b.Metadata[0]) {
			return nil, fmt.Errorf("%w: metadata widths %d and %d", ErrInvalidDataset, len(b.Metadata[0]), len(it.Metadata))
		}
		b.Inputs[i] = it.Input
		b.Targets[i] = boxes
		b.Metadata[i] = it.Metadata
	}
	return b, nil
}
