// Package index builds the image to annotation mapping of a dataset together
// with its split, group and metadata arrays.
package index

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
)

// progressThreshold is the row count from which Build draws a progress bar.
const progressThreshold = 50000

// AnnotationIndex maps each image id to the positions of its annotation rows.
// It is read-only once built.
type AnnotationIndex struct {
	images []string
	rows   map[string][]int
	pos    map[string]int
}

// Build groups row positions by image id in a single pass. Images keep the
// order of their first row and each image keeps its rows in table order.
func Build(filenames []string) *AnnotationIndex {
	var bar *progressbar.ProgressBar
	if len(filenames) >= progressThreshold {
		bar = progressbar.Default(int64(len(filenames)), "indexing annotations")
	} else {
		bar = progressbar.DefaultSilent(int64(len(filenames)))
	}
	defer bar.Finish()

	x := &AnnotationIndex{
		rows: make(map[string][]int),
		pos:  make(map[string]int),
	}
	for i, f := range filenames {
		if _, ok := x.rows[f]; !ok {
			x.pos[f] = len(x.images)
			x.images = append(x.images, f)
		}
		x.rows[f] = append(x.rows[f], i)
		bar.Add(1)
	}
	return x
}

// Lookup returns the row positions of id in table order. The slice is shared;
// callers must not modify it.
func (x *AnnotationIndex) Lookup(id string) ([]int, error) {
	rows, ok := x.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownImage, id)
	}
	return rows, nil
}

// Len is the number of distinct images.
func (x *AnnotationIndex) Len() int { return len(x.images) }

// Image returns the i-th distinct image id.
func (x *AnnotationIndex) Image(i int) (string, error) {
	if i < 0 || i >= len(x.images) {
		return "", fmt.Errorf("%w: position %d of %d", ErrUnknownImage, i, len(x.images))
	}
	return x.images[i], nil
}

// Position is the inverse of Image.
func (x *AnnotationIndex) Position(id string) (int, bool) {
	p, ok := x.pos[id]
	return p, ok
}

func (x *AnnotationIndex) Images() []string {
	return append([]string(nil), x.images...)
}

// Rows is the total number of indexed annotation rows.
func (x *AnnotationIndex) Rows() int {
	n := 0
	for _, r := range x.rows {
		n += len(r)
	}
	return n
}
