package dataset

import (
	"fmt"
	"os"
	"slices"

	"github.com/forest-guardian/treeindex/internal/index"
)

type checkInput struct {
	dataDir  string
	splits   *index.SplitSet
	inputs   int
	splitIDs int
	metadata *index.MetadataArray
	fields   []string
	ySize    int
	yRows    int
	annots   int
}

// check runs the construction invariants and reports the first violation.
func check(c checkInput) error {
	if err := checkDir(c.dataDir); err != nil {
		return err
	}
	if !c.splits.Consistent() {
		return fmt.Errorf("%w: split ids and names cover different labels", ErrInvalidDataset)
	}
	if c.splitIDs != c.inputs {
		return fmt.Errorf("%w: %d split ids for %d inputs", ErrInvalidDataset, c.splitIDs, c.inputs)
	}
	if err := c.metadata.CheckShape(c.inputs, c.fields); err != nil {
		return err
	}
	if !slices.Equal(c.metadata.Fields(), c.fields) {
		return fmt.Errorf("%w: metadata fields %v, want %v", ErrInvalidDataset, c.metadata.Fields(), c.fields)
	}
	if c.annots != c.yRows {
		return fmt.Errorf("%w: index covers %d of %d annotations", ErrInvalidDataset, c.annots, c.yRows)
	}
	if c.ySize == 1 && !slices.Contains(c.fields, "y") {
		return fmt.Errorf("%w: scalar labels need a y metadata field", ErrInvalidDataset)
	}
	return nil
}

func checkDir(dir string) error {
	st, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %s does not exist yet", ErrInvalidDataset, dir)
	}
	if !st.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidDataset, dir)
	}
	return nil
}
