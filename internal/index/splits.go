package index

import (
	"fmt"
	"maps"
	"slices"
)

// Split ids of labeled datasets.
const (
	Train = iota
	Val
	Test
	IDVal
	IDTest
)

// ExtraUnlabeled is the only split of unlabeled datasets.
const ExtraUnlabeled = 0

// SplitSet is a fixed mapping from split labels to ids and display names.
type SplitSet struct {
	ids   map[string]int
	names map[string]string
}

func LabeledSplits() *SplitSet {
	return &SplitSet{
		ids: map[string]int{"train": Train, "val": Val, "test": Test, "id_val": IDVal, "id_test": IDTest},
		names: map[string]string{
			"train":   "Train",
			"val":     "Validation (OOD/Trans)",
			"test":    "Test (OOD/Trans)",
			"id_val":  "Validation (ID/Cis)",
			"id_test": "Test (ID/Cis)",
		},
	}
}

func UnlabeledSplits() *SplitSet {
	return &SplitSet{
		ids:   map[string]int{"extra_unlabeled": ExtraUnlabeled},
		names: map[string]string{"extra_unlabeled": "Extra Unlabeled"},
	}
}

// ID maps a label to its split id. Labels are case-sensitive.
func (s *SplitSet) ID(label string) (int, error) {
	id, ok := s.ids[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownSplitLabel, label, s.Labels())
	}
	return id, nil
}

// Label is the inverse of ID.
func (s *SplitSet) Label(id int) (string, bool) {
	for l, i := range s.ids {
		if i == id {
			return l, true
		}
	}
	return "", false
}

func (s *SplitSet) Name(label string) string {
	return s.names[label]
}

// Labels returns the labels ordered by id.
func (s *SplitSet) Labels() []string {
	labels := slices.Collect(maps.Keys(s.ids))
	slices.SortFunc(labels, func(a, b string) int { return s.ids[a] - s.ids[b] })
	return labels
}

func (s *SplitSet) Dict() map[string]int { return maps.Clone(s.ids) }

func (s *SplitSet) Names() map[string]string { return maps.Clone(s.names) }

// Consistent reports whether ids and display names cover the same labels.
func (s *SplitSet) Consistent() bool {
	return slices.Equal(slices.Sorted(maps.Keys(s.ids)), slices.Sorted(maps.Keys(s.names)))
}
