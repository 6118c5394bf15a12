package index

import (
	"fmt"
	"slices"
)

// EncodeGroups maps each value to a dense id in [0, n) where n is the number
// of distinct values, ordered by value. It fails with ErrGroupEncoding unless
// the observed ids are exactly {0, ..., n-1}.
func EncodeGroups(values []string) ([]int, []string, error) {
	categories := slices.Clone(values)
	slices.Sort(categories)
	categories = slices.Compact(categories)

	ids := make([]int, len(values))
	for i, v := range values {
		id, found := slices.BinarySearch(categories, v)
		if !found {
			return nil, nil, fmt.Errorf("%w: value %q has no category", ErrGroupEncoding, v)
		}
		ids[i] = id
	}
	if err := checkDense(ids, len(categories)); err != nil {
		return nil, nil, err
	}
	return ids, categories, nil
}

func checkDense(ids []int, n int) error {
	seen := make([]bool, n)
	for _, id := range ids {
		if id < 0 || id >= n {
			return fmt.Errorf("%w: id %d outside [0, %d)", ErrGroupEncoding, id, n)
		}
		seen[id] = true
	}
	for id, ok := range seen {
		if !ok {
			return fmt.Errorf("%w: id %d of %d never observed", ErrGroupEncoding, id, n)
		}
	}
	return nil
}
