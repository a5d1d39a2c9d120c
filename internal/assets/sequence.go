package assets

import (
	"sort"

	"github.com/agentic-research/assetpairs/api"
)

// EnsureSequential checks that the item metadata files (everything except the
// collection document) are named 0..n-1 with no gaps.
//
// Indices are sorted and compared against their position, so a duplicate
// shows up as the first index it pushes out of place (MissingIndex), not as a
// separate error kind. Callers rely on that.
func EnsureSequential(metadataNames []string) error {
	indices := make([]int, 0, len(metadataNames))
	for _, name := range metadataNames {
		stem, _ := splitExt(name)
		if stem == api.CollectionName {
			continue
		}
		n, ok := parseIndex(stem)
		if !ok {
			return errMalformed(name)
		}
		indices = append(indices, n)
	}

	sort.Ints(indices)
	for i, n := range indices {
		if n != i {
			return errMissingIndex(i)
		}
	}
	return nil
}
