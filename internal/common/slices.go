package common

import (
	"slices"
)

// SortedUnique returns a sorted copy of s with duplicates removed.
// A nil or empty input yields nil.
func SortedUnique[S ~[]E, E int | string](s S) S {
	if len(s) == 0 {
		return nil
	}

	out := slices.Clone(s)
	slices.Sort(out)

	return slices.Compact(out)
}
