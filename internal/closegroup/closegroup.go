package closegroup

import (
	"slices"

	"QuorumSim/internal/xorname"
)

// Select returns the k names closest to point under the XOR metric.
// The names are ordered by distance (closest first). Ties keep the input order.
func Select(names []xorname.Name, point xorname.Name, k int) []xorname.Name {
	if k <= 0 {
		return nil
	}

	if k > len(names) {
		k = len(names)
	}

	sorted := make([]xorname.Name, len(names))
	copy(sorted, names)

	slices.SortStableFunc(sorted, func(a, b xorname.Name) int {
		return xorname.CompareDistance(point, a, b)
	})

	return sorted[:k:k]
}

// Contains reports whether name is a member of group.
func Contains(group []xorname.Name, name xorname.Name) bool {
	return slices.Contains(group, name)
}

// Furthest returns the member of a non-empty group furthest from point.
// It is the group's radius: every name outside the group is at least as far.
func Furthest(group []xorname.Name, point xorname.Name) xorname.Name {
	far := group[0]
	for _, n := range group[1:] {
		if xorname.CloserTo(point, far, n) {
			far = n
		}
	}

	return far
}
