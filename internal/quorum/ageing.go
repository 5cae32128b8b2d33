package quorum

import (
	"slices"

	"QuorumSim/internal/section"
	"QuorumSim/internal/xorname"
)

// AgeSum weighs each member by its age.
// Adversaries need a headcount majority and more than half the group's total age.
type AgeSum struct {
	base
	th Thresholds // th holds the weight boundaries
}

// NewAgeSum creates an age-sum policy over s.
func NewAgeSum(s *section.Section, th Thresholds) (*AgeSum, error) {
	if !s.HasAges() {
		return nil, ErrNoAges
	}

	return &AgeSum{base: base{s: s}, th: th}, nil
}

// ageSums returns the adversarial and total age of group.
func (a *AgeSum) ageSums(group []xorname.Name) (malicious, total int) {
	for _, name := range group {
		age := a.age(name)
		total += age

		if a.IsMalicious(name) {
			malicious += age
		}
	}

	return malicious, total
}

// HasMaliciousQuorum implements Policy.
func (a *AgeSum) HasMaliciousQuorum(group []xorname.Name) bool {
	if !hasMajority(a, group) {
		return false
	}

	mal, total := a.ageSums(group)

	return a.th.Quorum.Reached(2*mal, total)
}

// CanStall implements Policy.
func (a *AgeSum) CanStall(group []xorname.Name) bool {
	if hasMajority(a, group) {
		return true
	}

	mal, total := a.ageSums(group)

	return a.th.Stall.Reached(2*mal, total)
}

// AgeRank weighs each member by its rank among the group sorted by age.
// The youngest member has rank 0; ties are broken by distance to the zero point.
type AgeRank struct {
	base
	th Thresholds // th holds the weight boundaries
}

// NewAgeRank creates a rank-weighted policy over s.
func NewAgeRank(s *section.Section, th Thresholds) (*AgeRank, error) {
	if !s.HasAges() {
		return nil, ErrNoAges
	}

	return &AgeRank{base: base{s: s}, th: th}, nil
}

// WeightLimit returns t(t-1)/2 for t = floor(3g/4).
// It is the rank sum of the youngest three quarters of a full group.
func WeightLimit(groupSize int) int {
	t := groupSize * 3 / 4
	return t * (t - 1) / 2
}

// TotalRankSum returns g(g-1)/2, the rank sum of a full group.
func TotalRankSum(groupSize int) int {
	return groupSize * (groupSize - 1) / 2
}

// rankSum returns the summed ranks of the adversarial members of group.
func (a *AgeRank) rankSum(group []xorname.Name) int {
	sorted := make([]xorname.Name, len(group))
	copy(sorted, group)

	slices.SortFunc(sorted, func(x, y xorname.Name) int {
		if ax, ay := a.age(x), a.age(y); ax != ay {
			return ax - ay
		}

		return xorname.CompareDistance(xorname.Zero, x, y)
	})

	sum := 0
	for rank, name := range sorted {
		if a.IsMalicious(name) {
			sum += rank
		}
	}

	return sum
}

// HasMaliciousQuorum implements Policy.
func (a *AgeRank) HasMaliciousQuorum(group []xorname.Name) bool {
	if !hasMajority(a, group) {
		return false
	}

	return a.th.Quorum.Reached(a.rankSum(group), WeightLimit(a.GroupSize()))
}

// CanStall implements Policy.
func (a *AgeRank) CanStall(group []xorname.Name) bool {
	if hasMajority(a, group) {
		return true
	}

	g := a.GroupSize()

	return a.th.Stall.Reached(a.rankSum(group), TotalRankSum(g)-WeightLimit(g))
}
