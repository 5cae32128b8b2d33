package quorum

import (
	"QuorumSim/internal/section"
	"QuorumSim/internal/xorname"
)

// Basic is raw headcount majority.
type Basic struct {
	base
}

// NewBasic creates a majority policy over s.
func NewBasic(s *section.Section) *Basic {
	return &Basic{base{s: s}}
}

// HasMaliciousQuorum is true when adversaries exceed half the group size.
func (b *Basic) HasMaliciousQuorum(group []xorname.Name) bool {
	return hasMajority(b, group)
}

// CanStall is true when honest members can no longer form a majority.
func (b *Basic) CanStall(group []xorname.Name) bool {
	return CountMalicious(b, group) > (b.GroupSize()-1)/2
}
