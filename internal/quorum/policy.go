package quorum

import (
	"errors"

	"QuorumSim/internal/closegroup"
	"QuorumSim/internal/section"
	"QuorumSim/internal/xorname"
)

// ErrNoAges is returned when an ageing policy is built over an age-less section.
var ErrNoAges = errors.New("section has no ages")

// Policy evaluates adversarial control over groups of a section.
type Policy interface {
	// Section returns the current membership.
	Section() []xorname.Name

	// IsMalicious reports whether name belongs to the adversary set.
	IsMalicious(name xorname.Name) bool

	// GroupSize returns the close group cardinality.
	GroupSize() int

	// HasMaliciousQuorum reports whether the adversary can force the group's outcome.
	HasMaliciousQuorum(group []xorname.Name) bool

	// CanStall reports whether the adversary can block the group's progress.
	CanStall(group []xorname.Name) bool
}

// CloseGroup returns the policy's close group around point.
func CloseGroup(p Policy, point xorname.Name) []xorname.Name {
	return closegroup.Select(p.Section(), point, p.GroupSize())
}

// CountMalicious returns how many group members are adversarial.
func CountMalicious(p Policy, group []xorname.Name) int {
	n := 0
	for _, name := range group {
		if p.IsMalicious(name) {
			n++
		}
	}

	return n
}

// MaliciousNodes returns the adversarial members of group, in group order.
func MaliciousNodes(p Policy, group []xorname.Name) []xorname.Name {
	var out []xorname.Name
	for _, name := range group {
		if p.IsMalicious(name) {
			out = append(out, name)
		}
	}

	return out
}

// HasMaliciousPrefixCloseGroup checks quorum in the group closest to the zero point.
// This is the structural baseline, independent of any adversarial search.
func HasMaliciousPrefixCloseGroup(p Policy) bool {
	return p.HasMaliciousQuorum(CloseGroup(p, xorname.Zero))
}

// HasMaliciousCloseGroup checks quorum in the close group around point.
func HasMaliciousCloseGroup(p Policy, point xorname.Name) bool {
	return p.HasMaliciousQuorum(CloseGroup(p, point))
}

// CanStallAt checks stalling in the close group around point.
func CanStallAt(p Policy, point xorname.Name) bool {
	return p.CanStall(CloseGroup(p, point))
}

// hasMajority reports whether adversaries outnumber half the group size.
func hasMajority(p Policy, group []xorname.Name) bool {
	return CountMalicious(p, group) > p.GroupSize()/2
}

// base carries the section shared by every policy.
type base struct {
	s *section.Section // s is the evaluated section
}

// Section implements Policy.
func (b base) Section() []xorname.Name { return b.s.Names() }

// IsMalicious implements Policy.
func (b base) IsMalicious(name xorname.Name) bool { return b.s.IsMalicious(name) }

// GroupSize implements Policy.
func (b base) GroupSize() int { return b.s.GroupSize() }

// age returns a member's age, zero for unknown names.
func (b base) age(name xorname.Name) int {
	a, _ := b.s.Age(name)
	return int(a)
}
