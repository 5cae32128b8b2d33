package quorum

import (
	"errors"
	"fmt"

	"QuorumSim/internal/section"
)

var (
	// ErrUnknownPolicy is returned when a policy name is not recognized.
	ErrUnknownPolicy = errors.New("unknown policy")

	// ErrAgesIgnored is returned when an age sampler is given to a policy that ignores ages.
	ErrAgesIgnored = errors.New("policy ignores ages")
)

// Kind identifies a policy variant.
type Kind uint8

const (
	// KindBasic is headcount majority.
	KindBasic Kind = iota

	// KindAgeSum weighs members by age.
	KindAgeSum

	// KindAgeRank weighs members by age rank.
	KindAgeRank
)

// Kinds lists every policy variant.
func Kinds() []Kind {
	return []Kind{KindBasic, KindAgeSum, KindAgeRank}
}

// String returns the kind's flag name.
func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindAgeSum:
		return "age-sum"
	case KindAgeRank:
		return "age-rank"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Description is a one-line summary for listings.
func (k Kind) Description() string {
	switch k {
	case KindBasic:
		return "adversarial headcount above half the group"
	case KindAgeSum:
		return "majority and more than half of the group's summed age"
	case KindAgeRank:
		return "majority and an age-rank sum above the weight limit"
	default:
		return ""
	}
}

// NeedsAges reports whether the kind weighs members by age.
func (k Kind) NeedsAges() bool {
	return k == KindAgeSum || k == KindAgeRank
}

// ParseKind resolves a kind from its flag name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if k.String() == s {
			return k, nil
		}
	}

	return 0, fmt.Errorf("parse policy %q:\n%w", s, ErrUnknownPolicy)
}

// Spec selects and parameterizes a policy.
type Spec struct {
	Kind       Kind               // Kind is the policy variant
	Ages       section.AgeSampler // Ages overrides the age sampler, nil for the default
	Thresholds Thresholds         // Thresholds holds the ageing weight boundaries
}

// DefaultSpec returns the spec of kind k with default thresholds.
func DefaultSpec(k Kind) Spec {
	return Spec{Kind: k, Thresholds: DefaultThresholds}
}

// Validate rejects an explicit age sampler on a policy that ignores ages.
func (sp Spec) Validate() error {
	if sp.Ages != nil && !sp.Kind.NeedsAges() {
		return fmt.Errorf("%s ages with %s policy:\n%w", sp.Ages.Name(), sp.Kind, ErrAgesIgnored)
	}

	return nil
}

// Sampler returns the age sampler sections need for this spec.
// Returns nil for policies that ignore ages.
func (sp Spec) Sampler() section.AgeSampler {
	if !sp.Kind.NeedsAges() {
		return nil
	}

	if sp.Ages != nil {
		return sp.Ages
	}

	return section.ExponentialAges{Rate: 1}
}

// Build creates the policy over s.
func (sp Spec) Build(s *section.Section) (Policy, error) {
	switch sp.Kind {
	case KindBasic:
		return NewBasic(s), nil

	case KindAgeSum:
		p, err := NewAgeSum(s, sp.Thresholds)
		if err != nil {
			return nil, err
		}
		return p, nil

	case KindAgeRank:
		p, err := NewAgeRank(s, sp.Thresholds)
		if err != nil {
			return nil, err
		}
		return p, nil

	default:
		return nil, fmt.Errorf("build policy %s:\n%w", sp.Kind, ErrUnknownPolicy)
	}
}

// String describes the spec for logs.
func (sp Spec) String() string {
	if !sp.Kind.NeedsAges() {
		return sp.Kind.String()
	}

	return fmt.Sprintf("%s(ages=%s quorum=%s stall=%s)",
		sp.Kind, sp.Sampler().Name(), sp.Thresholds.Quorum, sp.Thresholds.Stall)
}
