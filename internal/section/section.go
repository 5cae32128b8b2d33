package section

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"QuorumSim/internal/xorname"
)

const (
	// maxRedraws caps the number of duplicate draws tolerated per section.
	// A single collision in a 256-bit space is already astronomically unlikely.
	maxRedraws = 1024
)

var (
	// ErrInvalidParams is returned when section parameters are inconsistent.
	ErrInvalidParams = errors.New("invalid section params")

	// ErrDuplicateStall is returned when unique name generation keeps colliding.
	ErrDuplicateStall = errors.New("duplicate name generation stalled")
)

// Params describes the section to generate.
type Params struct {
	Size      int        // Size is the number of section members
	Malicious int        // Malicious is the number of adversarial members
	GroupSize int        // GroupSize is the close group cardinality
	Ages      AgeSampler // Ages assigns member ages, nil for an age-less section
}

// Validate checks the parameters before anything is generated.
func (p Params) Validate() error {
	if p.Size <= 0 {
		return fmt.Errorf("section size must be positive, got %d:\n%w", p.Size, ErrInvalidParams)
	}

	if p.GroupSize <= 0 {
		return fmt.Errorf("group size must be positive, got %d:\n%w", p.GroupSize, ErrInvalidParams)
	}

	if p.GroupSize > p.Size {
		return fmt.Errorf("group size %d exceeds section size %d:\n%w", p.GroupSize, p.Size, ErrInvalidParams)
	}

	if p.Malicious < 0 || p.Malicious > p.Size {
		return fmt.Errorf("malicious count %d out of range [0, %d]:\n%w", p.Malicious, p.Size, ErrInvalidParams)
	}

	return nil
}

// Section is one generated population of names.
// It is immutable after construction and safe for concurrent reads.
type Section struct {
	groupSize int                  // groupSize is the close group cardinality
	names     []xorname.Name       // names holds members in generation order
	index     map[xorname.Name]int // index maps a name to its position in names
	malicious []bool               // malicious flags adversarial members by position
	ages      []uint8              // ages holds member ages by position, nil without ages
	nMal      int                  // nMal is the adversary set cardinality
}

// Generate draws a fresh section from r.
func Generate(r *rand.Rand, p Params) (*Section, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	names, index, err := drawNames(r, p.Size)
	if err != nil {
		return nil, err
	}

	s := &Section{
		groupSize: p.GroupSize,
		names:     names,
		index:     index,
		malicious: pickMalicious(r, p.Size, p.Malicious),
		nMal:      p.Malicious,
	}

	if p.Ages != nil {
		s.ages = p.Ages.Ages(r, p.Size)
	}

	return s, nil
}

// drawNames draws n unique names, redrawing on collision.
func drawNames(r *rand.Rand, n int) ([]xorname.Name, map[xorname.Name]int, error) {
	names := make([]xorname.Name, 0, n)
	index := make(map[xorname.Name]int, n)
	redraws := 0

	for len(names) < n {
		name := xorname.Random(r)

		if _, dup := index[name]; dup {
			redraws++
			if redraws > maxRedraws {
				return nil, nil, fmt.Errorf("%d redraws for %d names:\n%w", redraws, n, ErrDuplicateStall)
			}
			continue
		}

		index[name] = len(names)
		names = append(names, name)
	}

	return names, index, nil
}

// pickMalicious chooses k of n positions uniformly without replacement.
// Uses a partial Fisher-Yates shuffle over the position list.
func pickMalicious(r *rand.Rand, n, k int) []bool {
	positions := make([]int, n)
	for i := range positions {
		positions[i] = i
	}

	flags := make([]bool, n)
	for i := 0; i < k; i++ {
		j := i + r.IntN(n-i)
		positions[i], positions[j] = positions[j], positions[i]
		flags[positions[i]] = true
	}

	return flags
}

// New builds a section from explicit members.
// Every malicious name must be a member. When ages is non-nil it must hold
// an age for every member.
func New(groupSize int, names, malicious []xorname.Name, ages map[xorname.Name]uint8) (*Section, error) {
	p := Params{Size: len(names), Malicious: len(malicious), GroupSize: groupSize}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s := &Section{
		groupSize: groupSize,
		names:     make([]xorname.Name, len(names)),
		index:     make(map[xorname.Name]int, len(names)),
		malicious: make([]bool, len(names)),
	}

	for i, n := range names {
		if _, dup := s.index[n]; dup {
			return nil, fmt.Errorf("duplicate member %s:\n%w", n.Short(), ErrInvalidParams)
		}

		s.names[i] = n
		s.index[n] = i
	}

	for _, m := range malicious {
		i, ok := s.index[m]
		if !ok {
			return nil, fmt.Errorf("malicious %s is not a member:\n%w", m.Short(), ErrInvalidParams)
		}

		if s.malicious[i] {
			return nil, fmt.Errorf("duplicate malicious %s:\n%w", m.Short(), ErrInvalidParams)
		}

		s.malicious[i] = true
		s.nMal++
	}

	if ages != nil {
		s.ages = make([]uint8, len(names))

		for i, n := range names {
			age, ok := ages[n]
			if !ok {
				return nil, fmt.Errorf("no age for member %s:\n%w", n.Short(), ErrInvalidParams)
			}
			s.ages[i] = age
		}
	}

	return s, nil
}

// Names returns the members in generation order.
// The returned slice is shared and must not be modified.
func (s *Section) Names() []xorname.Name { return s.names }

// Len returns the number of members.
func (s *Section) Len() int { return len(s.names) }

// GroupSize returns the close group cardinality.
func (s *Section) GroupSize() int { return s.groupSize }

// Contains reports whether name is a member.
func (s *Section) Contains(name xorname.Name) bool {
	_, ok := s.index[name]
	return ok
}

// IsMalicious reports whether name belongs to the adversary set.
func (s *Section) IsMalicious(name xorname.Name) bool {
	i, ok := s.index[name]
	return ok && s.malicious[i]
}

// MaliciousCount returns the adversary set cardinality.
func (s *Section) MaliciousCount() int { return s.nMal }

// Malicious returns the adversary set in generation order.
func (s *Section) Malicious() []xorname.Name {
	out := make([]xorname.Name, 0, s.nMal)
	for i, n := range s.names {
		if s.malicious[i] {
			out = append(out, n)
		}
	}

	return out
}

// HasAges reports whether members carry an age.
func (s *Section) HasAges() bool { return s.ages != nil }

// Age returns the age of a member. ok is false for non-members or age-less sections.
func (s *Section) Age(name xorname.Name) (age uint8, ok bool) {
	if s.ages == nil {
		return 0, false
	}

	i, found := s.index[name]
	if !found {
		return 0, false
	}

	return s.ages[i], true
}
