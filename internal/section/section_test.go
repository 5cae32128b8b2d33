package section

import (
	"errors"
	"math/rand/v2"
	"testing"

	"QuorumSim/internal/xorname"
)

// newTestRand returns a seeded source so failures reproduce.
func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0xC0FFEE))
}

// TestGenerate_SizesAndSubset tests cardinalities and the subset invariant.
func TestGenerate_SizesAndSubset(t *testing.T) {
	r := newTestRand(1)

	for i := 0; i < 50; i++ {
		s, err := Generate(r, Params{Size: 25, Malicious: 6, GroupSize: 10})
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		if s.Len() != 25 {
			t.Fatalf("expected 25 members, got %d", s.Len())
		}

		mal := s.Malicious()
		if len(mal) != 6 || s.MaliciousCount() != 6 {
			t.Fatalf("expected 6 malicious, got %d (count %d)", len(mal), s.MaliciousCount())
		}

		for _, m := range mal {
			if !s.Contains(m) {
				t.Fatalf("malicious %s not a member", m.Short())
			}

			if !s.IsMalicious(m) {
				t.Fatalf("IsMalicious(%s) = false", m.Short())
			}
		}
	}
}

// TestGenerate_UniqueNames tests no duplicates are produced.
func TestGenerate_UniqueNames(t *testing.T) {
	s, err := Generate(newTestRand(2), Params{Size: 500, Malicious: 100, GroupSize: 20})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	seen := make(map[xorname.Name]bool, s.Len())
	for _, n := range s.Names() {
		if seen[n] {
			t.Fatalf("duplicate name %s", n.Short())
		}
		seen[n] = true
	}
}

// TestGenerate_AllMalicious tests the boundary where every member is adversarial.
func TestGenerate_AllMalicious(t *testing.T) {
	s, err := Generate(newTestRand(3), Params{Size: 8, Malicious: 8, GroupSize: 8})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for _, n := range s.Names() {
		if !s.IsMalicious(n) {
			t.Fatalf("member %s should be malicious", n.Short())
		}
	}
}

// TestGenerate_MaliciousUniform checks each position is picked at about k/n.
func TestGenerate_MaliciousUniform(t *testing.T) {
	r := newTestRand(4)

	const n, k, rounds = 10, 3, 20000

	counts := make([]int, n)
	for i := 0; i < rounds; i++ {
		flags := pickMalicious(r, n, k)
		for j, f := range flags {
			if f {
				counts[j]++
			}
		}
	}

	want := float64(rounds) * k / n
	for j, c := range counts {
		if diff := float64(c) - want; diff > want*0.05 || diff < -want*0.05 {
			t.Errorf("position %d picked %d times, want about %.0f", j, c, want)
		}
	}
}

// TestParamsValidate tests every invalid configuration is rejected.
func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"zero size", Params{Size: 0, Malicious: 0, GroupSize: 1}},
		{"malicious exceeds size", Params{Size: 5, Malicious: 6, GroupSize: 3}},
		{"negative malicious", Params{Size: 5, Malicious: -1, GroupSize: 3}},
		{"group exceeds size", Params{Size: 5, Malicious: 2, GroupSize: 6}},
		{"zero group", Params{Size: 5, Malicious: 2, GroupSize: 0}},
	}

	for _, tc := range tests {
		if err := tc.p.Validate(); !errors.Is(err, ErrInvalidParams) {
			t.Errorf("%s: expected ErrInvalidParams, got %v", tc.name, err)
		}

		if _, err := Generate(newTestRand(5), tc.p); !errors.Is(err, ErrInvalidParams) {
			t.Errorf("%s: Generate should fail, got %v", tc.name, err)
		}
	}

	if err := (Params{Size: 25, Malicious: 6, GroupSize: 10}).Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}
}

// TestParamsValidate_Context tests the failing check leads the error text.
func TestParamsValidate_Context(t *testing.T) {
	err := Params{Size: 5, Malicious: 2, GroupSize: 6}.Validate()

	want := "group size 6 exceeds section size 5:\n" + ErrInvalidParams.Error()
	if err == nil || err.Error() != want {
		t.Fatalf("expected %q, got %v", want, err)
	}
}

// constSource is a degenerate source that always yields zero.
type constSource struct{}

// Uint64 implements rand.Source.
func (constSource) Uint64() uint64 { return 0 }

// TestGenerate_RedrawCap tests a colliding source fails instead of looping.
func TestGenerate_RedrawCap(t *testing.T) {
	r := rand.New(constSource{})

	_, err := Generate(r, Params{Size: 3, Malicious: 1, GroupSize: 2})
	if !errors.Is(err, ErrDuplicateStall) {
		t.Fatalf("expected ErrDuplicateStall, got %v", err)
	}

	// A single member never collides.
	s, err := Generate(rand.New(constSource{}), Params{Size: 1, Malicious: 1, GroupSize: 1})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if !s.Names()[0].IsZero() {
		t.Fatalf("expected the zero name, got %s", s.Names()[0])
	}
}

// TestGenerate_NoAges tests the age accessors on an age-less section.
func TestGenerate_NoAges(t *testing.T) {
	s, err := Generate(newTestRand(6), Params{Size: 10, Malicious: 2, GroupSize: 5})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if s.HasAges() {
		t.Fatal("expected no ages")
	}

	if _, ok := s.Age(s.Names()[0]); ok {
		t.Fatal("Age should report ok=false without ages")
	}
}

// TestNew tests explicit construction and its validation.
func TestNew(t *testing.T) {
	a, b, c := xorname.Name{1}, xorname.Name{2}, xorname.Name{3}

	s, err := New(2, []xorname.Name{a, b, c}, []xorname.Name{b}, map[xorname.Name]uint8{a: 1, b: 2, c: 3})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if !s.IsMalicious(b) || s.IsMalicious(a) {
		t.Fatal("malicious flags wrong")
	}

	if age, ok := s.Age(c); !ok || age != 3 {
		t.Fatalf("Age(c) = %d, %v", age, ok)
	}

	if s.IsMalicious(xorname.Name{9}) {
		t.Fatal("non-member reported malicious")
	}

	cases := []struct {
		name string
		fn   func() error
	}{
		{"duplicate member", func() error {
			_, err := New(1, []xorname.Name{a, a}, nil, nil)
			return err
		}},
		{"foreign malicious", func() error {
			_, err := New(1, []xorname.Name{a, b}, []xorname.Name{c}, nil)
			return err
		}},
		{"duplicate malicious", func() error {
			_, err := New(1, []xorname.Name{a, b}, []xorname.Name{a, a}, nil)
			return err
		}},
		{"missing age", func() error {
			_, err := New(1, []xorname.Name{a, b}, nil, map[xorname.Name]uint8{a: 1})
			return err
		}},
	}

	for _, tc := range cases {
		if err := tc.fn(); !errors.Is(err, ErrInvalidParams) {
			t.Errorf("%s: expected ErrInvalidParams, got %v", tc.name, err)
		}
	}
}
