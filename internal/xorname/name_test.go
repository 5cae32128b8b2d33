package xorname

import (
	"errors"
	"math/rand/v2"
	"testing"
)

// newTestRand returns a deterministic source for name tests.
func newTestRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// TestDistanceSymmetry verifies d(a,b) == d(b,a) and d(a,a) == 0.
func TestDistanceSymmetry(t *testing.T) {
	r := newTestRand()

	for i := 0; i < 200; i++ {
		a := Random(r)
		b := Random(r)

		if Distance(a, b) != Distance(b, a) {
			t.Fatalf("distance not symmetric for %s, %s", a.Short(), b.Short())
		}

		if !Distance(a, a).IsZero() {
			t.Fatalf("distance(a,a) not zero for %s", a.Short())
		}

		if a != b && Distance(a, b).IsZero() {
			t.Fatalf("distinct names at zero distance: %s, %s", a.Short(), b.Short())
		}
	}
}

// TestDistanceBytes checks XOR is applied byte by byte.
func TestDistanceBytes(t *testing.T) {
	a := Name{0xF0, 0x0F}
	b := Name{0xFF, 0x01}

	d := Distance(a, b)
	if d[0] != 0x0F || d[1] != 0x0E {
		t.Fatalf("unexpected distance prefix %x", d[:2])
	}

	for i := 2; i < Size; i++ {
		if d[i] != 0 {
			t.Fatalf("byte %d: expected 0, got %x", i, d[i])
		}
	}
}

// TestCompareBigEndian verifies the leading byte dominates ordering.
func TestCompareBigEndian(t *testing.T) {
	var a, b Name
	a[0] = 0x01
	b[Size-1] = 0xFF

	if Compare(a, b) <= 0 {
		t.Fatal("expected a > b: first byte outweighs last byte")
	}

	if !Less(b, a) {
		t.Fatal("expected Less(b, a)")
	}

	if Compare(a, a) != 0 {
		t.Fatal("expected equal names to compare 0")
	}
}

// TestCompareDistanceMatchesDistance cross-checks the fused comparison.
func TestCompareDistanceMatchesDistance(t *testing.T) {
	r := newTestRand()

	for i := 0; i < 500; i++ {
		target, a, b := Random(r), Random(r), Random(r)

		want := Compare(Distance(a, target), Distance(b, target))
		got := CompareDistance(target, a, b)

		if want != got {
			t.Fatalf("iteration %d: CompareDistance=%d, Compare(Distance)=%d", i, got, want)
		}
	}
}

// TestCloserTo tests ordering relative to a target.
func TestCloserTo(t *testing.T) {
	target := Name{0x80}
	near := Name{0x81}
	far := Name{0x01}

	if !CloserTo(target, near, far) {
		t.Fatal("0x81 should be closer to 0x80 than 0x01")
	}

	if CloserTo(target, near, near) {
		t.Fatal("a name is not strictly closer than itself")
	}
}

// TestFromHex tests decoding and padding.
func TestFromHex(t *testing.T) {
	n, err := FromHex("ff01")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if n[0] != 0xFF || n[1] != 0x01 || n[2] != 0 {
		t.Fatalf("unexpected name %s", n)
	}

	if n.Short() != "ff010000" {
		t.Fatalf("unexpected short form %q", n.Short())
	}

	if _, err := FromHex("zz"); err == nil {
		t.Fatal("expected error for invalid hex")
	}
}

// TestHashers tests both hashers produce distinct deterministic points.
func TestHashers(t *testing.T) {
	data := []byte("search input")

	for _, h := range []Hasher{SHA3, BLAKE3} {
		if h.Sum(data) != h.Sum(data) {
			t.Fatalf("%s: not deterministic", h)
		}

		if h.Sum(data) == h.Sum([]byte("other input")) {
			t.Fatalf("%s: different inputs collided", h)
		}
	}

	if SHA3.Sum(data) == BLAKE3.Sum(data) {
		t.Fatal("sha3 and blake3 should differ")
	}
}

// TestSHA3KnownVector checks the empty-input digest.
func TestSHA3KnownVector(t *testing.T) {
	want, _ := FromHex("a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a")

	if got := SHA3.Sum(nil); got != want {
		t.Fatalf("sha3(\"\") = %s, want %s", got, want)
	}
}

// TestParseHasher tests flag parsing.
func TestParseHasher(t *testing.T) {
	tests := []struct {
		in   string
		want Hasher
	}{
		{"", SHA3},
		{"sha3", SHA3},
		{"sha3-256", SHA3},
		{"blake3", BLAKE3},
	}

	for _, tc := range tests {
		got, err := ParseHasher(tc.in)
		if err != nil {
			t.Fatalf("ParseHasher(%q): %v", tc.in, err)
		}

		if got != tc.want {
			t.Errorf("ParseHasher(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, err := ParseHasher("md5"); !errors.Is(err, ErrUnknownHasher) {
		t.Fatalf("expected ErrUnknownHasher, got %v", err)
	}
}
