package xorname

import (
	"bytes"
	"encoding/hex"
	"math/rand/v2"
)

// Size is the number of bytes in a Name.
const Size = 32

// Name is a 256-bit identifier of a section member or a search point.
type Name [Size]byte

// Zero is the all-zero name, the origin of a section's prefix.
var Zero Name

// Distance returns the XOR distance between x and y.
func Distance(x, y Name) Name {
	var d Name
	for i := 0; i < Size; i++ {
		d[i] = x[i] ^ y[i]
	}

	return d
}

// Compare compares two names as unsigned big-endian integers.
// Returns -1, 0 or 1.
func Compare(a, b Name) int {
	return bytes.Compare(a[:], b[:])
}

// Less reports whether a sorts before b.
func Less(a, b Name) bool {
	return Compare(a, b) < 0
}

// CompareDistance orders a and b by their distance to target.
// Returns a negative value when a is closer.
func CompareDistance(target, a, b Name) int {
	// Walk bytes directly so the distances are never materialized.
	for i := 0; i < Size; i++ {
		da := a[i] ^ target[i]
		db := b[i] ^ target[i]

		if da != db {
			if da < db {
				return -1
			}
			return 1
		}
	}

	return 0
}

// CloserTo reports whether a is strictly closer to target than b.
func CloserTo(target, a, b Name) bool {
	return CompareDistance(target, a, b) < 0
}

// Random draws a uniformly distributed name from r.
func Random(r *rand.Rand) Name {
	var n Name
	for i := 0; i < Size; i += 8 {
		v := r.Uint64()
		for j := 0; j < 8; j++ {
			n[i+j] = byte(v >> (8 * j))
		}
	}

	return n
}

// IsZero reports whether n is the all-zero name.
func (n Name) IsZero() bool {
	return n == Zero
}

// String hex-encodes the name.
func (n Name) String() string {
	return hex.EncodeToString(n[:])
}

// Short returns the hex of the first four bytes, for logs.
func (n Name) Short() string {
	return hex.EncodeToString(n[:4])
}

// FromHex decodes a hex string into a name.
// Short input is left-aligned and zero padded.
func FromHex(s string) (Name, error) {
	var n Name

	b, err := hex.DecodeString(s)
	if err != nil {
		return n, err
	}

	copy(n[:], b)

	return n, nil
}
