package xorname

import (
	"errors"
	"fmt"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// ErrUnknownHasher is returned when a hasher name is not recognized.
var ErrUnknownHasher = errors.New("unknown hasher")

// Hasher maps adversary-chosen data to a search point.
type Hasher uint8

const (
	// SHA3 hashes with SHA3-256.
	SHA3 Hasher = iota

	// BLAKE3 hashes with BLAKE3-256.
	BLAKE3
)

// Sum hashes data into a name.
func (h Hasher) Sum(data []byte) Name {
	switch h {
	case BLAKE3:
		return blake3.Sum256(data)
	default:
		return sha3.Sum256(data)
	}
}

// String returns the hasher's flag name.
func (h Hasher) String() string {
	switch h {
	case SHA3:
		return "sha3"
	case BLAKE3:
		return "blake3"
	default:
		return fmt.Sprintf("hasher(%d)", uint8(h))
	}
}

// ParseHasher resolves a hasher from its flag name.
func ParseHasher(s string) (Hasher, error) {
	switch s {
	case "sha3", "sha3-256", "":
		return SHA3, nil
	case "blake3":
		return BLAKE3, nil
	default:
		return 0, fmt.Errorf("parse hasher %q:\n%w", s, ErrUnknownHasher)
	}
}
