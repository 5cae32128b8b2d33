package quorum

import (
	"errors"
	"fmt"
)

// ErrUnknownBoundary is returned when a boundary name is not recognized.
var ErrUnknownBoundary = errors.New("unknown boundary")

// Boundary selects how a weight compares against its threshold.
type Boundary uint8

const (
	// Strict requires the weight to exceed the threshold.
	Strict Boundary = iota

	// Inclusive accepts a weight equal to the threshold.
	Inclusive
)

// Reached reports whether weight passes threshold under b.
func (b Boundary) Reached(weight, threshold int) bool {
	if b == Inclusive {
		return weight >= threshold
	}

	return weight > threshold
}

// String returns the boundary's flag name.
func (b Boundary) String() string {
	switch b {
	case Strict:
		return "strict"
	case Inclusive:
		return "inclusive"
	default:
		return fmt.Sprintf("boundary(%d)", uint8(b))
	}
}

// ParseBoundary resolves a boundary from its flag name.
func ParseBoundary(s string) (Boundary, error) {
	switch s {
	case "strict", ">":
		return Strict, nil
	case "inclusive", ">=":
		return Inclusive, nil
	default:
		return 0, fmt.Errorf("parse boundary %q:\n%w", s, ErrUnknownBoundary)
	}
}

// Thresholds holds the weight boundaries of the ageing policies.
type Thresholds struct {
	Quorum Boundary // Quorum compares weight for quorum control
	Stall  Boundary // Stall compares weight for stalling
}

// DefaultThresholds is strict for quorum and inclusive for stalling.
var DefaultThresholds = Thresholds{Quorum: Strict, Stall: Inclusive}
