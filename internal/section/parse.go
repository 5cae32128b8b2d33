package section

import (
	"errors"
	"fmt"
)

// ErrUnknownAgeSampler is returned when an age sampler name is not recognized.
var ErrUnknownAgeSampler = errors.New("unknown age sampler")

// ParseAgeSampler resolves an age sampler from its flag name.
// An empty name returns nil, leaving the choice to the policy.
func ParseAgeSampler(s string) (AgeSampler, error) {
	switch s {
	case "":
		return nil, nil
	case "exponential", "exp":
		return ExponentialAges{Rate: 1}, nil
	case "churn":
		return ChurnAges{}, nil
	default:
		return nil, fmt.Errorf("parse age sampler %q:\n%w", s, ErrUnknownAgeSampler)
	}
}
