package simulation

import (
	"errors"
	"fmt"
	"runtime"

	"QuorumSim/internal/quorum"
	"QuorumSim/internal/section"
	"QuorumSim/internal/xorname"
)

// ErrInvalidConfig is returned when a run is misconfigured.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config describes one simulation run.
type Config struct {
	GroupSize   int            // GroupSize is the close group cardinality
	SectionSize int            // SectionSize is the number of section members
	Malicious   int            // Malicious is the adversary set cardinality
	Trials      int            // Trials is the number of independent sections
	Tries       int            // Tries is the search budget per trial
	Policy      quorum.Spec    // Policy selects the quorum policy
	Hasher      xorname.Hasher // Hasher maps search data to points
	Workers     int            // Workers bounds parallelism, 0 for one per CPU
}

// Validate checks the config before any trial runs.
func (c Config) Validate() error {
	if err := c.sectionParams().Validate(); err != nil {
		return fmt.Errorf("check section params:\n%w\n%w", err, ErrInvalidConfig)
	}

	if c.Trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d:\n%w", c.Trials, ErrInvalidConfig)
	}

	if c.Tries <= 0 {
		return fmt.Errorf("tries must be positive, got %d:\n%w", c.Tries, ErrInvalidConfig)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d:\n%w", c.Workers, ErrInvalidConfig)
	}

	return nil
}

// sectionParams returns the per-trial section parameters.
func (c Config) sectionParams() section.Params {
	return section.Params{
		Size:      c.SectionSize,
		Malicious: c.Malicious,
		GroupSize: c.GroupSize,
		Ages:      c.Policy.Sampler(),
	}
}

// workers returns the effective worker count.
func (c Config) workers() int {
	w := c.Workers
	if w == 0 {
		w = runtime.NumCPU()
	}

	if w > c.Trials {
		w = c.Trials
	}

	return w
}

// partition splits total into n near-equal shares.
func partition(total, n int) []int {
	shares := make([]int, n)
	for i := range shares {
		shares[i] = total / n
		if i < total%n {
			shares[i]++
		}
	}

	return shares
}
