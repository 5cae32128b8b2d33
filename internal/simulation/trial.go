package simulation

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"QuorumSim/internal/quorum"
	"QuorumSim/internal/section"
)

// searchDataSize is the size of the adversary's random search input.
const searchDataSize = 1000

// TrialResult is the outcome of one trial.
type TrialResult struct {
	ClosestToPrefix bool // ClosestToPrefix is set when the prefix close group was captured
	Tries           int  // Tries is the 1-based try of the first capture, 0 if none
	Stalled         int  // Stalled counts tries the adversary could stall
	Budget          int  // Budget is the number of tries evaluated
}

// Succeeded reports whether any try captured a close group.
func (tr TrialResult) Succeeded() bool {
	return tr.Tries > 0
}

// Trial runs one trial: a fresh section, its baseline, then the search.
func Trial(r *rand.Rand, cfg Config) (TrialResult, error) {
	buf := make([]byte, searchDataSize)
	return runTrial(r, cfg, buf)
}

// runTrial is Trial with a caller-owned search buffer.
func runTrial(r *rand.Rand, cfg Config, buf []byte) (TrialResult, error) {
	s, err := section.Generate(r, cfg.sectionParams())
	if err != nil {
		return TrialResult{}, fmt.Errorf("generate section:\n%w", err)
	}

	p, err := cfg.Policy.Build(s)
	if err != nil {
		return TrialResult{}, fmt.Errorf("build policy:\n%w", err)
	}

	res := TrialResult{
		ClosestToPrefix: quorum.HasMaliciousPrefixCloseGroup(p),
		Budget:          cfg.Tries,
	}

	for try := 1; try <= cfg.Tries; try++ {
		fillRandom(r, buf)

		group := quorum.CloseGroup(p, cfg.Hasher.Sum(buf))

		if res.Tries == 0 && p.HasMaliciousQuorum(group) {
			res.Tries = try
		}

		// Stalls are counted on every try, including after the first capture.
		if p.CanStall(group) {
			res.Stalled++
		}
	}

	return res, nil
}

// fillRandom overwrites buf with bytes from r.
func fillRandom(r *rand.Rand, buf []byte) {
	i := 0
	for ; i+8 <= len(buf); i += 8 {
		binary.LittleEndian.PutUint64(buf[i:], r.Uint64())
	}

	if i < len(buf) {
		var tail [8]byte
		binary.LittleEndian.PutUint64(tail[:], r.Uint64())
		copy(buf[i:], tail[:])
	}
}
