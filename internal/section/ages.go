package section

import (
	"math"
	"math/bits"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// AgeSampler assigns an age to every member of a section.
type AgeSampler interface {
	// Ages returns n independently drawn ages.
	Ages(r *rand.Rand, n int) []uint8

	// Name identifies the sampler in logs and reports.
	Name() string
}

// ExponentialAges draws ages from Exp(Rate), truncated toward zero.
type ExponentialAges struct {
	Rate float64 // Rate is the distribution rate, 1.0 when zero
}

// Ages implements AgeSampler.
func (e ExponentialAges) Ages(r *rand.Rand, n int) []uint8 {
	rate := e.Rate
	if rate == 0 {
		rate = 1
	}

	dist := distuv.Exponential{Rate: rate, Src: r}

	ages := make([]uint8, n)
	for i := range ages {
		ages[i] = truncateAge(dist.Rand())
	}

	return ages
}

// Name implements AgeSampler.
func (ExponentialAges) Name() string { return "exponential" }

// truncateAge drops the fractional part and saturates at the uint8 range.
func truncateAge(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}

	if v >= math.MaxUint8 {
		return math.MaxUint8
	}

	return uint8(v)
}

// ChurnAges models ages produced by churn events.
// A churn step is drawn once per section in [1.5n, 2.5n]; each member then
// draws the churn index at which it joined in [1, step]. A member's age is
// floor(log2(step/index)): half the members joined in the last half of the
// churn window and are age 0, a quarter are age 1, and only the first
// members reach floor(log2(step)).
type ChurnAges struct{}

// Ages implements AgeSampler.
func (ChurnAges) Ages(r *rand.Rand, n int) []uint8 {
	step := ChurnStep(r, n)

	ages := make([]uint8, n)
	for i := range ages {
		idx := 1 + r.IntN(step)
		ages[i] = churnAge(step, idx)
	}

	return ages
}

// churnAge returns floor(log2(step/idx)) for 1 <= idx <= step.
func churnAge(step, idx int) uint8 {
	return uint8(bits.Len(uint(step/idx)) - 1)
}

// Name implements AgeSampler.
func (ChurnAges) Name() string { return "churn" }

// ChurnStep draws the section-wide churn step for n members.
func ChurnStep(r *rand.Rand, n int) int {
	lo := n * 3 / 2
	hi := n * 5 / 2

	if lo < 1 {
		lo = 1
	}

	if hi < lo {
		hi = lo
	}

	return lo + r.IntN(hi-lo+1)
}
