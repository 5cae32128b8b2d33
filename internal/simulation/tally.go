package simulation

import (
	"github.com/google/btree"
)

// btreeDegree is the branching factor of the try histogram.
const btreeDegree = 8

// TryCount is one histogram bucket: trials first captured at Tries.
type TryCount struct {
	Tries int `json:"tries"` // Tries is the 1-based try index
	Count int `json:"count"` // Count is the number of trials
}

// lessTryCount orders buckets by try index.
func lessTryCount(a, b TryCount) bool {
	return a.Tries < b.Tries
}

// Tally accumulates trial results. Tallies merge in any order.
// The zero value is an empty tally.
type Tally struct {
	Trials    int // Trials is the number of trials added
	Attempts  int // Attempts is the number of tries evaluated
	Prefix    int // Prefix counts trials with a captured prefix group
	Stalled   int // Stalled counts stalled tries
	Successes int // Successes counts trials with a captured group
	TriesSum  int // TriesSum sums the first-capture try of successful trials

	hist *btree.BTreeG[TryCount] // hist maps try index to trial count
}

// NewTally creates an empty tally.
func NewTally() *Tally {
	return &Tally{}
}

// histogram returns the try histogram, creating it on first use.
func (t *Tally) histogram() *btree.BTreeG[TryCount] {
	if t.hist == nil {
		t.hist = btree.NewG(btreeDegree, lessTryCount)
	}

	return t.hist
}

// Add records one trial result.
func (t *Tally) Add(tr TrialResult) {
	t.Trials++
	t.Attempts += tr.Budget
	t.Stalled += tr.Stalled

	if tr.ClosestToPrefix {
		t.Prefix++
	}

	if tr.Succeeded() {
		t.addTries(tr.Tries, 1)
	}
}

// addTries adds count trials first captured at try.
func (t *Tally) addTries(try, count int) {
	h := t.histogram()

	bucket, _ := h.Get(TryCount{Tries: try})
	bucket.Tries = try
	bucket.Count += count
	h.ReplaceOrInsert(bucket)

	t.Successes += count
	t.TriesSum += try * count
}

// Merge folds other into t. other is left unchanged and must not be t.
func (t *Tally) Merge(other *Tally) {
	if other == nil {
		return
	}

	t.Trials += other.Trials
	t.Attempts += other.Attempts
	t.Prefix += other.Prefix
	t.Stalled += other.Stalled

	if other.hist == nil {
		return
	}

	other.hist.Ascend(func(b TryCount) bool {
		t.addTries(b.Tries, b.Count)
		return true
	})
}

// TriesMap returns the histogram ordered by ascending try index.
func (t *Tally) TriesMap() []TryCount {
	if t.hist == nil {
		return nil
	}

	out := make([]TryCount, 0, t.hist.Len())
	t.hist.Ascend(func(b TryCount) bool {
		out = append(out, b)
		return true
	})

	return out
}

// Result computes the summary statistics.
func (t *Tally) Result() *Result {
	res := &Result{
		Trials:    t.Trials,
		Successes: t.Successes,
		TriesMap:  t.TriesMap(),
	}

	if t.Trials > 0 {
		res.SuccessRate = percent(t.Successes, t.Trials)
		res.ClosestSuccessRate = percent(t.Prefix, t.Trials)
	}

	if t.Attempts > 0 {
		res.StallRate = percent(t.Stalled, t.Attempts)
	}

	if t.Successes > 0 {
		res.AvgTries = float64(t.TriesSum) / float64(t.Successes)
	}

	return res
}

// percent returns part/whole as a percentage.
func percent(part, whole int) float64 {
	return float64(part) / float64(whole) * 100
}

// Result summarizes a run.
type Result struct {
	SuccessRate        float64    `json:"success_rate"`         // SuccessRate is the % of trials captured by search
	ClosestSuccessRate float64    `json:"closest_success_rate"` // ClosestSuccessRate is the % of trials with a captured prefix group
	StallRate          float64    `json:"stall_rate"`           // StallRate is the % of tries the adversary could stall
	AvgTries           float64    `json:"avg_tries"`            // AvgTries is the mean first-capture try, 0 without successes
	TriesMap           []TryCount `json:"tries_map"`            // TriesMap is the first-capture histogram
	Trials             int        `json:"trials"`               // Trials is the number of trials run
	Successes          int        `json:"successes"`            // Successes is the number of captured trials
}
