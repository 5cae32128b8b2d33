package simulation

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"QuorumSim/internal/logger"
	"QuorumSim/internal/metrics"
)

// Option customizes a run.
type Option func(*runOptions)

// runOptions holds the optional collaborators of a run.
type runOptions struct {
	metrics *metrics.Metrics        // metrics records per-trial counters, may be nil
	log     *slog.Logger            // log receives run progress
	seed    *uint64                 // seed fixes worker sources when set
	source  func(w int) rand.Source // source overrides worker sources when set
}

// WithMetrics records every trial into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *runOptions) { o.metrics = m }
}

// WithLogger sends run progress to log.
func WithLogger(log *slog.Logger) Option {
	return func(o *runOptions) { o.log = log }
}

// WithSeed derives every worker's source from seed.
// Runs are reproducible for the same seed and worker count.
func WithSeed(seed uint64) Option {
	return func(o *runOptions) { o.seed = &seed }
}

// withSource draws worker w's randomness from source(w).
func withSource(source func(w int) rand.Source) Option {
	return func(o *runOptions) { o.source = source }
}

// Run executes cfg.Trials independent trials across a worker pool and
// aggregates them. The config is validated before any trial starts.
func Run(cfg Config, opts ...Option) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := runOptions{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	workers := cfg.workers()
	shares := partition(cfg.Trials, workers)
	tallies := make([]*Tally, workers)

	log := o.log.With("policy", cfg.Policy.Kind.String())
	log.Info("simulation started",
		"group", cfg.GroupSize,
		"section", cfg.SectionSize,
		"malicious", cfg.Malicious,
		"trials", cfg.Trials,
		"tries", cfg.Tries,
		"hasher", cfg.Hasher.String(),
		"workers", workers,
	)

	var g errgroup.Group

	for w := range workers {
		g.Go(func() error {
			r := workerRand(o.seed, w)
			if o.source != nil {
				r = rand.New(o.source(w))
			}

			t, err := runWorker(r, cfg, shares[w], o.metrics)
			if err != nil {
				return fmt.Errorf("worker %d:\n%w", w, err)
			}

			tallies[w] = t
			log.Debug("worker finished", "worker", w, "trials", t.Trials, "successes", t.Successes)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run trials:\n%w", err)
	}

	total := NewTally()
	for _, t := range tallies {
		total.Merge(t)
	}

	res := total.Result()

	log.Info("simulation finished",
		"success_rate", res.SuccessRate,
		"closest_success_rate", res.ClosestSuccessRate,
		"stall_rate", res.StallRate,
		"avg_tries", res.AvgTries,
		logger.Timed(start),
	)

	return res, nil
}

// runWorker runs n trials on r and tallies them locally.
func runWorker(r *rand.Rand, cfg Config, n int, m *metrics.Metrics) (*Tally, error) {
	t := NewTally()
	buf := make([]byte, searchDataSize)
	policy := cfg.Policy.Kind.String()

	for i := 0; i < n; i++ {
		tr, err := runTrial(r, cfg, buf)
		if err != nil {
			return nil, err
		}

		t.Add(tr)
		m.ObserveTrial(policy, tr.Budget, tr.Succeeded(), tr.ClosestToPrefix, tr.Stalled)
	}

	return t, nil
}

// workerRand returns worker w's private source.
// Without a seed the key comes from the system CSPRNG.
func workerRand(seed *uint64, w int) *rand.Rand {
	var key [32]byte

	if seed == nil {
		crand.Read(key[:])
	} else {
		binary.LittleEndian.PutUint64(key[0:], *seed)
		binary.LittleEndian.PutUint64(key[8:], uint64(w))
	}

	return rand.New(rand.NewChaCha8(key))
}
