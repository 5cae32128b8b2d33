package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"QuorumSim/internal/quorum"
	"QuorumSim/internal/section"
	"QuorumSim/internal/simulation"
	"QuorumSim/internal/xorname"
)

// Config holds the command-line configuration.
type Config struct {
	// Policy is the quorum policy name.
	Policy string

	// Ages overrides the age sampler of ageing policies.
	Ages string

	// QuorumBoundary is the weight comparison for quorum control.
	QuorumBoundary string

	// StallBoundary is the weight comparison for stalling.
	StallBoundary string

	// Hash is the search hash name.
	Hash string

	// Trials is the number of trials per experiment.
	Trials int

	// Tries is the search budget per trial.
	Tries int

	// Workers bounds parallelism, 0 for one per CPU.
	Workers int

	// Group, Section and Malicious select a single custom experiment when Group > 0.
	Group     int
	Section   int
	Malicious int

	// Seed makes runs reproducible when set on the command line.
	Seed uint64

	// TriesMap prints the first-capture histogram.
	TriesMap bool

	// Report is an optional JSON report path (zstd when ending in .zst).
	Report string

	// LogLevel is the minimum log level.
	LogLevel string

	// Metrics dumps the run counters at exit.
	Metrics bool
}

// bindFlags registers every flag on fs.
func (c *Config) bindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Policy, "policy", "p", "basic", "Quorum policy (basic, age-sum, age-rank)")
	fs.StringVar(&c.Ages, "ages", "", "Age sampler for ageing policies (exponential, churn)")
	fs.StringVar(&c.QuorumBoundary, "quorum-boundary", quorum.DefaultThresholds.Quorum.String(), "Ageing quorum comparison (strict, inclusive)")
	fs.StringVar(&c.StallBoundary, "stall-boundary", quorum.DefaultThresholds.Stall.String(), "Ageing stall comparison (strict, inclusive)")
	fs.StringVar(&c.Hash, "hash", "sha3", "Search hash (sha3, blake3)")
	fs.IntVarP(&c.Trials, "trials", "t", defaultTrials, "Trials per experiment")
	fs.IntVar(&c.Tries, "tries", defaultTries, "Search tries per trial")
	fs.IntVarP(&c.Workers, "workers", "w", 0, "Parallel workers (0 = one per CPU)")
	fs.IntVarP(&c.Group, "group", "g", 0, "Close group size of a custom experiment")
	fs.IntVarP(&c.Section, "section", "n", 0, "Section size of a custom experiment")
	fs.IntVarP(&c.Malicious, "malicious", "m", 0, "Adversary count of a custom experiment")
	fs.Uint64Var(&c.Seed, "seed", 0, "Seed for reproducible runs")
	fs.BoolVar(&c.TriesMap, "tries-map", false, "Print the first-capture histogram")
	fs.StringVarP(&c.Report, "report", "o", "", "Write a JSON report (zstd when the path ends in .zst)")
	fs.StringVar(&c.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	fs.BoolVar(&c.Metrics, "metrics", false, "Print run counters at exit")
}

// spec resolves the policy flags.
func (c *Config) spec() (quorum.Spec, error) {
	kind, err := quorum.ParseKind(c.Policy)
	if err != nil {
		return quorum.Spec{}, err
	}

	ages, err := section.ParseAgeSampler(c.Ages)
	if err != nil {
		return quorum.Spec{}, err
	}

	qb, err := quorum.ParseBoundary(c.QuorumBoundary)
	if err != nil {
		return quorum.Spec{}, fmt.Errorf("quorum boundary:\n%w", err)
	}

	sb, err := quorum.ParseBoundary(c.StallBoundary)
	if err != nil {
		return quorum.Spec{}, fmt.Errorf("stall boundary:\n%w", err)
	}

	sp := quorum.Spec{
		Kind:       kind,
		Ages:       ages,
		Thresholds: quorum.Thresholds{Quorum: qb, Stall: sb},
	}

	if err := sp.Validate(); err != nil {
		return quorum.Spec{}, err
	}

	return sp, nil
}

// simConfigs expands the flags into one simulation config per experiment.
func (c *Config) simConfigs() ([]simulation.Config, error) {
	spec, err := c.spec()
	if err != nil {
		return nil, err
	}

	hasher, err := xorname.ParseHasher(c.Hash)
	if err != nil {
		return nil, err
	}

	rows := defaultExperiments
	if c.Group > 0 {
		rows = []experiment{{group: c.Group, section: c.Section, malicious: c.Malicious}}
	}

	cfgs := make([]simulation.Config, len(rows))
	for i, row := range rows {
		cfgs[i] = simulation.Config{
			GroupSize:   row.group,
			SectionSize: row.section,
			Malicious:   row.malicious,
			Trials:      c.Trials,
			Tries:       c.Tries,
			Policy:      spec,
			Hasher:      hasher,
			Workers:     c.Workers,
		}

		if err := cfgs[i].Validate(); err != nil {
			return nil, fmt.Errorf("experiment %d:\n%w", i, err)
		}
	}

	return cfgs, nil
}
