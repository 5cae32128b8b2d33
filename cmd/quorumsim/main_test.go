package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"QuorumSim/internal/quorum"
	"QuorumSim/internal/report"
	"QuorumSim/internal/section"
	"QuorumSim/internal/simulation"
	"QuorumSim/internal/xorname"
)

// execute runs the command tree with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCommand()

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

// defaultConfig returns a Config populated with flag defaults.
func defaultConfig(t *testing.T, args ...string) *Config {
	t.Helper()

	cfg := &Config{}
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	cfg.bindFlags(fs)
	require.NoError(t, fs.Parse(args))

	return cfg
}

// TestConfig_Defaults tests the default sweep expands to the experiment table.
func TestConfig_Defaults(t *testing.T) {
	cfgs, err := defaultConfig(t).simConfigs()
	require.NoError(t, err)
	require.Len(t, cfgs, len(defaultExperiments))

	for i, c := range cfgs {
		row := defaultExperiments[i]
		require.Equal(t, row.group, c.GroupSize)
		require.Equal(t, row.section, c.SectionSize)
		require.Equal(t, row.malicious, c.Malicious)
		require.Equal(t, defaultTrials, c.Trials)
		require.Equal(t, defaultTries, c.Tries)
		require.Equal(t, quorum.KindBasic, c.Policy.Kind)
		require.Equal(t, xorname.SHA3, c.Hasher)
	}
}

// TestConfig_CustomRow tests --group selects a single experiment.
func TestConfig_CustomRow(t *testing.T) {
	cfg := defaultConfig(t,
		"--group", "8", "--section", "20", "--malicious", "5",
		"--policy", "age-rank", "--ages", "churn", "--hash", "blake3",
		"--quorum-boundary", "inclusive", "--stall-boundary", "strict",
	)

	cfgs, err := cfg.simConfigs()
	require.NoError(t, err)
	require.Len(t, cfgs, 1)

	c := cfgs[0]
	require.Equal(t, 8, c.GroupSize)
	require.Equal(t, 20, c.SectionSize)
	require.Equal(t, 5, c.Malicious)
	require.Equal(t, quorum.KindAgeRank, c.Policy.Kind)
	require.Equal(t, section.ChurnAges{}, c.Policy.Ages)
	require.Equal(t, quorum.Inclusive, c.Policy.Thresholds.Quorum)
	require.Equal(t, quorum.Strict, c.Policy.Thresholds.Stall)
	require.Equal(t, xorname.BLAKE3, c.Hasher)
}

// TestConfig_Errors tests each flag parser surfaces its error.
func TestConfig_Errors(t *testing.T) {
	tests := []struct {
		args []string
		want error
	}{
		{[]string{"--policy", "nope"}, quorum.ErrUnknownPolicy},
		{[]string{"--ages", "nope"}, section.ErrUnknownAgeSampler},
		{[]string{"--ages", "churn"}, quorum.ErrAgesIgnored},
		{[]string{"--quorum-boundary", "nope"}, quorum.ErrUnknownBoundary},
		{[]string{"--stall-boundary", "nope"}, quorum.ErrUnknownBoundary},
		{[]string{"--hash", "nope"}, xorname.ErrUnknownHasher},
		{[]string{"--tries", "0"}, simulation.ErrInvalidConfig},
		{[]string{"--group", "10", "--section", "5", "--malicious", "2"}, simulation.ErrInvalidConfig},
	}

	for _, tt := range tests {
		_, err := defaultConfig(t, tt.args...).simConfigs()
		if !errors.Is(err, tt.want) {
			t.Fatalf("%v: expected %v, got %v", tt.args, tt.want, err)
		}
	}
}

// TestRunCommand tests a small seeded run prints, reports and dumps metrics.
func TestRunCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json.zst")

	out, err := execute(t, "run",
		"--group", "5", "--section", "12", "--malicious", "3",
		"--trials", "40", "--tries", "20", "--workers", "2", "--seed", "7",
		"--tries-map", "--metrics", "--report", path,
	)
	require.NoError(t, err)
	require.Contains(t, out, "Group size: 5, section size: 12, quorum: 3")
	require.Contains(t, out, `quorumsim_trials_total{policy=basic} 40`)

	entries, err := report.Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 40, entries[0].Result.Trials)
}

// TestRunCommand_Seeded tests the same seed reproduces the same output.
func TestRunCommand_Seeded(t *testing.T) {
	args := []string{"run",
		"--group", "5", "--section", "12", "--malicious", "3",
		"--trials", "30", "--tries", "10", "--workers", "3", "--seed", "99", "--tries-map",
	}

	first, err := execute(t, args...)
	require.NoError(t, err)

	second, err := execute(t, args...)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

// TestRunCommand_Invalid tests a bad flag value fails before running.
func TestRunCommand_Invalid(t *testing.T) {
	_, err := execute(t, "run", "--policy", "nope")
	require.ErrorIs(t, err, quorum.ErrUnknownPolicy)

	_, err = execute(t, "run", "--log-level", "loud")
	require.Error(t, err)
}

// TestPoliciesCommand tests every kind is listed.
func TestPoliciesCommand(t *testing.T) {
	out, err := execute(t, "policies")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(quorum.Kinds()))

	for i, k := range quorum.Kinds() {
		require.True(t, strings.HasPrefix(lines[i], k.String()), lines[i])
	}
}
