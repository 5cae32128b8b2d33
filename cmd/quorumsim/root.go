package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"QuorumSim/internal/logger"
	"QuorumSim/internal/metrics"
	"QuorumSim/internal/quorum"
	"QuorumSim/internal/report"
	"QuorumSim/internal/simulation"
)

// newRootCommand builds the quorumsim command tree.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "quorumsim",
		Short:         "Monte Carlo estimate of close group capture in XOR sections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCommand(), newPoliciesCommand())

	return root
}

// newRunCommand builds the experiment runner.
func newRunCommand() *cobra.Command {
	cfg := &Config{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the experiment table or a single custom experiment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExperiments(cmd, cfg)
		},
	}

	cfg.bindFlags(cmd.Flags())

	return cmd
}

// newPoliciesCommand builds the policy listing.
func newPoliciesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "policies",
		Short: "List the quorum policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listPolicies(cmd.OutOrStdout())
		},
	}
}

// runExperiments runs every configured experiment and prints each result as it completes.
func runExperiments(cmd *cobra.Command, cfg *Config) error {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	log := logger.New(cmd.ErrOrStderr(), level)

	cfgs, err := cfg.simConfigs()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()

	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	opts := []simulation.Option{simulation.WithMetrics(m), simulation.WithLogger(log)}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, simulation.WithSeed(cfg.Seed))
	}

	out := cmd.OutOrStdout()
	entries := make([]report.Entry, 0, len(cfgs))

	for _, sc := range cfgs {
		res, err := simulation.Run(sc, opts...)
		if err != nil {
			return fmt.Errorf("run g=%d n=%d m=%d:\n%w", sc.GroupSize, sc.SectionSize, sc.Malicious, err)
		}

		entry := report.NewEntry(sc, res)
		if err := report.Print(out, entry, cfg.TriesMap); err != nil {
			return err
		}

		entries = append(entries, entry)
	}

	if cfg.Report != "" {
		if err := report.Write(cfg.Report, entries); err != nil {
			return err
		}

		log.Info("report written", "path", cfg.Report, "entries", len(entries))
	}

	if cfg.Metrics {
		return printMetrics(out, reg)
	}

	return nil
}

// printMetrics writes every counter series in name order.
func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	snap, err := metrics.Snapshot(g)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s %g\n", k, snap[k]); err != nil {
			return err
		}
	}

	return nil
}

// listPolicies writes one line per policy kind.
func listPolicies(w io.Writer) error {
	for _, k := range quorum.Kinds() {
		ages := ""
		if k.NeedsAges() {
			ages = " (ages)"
		}

		if _, err := fmt.Fprintf(w, "%-9s %s%s\n", k.String(), k.Description(), ages); err != nil {
			return err
		}
	}

	return nil
}
