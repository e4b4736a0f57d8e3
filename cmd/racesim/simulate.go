package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/metrics"
	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/simulation"
)

type simulateOptions struct {
	competitors []string
	year        int
	trackType   string
	simulations int
	seed        int64
	pretty      bool
	dumpMetrics bool
}

func newSimulateCmd(a *app) *cobra.Command {
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a race and print finishing distributions as JSON",
		Example: `  racesim simulate --competitors "Kyle Larson,Denny Hamlin" --year 2024 --track-type Intermediate
  racesim simulate --competitors A,B,C --year 2024 --track-type road --simulations 20000 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, a, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&opts.competitors, "competitors", nil, "Competitor IDs (comma separated or repeated)")
	flags.IntVar(&opts.year, "year", 0, "Target season")
	flags.StringVar(&opts.trackType, "track-type", "", "Track type or category")
	flags.IntVar(&opts.simulations, "simulations", 0, "Number of simulated races (default from configuration)")
	flags.Int64Var(&opts.seed, "seed", 0, "Master seed; 0 uses the configured seed or a random one")
	flags.BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")
	flags.BoolVar(&opts.dumpMetrics, "metrics", false, "Write Prometheus metrics to stderr after the run")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("track-type")

	return cmd
}

func runSimulate(cmd *cobra.Command, a *app, opts *simulateOptions) error {
	aggregator, err := a.aggregator()
	if err != nil {
		return err
	}

	req := simulation.Request{
		Competitors:    opts.competitors,
		SeasonYear:     opts.year,
		TrackType:      opts.trackType,
		NumSimulations: opts.simulations,
		Seed:           opts.seed,
	}
	if !cmd.Flags().Changed("simulations") {
		req.NumSimulations = a.cfg.Simulation.DefaultSimulations
	}
	if req.Seed == 0 {
		req.Seed = a.cfg.Simulation.Seed
	}

	resp, err := aggregator.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	if opts.pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(resp); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	if opts.dumpMetrics {
		return metrics.WriteText(cmd.ErrOrStderr())
	}
	return nil
}
