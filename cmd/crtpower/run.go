package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trialforge/crtpower/config"
	"github.com/trialforge/crtpower/power"
	"github.com/trialforge/crtpower/progress"
)

// newRunCmd wires the simulation pipeline behind `crtpower run`.
func newRunCmd() *cobra.Command {
	var (
		path    string
		nsim    int
		seed    int64
		workers int
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Estimate power by Monte Carlo simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadScenario(path)
			if err != nil {
				return err
			}
			// Flag overrides beat the scenario file.
			if cmd.Flags().Changed("nsim") {
				cfg.NSim = nsim
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}

			reporter := progress.Reporter(progress.Nop{})
			if !quiet {
				reporter = progress.NewSlog(slog.Default())
			}

			res, err := power.Run(cfg,
				power.WithWorkers(workers),
				power.WithReporter(reporter),
			)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), res.Overview())
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "config", "", "YAML scenario file (required)")
	cmd.Flags().IntVar(&nsim, "nsim", 0, "override replicate count")
	cmd.Flags().Int64Var(&seed, "seed", 0, "override RNG seed")
	cmd.Flags().IntVar(&workers, "workers", 1, "replicate worker count")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress progress logging")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

// loadScenario decodes a YAML scenario on top of the documented defaults.
func loadScenario(path string) (config.Config, error) {
	cfg := config.Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("read scenario: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return config.Config{}, fmt.Errorf("parse scenario: %w", err)
	}
	return cfg, nil
}
