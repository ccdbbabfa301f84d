// Package main provides the CLI entry point for crtpower, the cluster-
// randomized trial power estimator.
//
// # Basic Usage
//
// Estimate power by simulation from a YAML scenario:
//
//	crtpower run --config scenario.yaml
//	crtpower run --config scenario.yaml --nsim 5000 --workers 8 --seed 42
//
// Solve a Gaussian parallel design in closed form:
//
//	crtpower analytic power --delta 0.5 --sigma2 1 --icc 0.05 --clusters 12 --subjects 30
//	crtpower analytic clusters --target 0.8 --delta 0.5 --sigma2 1 --icc 0.05 --subjects 30
//	crtpower analytic subjects --target 0.8 --delta 0.5 --sigma2 1 --icc 0.05 --clusters 12
//
// A scenario file mirrors config.Config:
//
//	topology: parallel
//	nsim: 1000
//	clusters_arm1: 6
//	clusters_arm2: 6
//	subjects: 30
//	family: gaussian
//	method: glmm
//	mu1: 0.0
//	mu2: 0.5
//	total_var: 1.0
//	between_var: 0.05
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "crtpower",
		Short:         "Power estimation for cluster-randomized trials",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newAnalyticCmd())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
