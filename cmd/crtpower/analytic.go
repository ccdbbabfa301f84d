package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trialforge/crtpower/analytic"
)

// analyticArgs collects the design-effect formula inputs shared by all
// three solvers.
type analyticArgs struct {
	delta    float64
	sigma2   float64
	icc      float64
	alpha    float64
	target   float64
	clusters int
	subjects int
}

// newAnalyticCmd exposes the closed-form Gaussian solvers.
func newAnalyticCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytic",
		Short: "Closed-form power and sample-size for Gaussian parallel designs",
	}
	cmd.AddCommand(newAnalyticPowerCmd(), newAnalyticClustersCmd(), newAnalyticSubjectsCmd())
	return cmd
}

func newAnalyticPowerCmd() *cobra.Command {
	var a analyticArgs
	cmd := &cobra.Command{
		Use:   "power",
		Short: "Evaluate power for a given design",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := analytic.Power(a.delta, a.sigma2, a.icc, a.clusters, a.subjects, a.alpha)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "power: %.4f\n", p)
			return nil
		},
	}
	addFormulaFlags(cmd, &a)
	cmd.Flags().IntVar(&a.clusters, "clusters", 0, "clusters per arm")
	cmd.Flags().IntVar(&a.subjects, "subjects", 0, "subjects per cluster")
	markRequired(cmd, "delta", "sigma2", "clusters", "subjects")
	return cmd
}

func newAnalyticClustersCmd() *cobra.Command {
	var a analyticArgs
	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "Smallest per-arm cluster count reaching a target power",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := analytic.ClustersPerArm(a.target, a.delta, a.sigma2, a.icc, a.subjects, a.alpha)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "clusters per arm: %d\n", n)
			return nil
		},
	}
	addFormulaFlags(cmd, &a)
	cmd.Flags().Float64Var(&a.target, "target", 0.8, "target power")
	cmd.Flags().IntVar(&a.subjects, "subjects", 0, "subjects per cluster")
	markRequired(cmd, "delta", "sigma2", "subjects")
	return cmd
}

func newAnalyticSubjectsCmd() *cobra.Command {
	var a analyticArgs
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "Smallest per-cluster subject count reaching a target power",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := analytic.SubjectsPerCluster(a.target, a.delta, a.sigma2, a.icc, a.clusters, a.alpha)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subjects per cluster: %d\n", m)
			return nil
		},
	}
	addFormulaFlags(cmd, &a)
	cmd.Flags().Float64Var(&a.target, "target", 0.8, "target power")
	cmd.Flags().IntVar(&a.clusters, "clusters", 0, "clusters per arm")
	markRequired(cmd, "delta", "sigma2", "clusters")
	return cmd
}

func addFormulaFlags(cmd *cobra.Command, a *analyticArgs) {
	cmd.Flags().Float64Var(&a.delta, "delta", 0, "difference in means")
	cmd.Flags().Float64Var(&a.sigma2, "sigma2", 0, "total outcome variance")
	cmd.Flags().Float64Var(&a.icc, "icc", 0, "intraclass correlation")
	cmd.Flags().Float64Var(&a.alpha, "alpha", 0.05, "two-sided significance level")
}

func markRequired(cmd *cobra.Command, names ...string) {
	for _, n := range names {
		_ = cmd.MarkFlagRequired(n)
	}
}
