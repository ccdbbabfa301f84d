// Package crtpower estimates statistical power for cluster-randomized
// controlled trials: by Monte Carlo simulation for the general case, and
// by closed-form solvers for simple Gaussian parallel designs.
//
// 🚀 What is crtpower?
//
//	A deterministic, seed-reproducible simulation engine for trial
//	methodologists choosing sample sizes before running a study:
//		• Designs: parallel two-arm and stepped-wedge crossover schedules
//		• Outcomes: gaussian, binary, poisson, negative-binomial families
//		• Analyses: random-intercept mixed models (glmm) and GEE (gee)
//		• Aggregation: empirical power with a Wald confidence interval,
//		  ICC diagnostics, per-arm/period means, crossover matrices
//		• Closed forms: design-effect power and sample-size root-finding
//
// ✨ Why choose crtpower?
//
//   - Reproducible – one seed, bit-identical replicate data, any worker count
//   - Strict contracts – every input validated up front with named-field errors
//   - Observable – progress hooks and a slog reporter, never control flow
//   - Extensible – bring your own model fitter via the fit.Model interface
//
// Under the hood, everything is organized into focused subpackages:
//
//	config/   — request validation and normalization (the only entry gate)
//	design/   — deterministic assignment tables and crossover matrices
//	synth/    — per-replicate outcome generation under nested random effects
//	fit/      — the model-fitting contract plus default GLS/GEE engines
//	power/    — the simulation driver and replicate aggregator
//	analytic/ — closed-form Gaussian power and sample-size solvers
//	progress/ — structured progress reporting for long runs
//
// Quick sketch of a stepped-wedge schedule (4 clusters, 2 steps):
//
//	period:   0 1 2
//	cluster 1 · ■ ■
//	cluster 2 · ■ ■
//	cluster 3 · · ■
//	cluster 4 · · ■
//
//	every cluster starts in control (·) and permanently crosses over (■).
//
// Dive into the package docs and example tests for full walkthroughs, or
// run the bundled CLI:
//
//	go run github.com/trialforge/crtpower/cmd/crtpower run --config scenario.yaml
package crtpower
