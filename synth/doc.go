// Package synth generates replicate outcome data for cluster-randomized
// trial simulations.
//
// A Synthesizer binds an immutable assignment table (design.Table) to the
// validated outcome parameters; Replicate(r) then produces one freshly
// drawn dataset for Monte Carlo iteration r. Everything except the random
// draws is pure: identical (seed, configuration, r) triples reproduce
// bit-identical datasets, on any platform and regardless of how many other
// replicates ran before or concurrently.
//
// That invariance comes from per-replicate RNG streams: each replicate
// derives its own generator from the base seed and the replicate index via
// a SplitMix64 finalizer, so workers never share or race on RNG state and
// results do not depend on execution order.
//
// Outcome families (canonical links):
//
//	gaussian:      y = mu_arm + b_cluster + N(0, total - between)
//	binary:        y ~ Bernoulli(expit(logit(p_arm) + b_cluster + e_subject))
//	poisson:       y ~ Poisson(exp(log(mu_arm) + b_cluster))
//	neg-binomial:  y ~ Gamma-Poisson mixture with the same linear predictor
//
// Stepped-wedge designs reuse one cluster intercept across all periods of
// a cluster; subject-level noise is re-drawn for every period cell, and an
// optional additive treated-period variance component rides on top of the
// baseline intercept.
package synth
