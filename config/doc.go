// Package config validates and normalizes simulation requests for
// cluster-randomized trial power estimation.
//
// A Config is the raw, user-facing request: trial topology, cluster and
// subject counts, outcome family, effect sizes, variance components,
// analysis method and Monte Carlo controls. Validate is the single entry
// gate: it either returns a fully Normalized request (scalars broadcast to
// vectors, derived fields computed, defaults applied) or fails with a
// sentinel error wrapped with the offending field name and value.
//
// Validation happens in stages, cheapest first:
//
//  1. defaults      — zero-valued optional scalars receive documented defaults
//  2. struct tags   — enumeration and range checks (go-playground/validator)
//  3. design shape  — cluster counts, size vectors, crossover schedules
//  4. effect triple — at least two of (mu1, mu2, effect), all three consistent
//  5. variances     — non-negativity, family-specific domain checks
//
// No stage has side effects; Validate never mutates its receiver. All
// errors are detectable with errors.Is against the package sentinels.
package config
