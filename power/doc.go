// Package power orchestrates Monte Carlo power estimation for
// cluster-randomized trials.
//
// Run is the canonical entry point. It walks the pipeline
//
//	validate -> build design -> iterate (synthesize, fit) -> aggregate
//
// with strict staging: a configuration error is always fatal and surfaced
// before any replicate runs; a per-replicate fit failure is recoverable —
// the replicate is dropped from the aggregate (the denominator counts only
// completed replicates, an explicit policy) and iteration continues. Only
// a run in which every replicate fails refuses to report a power estimate.
//
// Replicates are independent, so Run optionally executes them on a worker
// pool (WithWorkers). Results are invariant to the worker count: every
// replicate draws from its own RNG stream derived from (seed, index), the
// assignment table is shared read-only, and aggregation reduces outcomes
// in replicate-index order.
//
// Progress is observable between iterations through a progress.Reporter
// and per-replicate hooks; observation never alters control flow or the
// estimate.
package power
