// Package design builds per-subject assignment tables for cluster-
// randomized trial topologies.
//
// Build is fully deterministic: given the same validated specification it
// produces byte-identical tables, with no randomness anywhere. The table is
// constructed once per simulation run and then shared read-only across all
// replicates and workers.
//
// Layout guarantees (relied upon downstream, covered by tests):
//
//   - Cluster IDs form the contiguous range 0..Clusters-1 with no gaps and
//     no ID reused across arms.
//   - Rows are ordered cluster-major, then period, then subject, so the
//     rows of any cluster are contiguous (the GEE fitter depends on this).
//   - Stepped-wedge treatment indicators are monotone non-decreasing over
//     periods: once a cluster crosses over it never reverts.
//   - The table is long-format: one row per (subject, period) cell, each
//     carrying its own treatment indicator; there is no wide indicator
//     table to reshape.
package design
