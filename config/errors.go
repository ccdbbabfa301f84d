// Package config: sentinel error set.
//
// This file defines ONLY package-level sentinel errors used across the
// config package. Validate MUST return these sentinels (wrapped with field
// context via %w) and tests MUST check them via errors.Is. Validation never
// panics on user input.
//
// Error policy:
//   - Sentinels carry the "config:" prefix for grep-friendly logs.
//   - Field name and offending value are attached at the return site with
//     fmt.Errorf("%s=%v: %w", field, value, ErrX); callers still match the
//     sentinel with errors.Is.
package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a required field was not supplied.
	ErrMissingField = errors.New("config: required field missing")

	// ErrNotPositive is returned when an integral count (nsim, clusters,
	// subjects, steps) is below 1.
	ErrNotPositive = errors.New("config: count must be at least 1")

	// ErrOutOfRange is returned when a numeric field violates its domain
	// (alpha outside (0,1), negative variance, probability outside (0,1),
	// non-positive count mean, non-positive dispersion).
	ErrOutOfRange = errors.New("config: value out of range")

	// ErrBadEnum is returned when topology, family or method is outside its
	// fixed enumeration.
	ErrBadEnum = errors.New("config: value outside allowed enumeration")

	// ErrClusterSizes is returned when the cluster-size vector length does
	// not equal the total cluster count.
	ErrClusterSizes = errors.New("config: cluster size vector length mismatch")

	// ErrTopologyField is returned when a field is supplied that does not
	// apply to the requested topology (e.g. steps on a parallel design).
	ErrTopologyField = errors.New("config: field not applicable to topology")

	// ErrEffectUnderspecified is returned when fewer than two of
	// (mu1, mu2, effect) were supplied.
	ErrEffectUnderspecified = errors.New("config: need at least two of mu1, mu2, effect")

	// ErrEffectMismatch is returned when all three effect fields are
	// supplied but effect != |mu1 - mu2| within tolerance.
	ErrEffectMismatch = errors.New("config: effect does not equal |mu1 - mu2|")

	// ErrVarianceOrder is returned for gaussian outcomes when the
	// between-cluster variance exceeds the total variance (the residual
	// variance total-between would be negative).
	ErrVarianceOrder = errors.New("config: between-cluster variance exceeds total variance")

	// ErrCrossoverSchedule is returned when a stepped-wedge crossover
	// vector is structurally inconsistent: negative entries, or a vector
	// that neither sums to the total cluster count (per-step form) nor is
	// non-decreasing (cumulative form).
	ErrCrossoverSchedule = errors.New("config: crossover schedule inconsistent with cluster count")
)

// fieldErr attaches the offending field name and value to a sentinel.
// The sentinel stays matchable via errors.Is.
func fieldErr(field string, value interface{}, err error) error {
	return fmt.Errorf("%s=%v: %w", field, value, err)
}
