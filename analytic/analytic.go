// Package analytic: the design-effect formula and its inversions.
package analytic

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Sentinel errors.
var (
	// ErrBadInput is returned for parameters outside their domain
	// (non-positive variance or counts, icc outside [0,1), alpha or
	// target outside (0,1), zero effect for the solvers).
	ErrBadInput = errors.New("analytic: parameter out of range")

	// ErrUnattainable is returned when no parameter value within the
	// search bound reaches the target power.
	ErrUnattainable = errors.New("analytic: target power unattainable")
)

// maxSolve bounds the bisection search for both solvers.
const maxSolve = 1 << 24

// bisectIters drives the interval below one unit so the integer ceiling
// is exact.
const bisectIters = 64

// Power evaluates the design-effect power formula.
//
// Complexity: O(1).
func Power(delta, sigma2, icc float64, clustersPerArm, subjects int, alpha float64) (float64, error) {
	if err := checkCommon(sigma2, icc, alpha); err != nil {
		return 0, err
	}
	if clustersPerArm < 1 {
		return 0, fmt.Errorf("clustersPerArm=%d: %w", clustersPerArm, ErrBadInput)
	}
	if subjects < 1 {
		return 0, fmt.Errorf("subjects=%d: %w", subjects, ErrBadInput)
	}
	return powerAt(delta, sigma2, icc, float64(clustersPerArm), float64(subjects), alpha), nil
}

// ClustersPerArm returns the smallest per-arm cluster count reaching the
// target power.
//
// Complexity: O(log maxSolve) formula evaluations.
func ClustersPerArm(target, delta, sigma2, icc float64, subjects int, alpha float64) (int, error) {
	if err := checkSolve(target, delta, sigma2, icc, alpha); err != nil {
		return 0, err
	}
	if subjects < 1 {
		return 0, fmt.Errorf("subjects=%d: %w", subjects, ErrBadInput)
	}
	f := func(n float64) float64 {
		return powerAt(delta, sigma2, icc, n, float64(subjects), alpha)
	}
	return solveMonotone(f, target)
}

// SubjectsPerCluster returns the smallest per-cluster subject count
// reaching the target power. With icc > 0 the attainable power is capped;
// an out-of-reach target yields ErrUnattainable.
//
// Complexity: O(log maxSolve) formula evaluations.
func SubjectsPerCluster(target, delta, sigma2, icc float64, clustersPerArm int, alpha float64) (int, error) {
	if err := checkSolve(target, delta, sigma2, icc, alpha); err != nil {
		return 0, err
	}
	if clustersPerArm < 1 {
		return 0, fmt.Errorf("clustersPerArm=%d: %w", clustersPerArm, ErrBadInput)
	}
	f := func(m float64) float64 {
		return powerAt(delta, sigma2, icc, float64(clustersPerArm), m, alpha)
	}
	return solveMonotone(f, target)
}

// powerAt is the raw formula over continuous n, m.
func powerAt(delta, sigma2, icc, n, m, alpha float64) float64 {
	de := 1 + (m-1)*icc
	se := math.Sqrt(2 * sigma2 * de / (n * m))
	z := distuv.UnitNormal.Quantile(1 - alpha/2)
	return distuv.UnitNormal.CDF(math.Abs(delta)/se - z)
}

// solveMonotone bisects a non-decreasing power curve for the smallest
// integer argument with f(x) >= target.
func solveMonotone(f func(x float64) float64, target float64) (int, error) {
	lo, hi := 1.0, float64(maxSolve)
	if f(lo) >= target {
		return 1, nil
	}
	if f(hi) < target {
		return 0, ErrUnattainable
	}
	for i := 0; i < bisectIters; i++ {
		mid := (lo + hi) / 2
		if f(mid) >= target {
			hi = mid
		} else {
			lo = mid
		}
	}
	x := int(math.Ceil(hi))
	// Guard against the ceiling landing a hair short of the target.
	if f(float64(x)) < target {
		x++
	}
	return x, nil
}

func checkCommon(sigma2, icc, alpha float64) error {
	if sigma2 <= 0 {
		return fmt.Errorf("sigma2=%v: %w", sigma2, ErrBadInput)
	}
	if icc < 0 || icc >= 1 {
		return fmt.Errorf("icc=%v: %w", icc, ErrBadInput)
	}
	if alpha <= 0 || alpha >= 1 {
		return fmt.Errorf("alpha=%v: %w", alpha, ErrBadInput)
	}
	return nil
}

func checkSolve(target, delta, sigma2, icc, alpha float64) error {
	if err := checkCommon(sigma2, icc, alpha); err != nil {
		return err
	}
	if target <= 0 || target >= 1 {
		return fmt.Errorf("target=%v: %w", target, ErrBadInput)
	}
	if delta == 0 {
		return fmt.Errorf("delta=%v: %w", delta, ErrBadInput)
	}
	return nil
}
