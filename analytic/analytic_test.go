package analytic_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trialforge/crtpower/analytic"
)

// TestPower_KnownValues checks the formula against hand-computed values.
func TestPower_KnownValues(t *testing.T) {
	// No clustering penalty: icc = 0, DE = 1.
	// SE = sqrt(2/(12*30)) ~ 0.0745; z = 0.5/0.0745 ~ 6.71 => power ~ 1.
	p, err := analytic.Power(0.5, 1, 0, 12, 30, 0.05)
	require.NoError(t, err)
	require.Greater(t, p, 0.99)

	// Classic textbook point: per-group n with delta = sigma, 2 clusters
	// of 1 subject reduce to the two-sample z test with n=2.
	// SE = sqrt(2*1*1/2) = 1; power = Phi(1 - 1.96) ~ 0.168.
	p, err = analytic.Power(1, 1, 0, 2, 1, 0.05)
	require.NoError(t, err)
	require.InDelta(t, 0.168, p, 0.01)

	// The sign of delta is irrelevant.
	neg, err := analytic.Power(-1, 1, 0, 2, 1, 0.05)
	require.NoError(t, err)
	require.Equal(t, p, neg)
}

// TestPower_ICCPenalty verifies the design effect strictly reduces power
// as icc grows.
func TestPower_ICCPenalty(t *testing.T) {
	prev := 2.0
	for _, icc := range []float64{0, 0.02, 0.1, 0.3} {
		p, err := analytic.Power(0.4, 1, icc, 10, 30, 0.05)
		require.NoError(t, err)
		require.Less(t, p, prev, "power did not decrease at icc=%v", icc)
		prev = p
	}
}

// TestClustersPerArm_Inversion verifies the solver returns the smallest
// count meeting the target: the result reaches it, one fewer does not.
func TestClustersPerArm_Inversion(t *testing.T) {
	const (
		target, delta, sigma2, icc, alpha = 0.8, 0.3, 1, 0.05, 0.05
		subjects                          = 25
	)
	n, err := analytic.ClustersPerArm(target, delta, sigma2, icc, subjects, alpha)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, 1)

	at, err := analytic.Power(delta, sigma2, icc, n, subjects, alpha)
	require.NoError(t, err)
	require.GreaterOrEqual(t, at, target)

	if n > 1 {
		below, err := analytic.Power(delta, sigma2, icc, n-1, subjects, alpha)
		require.NoError(t, err)
		require.Less(t, below, target)
	}
}

// TestSubjectsPerCluster_Inversion verifies minimality of the subject
// solver on a feasible problem.
func TestSubjectsPerCluster_Inversion(t *testing.T) {
	const (
		target, delta, sigma2, icc, alpha = 0.8, 0.4, 1, 0.01, 0.05
		clusters                          = 15
	)
	m, err := analytic.SubjectsPerCluster(target, delta, sigma2, icc, clusters, alpha)
	require.NoError(t, err)

	at, err := analytic.Power(delta, sigma2, icc, clusters, m, alpha)
	require.NoError(t, err)
	require.GreaterOrEqual(t, at, target)

	if m > 1 {
		below, err := analytic.Power(delta, sigma2, icc, clusters, m-1, alpha)
		require.NoError(t, err)
		require.Less(t, below, target)
	}
}

// TestSubjectsPerCluster_Unattainable verifies the icc power cap: with few
// clusters and a real icc, adding subjects cannot buy the target, and the
// solver says so instead of searching forever.
func TestSubjectsPerCluster_Unattainable(t *testing.T) {
	// As m -> inf, SE -> sqrt(2*sigma2*icc/n); with n=4, icc=0.1 the
	// asymptotic z is 0.3/sqrt(0.05) ~ 1.34, far below what 0.9 power
	// needs.
	_, err := analytic.SubjectsPerCluster(0.9, 0.3, 1, 0.1, 4, 0.05)
	require.ErrorIs(t, err, analytic.ErrUnattainable)
}

// TestAnalytic_BadInput sweeps the domain guards across all three entry
// points.
func TestAnalytic_BadInput(t *testing.T) {
	// Non-positive variance.
	_, err := analytic.Power(0.5, 0, 0.05, 10, 30, 0.05)
	require.ErrorIs(t, err, analytic.ErrBadInput)

	// icc at 1 is outside [0,1).
	_, err = analytic.Power(0.5, 1, 1, 10, 30, 0.05)
	require.ErrorIs(t, err, analytic.ErrBadInput)

	// alpha on the boundary.
	_, err = analytic.Power(0.5, 1, 0.05, 10, 30, 1)
	require.ErrorIs(t, err, analytic.ErrBadInput)

	// Zero counts.
	_, err = analytic.Power(0.5, 1, 0.05, 0, 30, 0.05)
	require.ErrorIs(t, err, analytic.ErrBadInput)

	// Solvers additionally reject a zero effect and an out-of-range target.
	_, err = analytic.ClustersPerArm(0.8, 0, 1, 0.05, 30, 0.05)
	require.ErrorIs(t, err, analytic.ErrBadInput)
	_, err = analytic.SubjectsPerCluster(1, 0.5, 1, 0.05, 10, 0.05)
	require.ErrorIs(t, err, analytic.ErrBadInput)
}
