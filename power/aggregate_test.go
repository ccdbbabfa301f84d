package power_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trialforge/crtpower/fit"
	"github.com/trialforge/crtpower/power"
)

// results builds fit results carrying only the p-values under test.
func results(pvals ...float64) []fit.Result {
	out := make([]fit.Result, len(pvals))
	for i, p := range pvals {
		out[i] = fit.Result{PValue: p}
	}
	return out
}

// TestAggregate_Counts verifies the power estimate is the significant
// fraction with strict inequality at alpha.
func TestAggregate_Counts(t *testing.T) {
	est, err := power.Aggregate(results(0.01, 0.04, 0.05, 0.2), 0.05)
	require.NoError(t, err)
	// 0.05 is NOT significant at alpha=0.05: strict inequality.
	require.Equal(t, 0.5, est.Power)
}

// TestAggregate_OrderIndependent verifies the multiset property: any
// permutation of the same results yields the identical estimate and
// interval.
func TestAggregate_OrderIndependent(t *testing.T) {
	a, err := power.Aggregate(results(0.001, 0.3, 0.02, 0.7, 0.04), 0.05)
	require.NoError(t, err)
	b, err := power.Aggregate(results(0.7, 0.04, 0.001, 0.02, 0.3), 0.05)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

// TestAggregate_Empty verifies the zero-trial guard.
func TestAggregate_Empty(t *testing.T) {
	_, err := power.Aggregate(nil, 0.05)
	require.ErrorIs(t, err, power.ErrNoCompletedReplicates)
}

// TestWald_Interval checks the binomial Wald interval: symmetric around
// the estimate, wider at smaller alpha, and contained width.
func TestWald_Interval(t *testing.T) {
	est := power.Wald(80, 100, 0.05)
	require.Equal(t, 0.8, est.Power)
	require.InDelta(t, est.Power-est.Lower, est.Upper-est.Power, 1e-12)

	// z_{0.975} * sqrt(0.8*0.2/100) ~ 0.0784.
	require.InDelta(t, 0.8-0.0784, est.Lower, 1e-3)
	require.InDelta(t, 0.8+0.0784, est.Upper, 1e-3)

	// A stricter level widens the interval.
	strict := power.Wald(80, 100, 0.01)
	require.Less(t, strict.Lower, est.Lower)
	require.Greater(t, strict.Upper, est.Upper)
}

// TestWald_Degenerate verifies that estimates of exactly 0 and 1 produce a
// zero-width interval rather than an error.
func TestWald_Degenerate(t *testing.T) {
	for _, sig := range []int{0, 100} {
		est := power.Wald(sig, 100, 0.05)
		require.Equal(t, float64(sig)/100, est.Power)
		require.Equal(t, est.Power, est.Lower)
		require.Equal(t, est.Power, est.Upper)
		require.False(t, math.IsNaN(est.Lower))
	}
}
