package synth_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trialforge/crtpower/config"
	"github.com/trialforge/crtpower/design"
	"github.com/trialforge/crtpower/synth"
)

// fp is a float64 pointer literal helper.
func fp(v float64) *float64 { return &v }

// buildFixture validates the request and constructs its assignment table,
// failing the test on any pipeline error.
func buildFixture(t *testing.T, c config.Config) (*design.Table, config.Normalized) {
	t.Helper()
	n, err := c.Validate()
	require.NoError(t, err)
	tab, err := design.Build(design.SpecFromConfig(n))
	require.NoError(t, err)
	return tab, n
}

// gaussianParallel is the shared gaussian fixture request.
func gaussianParallel(seed int64) config.Config {
	return config.Config{
		Topology:     config.Parallel,
		NSim:         10,
		Seed:         seed,
		ClustersArm1: 4,
		ClustersArm2: 4,
		Subjects:     10,
		Mu1:          fp(0),
		Mu2:          fp(0.5),
		TotalVar:     1,
		BetweenVar:   0.1,
	}
}

// TestReplicate_Deterministic verifies the central reproducibility
// contract: identical (seed, configuration, replicate index) yields
// bit-identical outcome vectors across independent synthesizers.
func TestReplicate_Deterministic(t *testing.T) {
	tab, n := buildFixture(t, gaussianParallel(42))

	s1, err := synth.New(tab, n)
	require.NoError(t, err)
	s2, err := synth.New(tab, n)
	require.NoError(t, err)

	for r := 0; r < 5; r++ {
		a := s1.Replicate(r)
		b := s2.Replicate(r)
		require.Equal(t, a.Y, b.Y, "replicate %d not reproducible", r)
		require.Equal(t, r, a.Replicate)
	}
}

// TestReplicate_StreamsIndependent verifies that distinct replicate
// indices and distinct seeds produce different data.
func TestReplicate_StreamsIndependent(t *testing.T) {
	tab, n := buildFixture(t, gaussianParallel(42))
	s, err := synth.New(tab, n)
	require.NoError(t, err)

	require.NotEqual(t, s.Replicate(0).Y, s.Replicate(1).Y)

	tab2, n2 := buildFixture(t, gaussianParallel(43))
	s2, err := synth.New(tab2, n2)
	require.NoError(t, err)
	require.NotEqual(t, s.Replicate(0).Y, s2.Replicate(0).Y)
}

// TestReplicate_ZeroSeedPolicy verifies that seed 0 selects the fixed
// default stream, so unseeded runs are still reproducible.
func TestReplicate_ZeroSeedPolicy(t *testing.T) {
	tab, n := buildFixture(t, gaussianParallel(0))
	s1, err := synth.New(tab, n)
	require.NoError(t, err)
	s2, err := synth.New(tab, n)
	require.NoError(t, err)
	require.Equal(t, s1.Replicate(0).Y, s2.Replicate(0).Y)
}

// TestReplicate_CallOrderIrrelevant verifies that a replicate's data
// depends only on its index, not on which replicates were drawn before it.
// This is what makes results invariant to worker scheduling.
func TestReplicate_CallOrderIrrelevant(t *testing.T) {
	tab, n := buildFixture(t, gaussianParallel(7))
	s1, err := synth.New(tab, n)
	require.NoError(t, err)
	s2, err := synth.New(tab, n)
	require.NoError(t, err)

	// Forward on one synthesizer, backward on the other.
	forward := make([][]float64, 4)
	for r := 0; r < 4; r++ {
		forward[r] = s1.Replicate(r).Y
	}
	for r := 3; r >= 0; r-- {
		require.Equal(t, forward[r], s2.Replicate(r).Y)
	}
}

// TestReplicate_GaussianMoments checks the gaussian generator's sample
// moments on a large single replicate: mean near the arm levels, total
// variance near the requested one.
func TestReplicate_GaussianMoments(t *testing.T) {
	c := gaussianParallel(11)
	c.ClustersArm1 = 200
	c.ClustersArm2 = 200
	c.Subjects = 50
	tab, n := buildFixture(t, c)
	s, err := synth.New(tab, n)
	require.NoError(t, err)

	ds := s.Replicate(0)
	var sum0, sum1 float64
	var n0, n1 int
	for i, row := range tab.Rows {
		if row.Treat == 1 {
			sum1 += ds.Y[i]
			n1++
		} else {
			sum0 += ds.Y[i]
			n0++
		}
	}
	require.InDelta(t, 0.0, sum0/float64(n0), 0.1)
	require.InDelta(t, 0.5, sum1/float64(n1), 0.1)
}

// TestReplicate_BinaryDomain verifies binary outcomes are exactly 0/1 with
// a frequency near the arm probabilities.
func TestReplicate_BinaryDomain(t *testing.T) {
	c := gaussianParallel(5)
	c.Family = config.Binary
	c.TotalVar = 0
	c.BetweenVar = 0.05
	c.Mu1 = fp(0.2)
	c.Mu2 = fp(0.35)
	c.ClustersArm1 = 100
	c.ClustersArm2 = 100
	c.Subjects = 40
	tab, n := buildFixture(t, c)
	s, err := synth.New(tab, n)
	require.NoError(t, err)

	ds := s.Replicate(0)
	ones, count := 0, 0
	for i, row := range tab.Rows {
		v := ds.Y[i]
		require.True(t, v == 0 || v == 1, "binary outcome %v at row %d", v, i)
		if row.Treat == 0 {
			count++
			if v == 1 {
				ones++
			}
		}
	}
	require.InDelta(t, 0.2, float64(ones)/float64(count), 0.03)
}

// TestReplicate_CountDomain verifies poisson and neg-binomial outcomes are
// non-negative integers.
func TestReplicate_CountDomain(t *testing.T) {
	for _, fam := range []config.Family{config.Poisson, config.NegBinomial} {
		c := gaussianParallel(9)
		c.Family = fam
		c.TotalVar = 0
		c.BetweenVar = 0.05
		c.Mu1 = fp(2)
		c.Mu2 = fp(3)
		c.Dispersion = 1.5
		tab, n := buildFixture(t, c)
		s, err := synth.New(tab, n)
		require.NoError(t, err)

		ds := s.Replicate(0)
		for i, v := range ds.Y {
			require.GreaterOrEqual(t, v, 0.0)
			require.Equal(t, math.Trunc(v), v, "%s outcome %v at row %d not integral", fam, v, i)
		}
	}
}

// TestReplicate_SteppedWedgeSharedIntercept verifies that with zero
// residual variance a cluster's control-period outcomes are constant
// across periods: the same baseline intercept applies to every period.
func TestReplicate_SteppedWedgeSharedIntercept(t *testing.T) {
	c := config.Config{
		Topology:   config.SteppedWedge,
		NSim:       1,
		Seed:       3,
		Clusters:   6,
		Subjects:   2,
		Steps:      3,
		Mu1:        fp(1),
		Mu2:        fp(2),
		TotalVar:   0.2,
		BetweenVar: 0.2, // residual = 0: outcome is mu + intercept exactly
	}
	tab, n := buildFixture(t, c)
	s, err := synth.New(tab, n)
	require.NoError(t, err)

	ds := s.Replicate(0)
	// For each cluster, every control cell must equal mu1 + intercept.
	control := make(map[int]float64)
	for i, row := range tab.Rows {
		if row.Treat == 1 {
			continue
		}
		if prev, ok := control[row.Cluster]; ok {
			require.Equal(t, prev, ds.Y[i], "cluster %d control outcome drifted", row.Cluster)
		} else {
			control[row.Cluster] = ds.Y[i]
		}
	}
}

// TestReplicate_BinaryWithinVarPerCell covers the stepped-wedge binary
// latent-noise term: outcomes stay 0/1, generation is deterministic, the
// noise actually enters the linear predictor, and it is re-drawn for every
// period cell rather than reused per subject.
func TestReplicate_BinaryWithinVarPerCell(t *testing.T) {
	base := config.Config{
		Topology:   config.SteppedWedge,
		NSim:       1,
		Seed:       13,
		Clusters:   6,
		Subjects:   4,
		Steps:      3,
		Family:     config.Binary,
		Mu1:        fp(0.3),
		Mu2:        fp(0.3),
		BetweenVar: 0.05,
	}

	// The noise term changes the draw stream: same seed, different data.
	withNoise := base
	withNoise.WithinVar = 1
	tabA, nA := buildFixture(t, base)
	tabB, nB := buildFixture(t, withNoise)
	sA, err := synth.New(tabA, nA)
	require.NoError(t, err)
	sB, err := synth.New(tabB, nB)
	require.NoError(t, err)
	require.NotEqual(t, sA.Replicate(0).Y, sB.Replicate(0).Y)

	// Still Bernoulli outcomes, and still bit-reproducible.
	ds := sB.Replicate(0)
	for i, v := range ds.Y {
		require.True(t, v == 0 || v == 1, "binary outcome %v at row %d", v, i)
	}
	sB2, err := synth.New(tabB, nB)
	require.NoError(t, err)
	require.Equal(t, ds.Y, sB2.Replicate(0).Y)

	// Per-cell redraw: with the latent variance dominating the predictor,
	// each cell is close to an independent coin flip. A noise term reused
	// across a subject's periods would instead push whole subjects toward
	// constant outcomes; here at least one subject must mix 0s and 1s.
	loud := base
	loud.WithinVar = 10000
	tabC, nC := buildFixture(t, loud)
	sC, err := synth.New(tabC, nC)
	require.NoError(t, err)
	dsC := sC.Replicate(0)

	first := make(map[int]float64)
	mixed := false
	for i, row := range tabC.Rows {
		if prev, ok := first[row.Subject]; ok {
			if prev != dsC.Y[i] {
				mixed = true
				break
			}
		} else {
			first[row.Subject] = dsC.Y[i]
		}
	}
	require.True(t, mixed, "no subject varies across periods; latent noise looks reused")
}

// TestNew_BadInput covers the construction guards.
func TestNew_BadInput(t *testing.T) {
	_, n := buildFixture(t, gaussianParallel(1))

	_, err := synth.New(nil, n)
	require.ErrorIs(t, err, synth.ErrNilTable)

	tab, _ := buildFixture(t, gaussianParallel(1))
	n.Family = "weibull"
	_, err = synth.New(tab, n)
	require.ErrorIs(t, err, synth.ErrUnknownFamily)
}
