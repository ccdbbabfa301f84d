// Package synth: the replicate data synthesizer.
package synth

import (
	"errors"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/trialforge/crtpower/config"
	"github.com/trialforge/crtpower/design"
)

// Sentinel errors for synthesizer construction.
var (
	// ErrNilTable is returned when no assignment table is supplied.
	ErrNilTable = errors.New("synth: assignment table is nil")

	// ErrUnknownFamily is returned for an outcome family outside the
	// supported enumeration.
	ErrUnknownFamily = errors.New("synth: unknown outcome family")
)

// Dataset is one replicate: the shared assignment table joined with a
// freshly drawn outcome column. Y[i] belongs to Table.Rows[i].
type Dataset struct {
	Table     *design.Table
	Y         []float64
	Replicate int
}

// Synthesizer binds an immutable assignment table to validated outcome
// parameters. It is safe for concurrent use: Replicate derives a private
// RNG stream per call and reads only immutable state.
type Synthesizer struct {
	tab *design.Table
	n   config.Normalized
}

// New builds a Synthesizer. The table is shared, not copied; callers must
// treat it as read-only (Build already guarantees immutability).
func New(tab *design.Table, n config.Normalized) (*Synthesizer, error) {
	if tab == nil {
		return nil, ErrNilTable
	}
	switch n.Family {
	case config.Gaussian, config.Binary, config.Poisson, config.NegBinomial:
	default:
		return nil, ErrUnknownFamily
	}
	return &Synthesizer{tab: tab, n: n}, nil
}

// Replicate draws one dataset for Monte Carlo iteration r.
//
// Draw order is fixed (cluster intercepts in cluster order, then outcome
// cells in table-row order), so output is bit-identical for identical
// (seed, configuration, r) regardless of what else ran.
//
// Complexity: O(K + N) draws for K clusters and N table rows.
func (s *Synthesizer) Replicate(r int) *Dataset {
	src := streamSource(s.n.Seed, uint64(r))
	stdNormal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	// One baseline intercept per cluster, reused across all its periods.
	// The optional stepped-wedge treated-period component is an
	// independent per-cluster draw added only on treated cells, keeping
	// the override additive to the baseline rather than replacing it.
	intercept := make([]float64, s.tab.Clusters)
	var treatedExtra []float64
	for k := 0; k < s.tab.Clusters; k++ {
		intercept[k] = stdNormal.Rand() * s.interceptSD(k)
	}
	if s.n.Topology == config.SteppedWedge && s.n.ExtraTreatVar > 0 {
		treatedExtra = make([]float64, s.tab.Clusters)
		sd := math.Sqrt(s.n.ExtraTreatVar)
		for k := 0; k < s.tab.Clusters; k++ {
			treatedExtra[k] = stdNormal.Rand() * sd
		}
	}

	y := make([]float64, len(s.tab.Rows))
	for i := range s.tab.Rows {
		row := &s.tab.Rows[i]
		b := intercept[row.Cluster]
		if treatedExtra != nil && row.Treat == 1 {
			b += treatedExtra[row.Cluster]
		}
		y[i] = s.drawCell(row, b, src, stdNormal)
	}

	return &Dataset{Table: s.tab, Y: y, Replicate: r}
}

// interceptSD is the between-cluster standard deviation for cluster k's
// arm. Stepped-wedge clusters all use the baseline variance; the treated
// override is handled as a separate additive component.
func (s *Synthesizer) interceptSD(k int) float64 {
	v := s.n.BetweenVar1
	if s.n.Topology == config.Parallel && s.tab.ArmOf[k] == 1 {
		v = s.n.BetweenVar2
	}
	return math.Sqrt(v)
}

// drawCell generates one outcome under the family's canonical link.
func (s *Synthesizer) drawCell(row *design.Row, b float64, src rand.Source, stdNormal distuv.Normal) float64 {
	mu := s.n.Mu1
	if row.Treat == 1 {
		mu = s.n.Mu2
	}

	switch s.n.Family {
	case config.Gaussian:
		resid := s.n.ResidualVar(s.armOfRow(row))
		return mu + b + stdNormal.Rand()*math.Sqrt(resid)

	case config.Binary:
		eta := logit(mu) + b
		if s.n.WithinVar > 0 {
			// Subject-level latent noise, re-drawn for every period cell.
			eta += stdNormal.Rand() * math.Sqrt(s.n.WithinVar)
		}
		return distuv.Bernoulli{P: expit(eta), Src: src}.Rand()

	case config.Poisson:
		lambda := math.Exp(math.Log(mu) + b)
		return distuv.Poisson{Lambda: lambda, Src: src}.Rand()

	default: // config.NegBinomial, enforced by New
		// Gamma-Poisson mixture: mean exp(eta), dispersion (size) k.
		mean := math.Exp(math.Log(mu) + b)
		k := s.n.Dispersion
		mixed := distuv.Gamma{Alpha: k, Beta: k / mean, Src: src}.Rand()
		return distuv.Poisson{Lambda: mixed, Src: src}.Rand()
	}
}

// armOfRow maps a cell to the arm whose variance applies: the cluster's
// arm for parallel designs, the cell's treatment phase for stepped-wedge.
func (s *Synthesizer) armOfRow(row *design.Row) int {
	if s.n.Topology == config.Parallel {
		return s.tab.ArmOf[row.Cluster]
	}
	return row.Treat
}

// logit is the canonical binary link.
func logit(p float64) float64 { return math.Log(p / (1 - p)) }

// expit is the inverse logit.
func expit(x float64) float64 { return 1 / (1 + math.Exp(-x)) }
