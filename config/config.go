// Package config: request and normalized-request types.
//
// Config mirrors what a user writes (YAML scenario file or struct literal);
// Normalized is what the rest of the pipeline consumes. Only Validate may
// produce a Normalized value.
package config

// Topology selects the trial design layout.
type Topology string

const (
	// Parallel is a two-arm design: each cluster is observed once, fully
	// in control or fully in treatment.
	Parallel Topology = "parallel"

	// SteppedWedge observes every cluster at every period; clusters start
	// in control and permanently cross over at their assigned step.
	SteppedWedge Topology = "stepped-wedge"
)

// Family selects the outcome distribution.
type Family string

const (
	Gaussian    Family = "gaussian"
	Binary      Family = "binary"
	Poisson     Family = "poisson"
	NegBinomial Family = "neg-binomial"
)

// Method selects the per-replicate analysis model.
type Method string

const (
	// GLMM fits a random-intercept model: cluster effects modeled
	// explicitly, model-based covariance, z reference distribution.
	GLMM Method = "glmm"

	// GEE fits a marginal model with exchangeable working correlation,
	// sandwich covariance and a Wald chi-square(1) reference distribution.
	GEE Method = "gee"
)

// Config is the raw simulation request. Pointer-typed fields distinguish
// "not supplied" from an explicit zero; everything else treats the Go zero
// value as "not supplied" and, where documented, receives a default.
type Config struct {
	// Topology is required: "parallel" or "stepped-wedge".
	Topology Topology `yaml:"topology" validate:"required,oneof=parallel stepped-wedge"`

	// NSim is the Monte Carlo replicate count. Required, >= 1.
	NSim int `yaml:"nsim" validate:"required,min=1"`

	// Alpha is the two-sided significance level. Default 0.05.
	Alpha float64 `yaml:"alpha" validate:"gt=0,lt=1"`

	// Seed drives every random draw. Seed 0 selects the fixed default
	// stream, so runs are reproducible even when no seed is given.
	Seed int64 `yaml:"seed"`

	// RetainDatasets keeps every replicate's raw dataset on the result.
	RetainDatasets bool `yaml:"retain_datasets"`

	// --- design -----------------------------------------------------------

	// ClustersArm1/ClustersArm2 are the per-arm cluster counts for the
	// parallel topology. Both required there, ignored for stepped-wedge.
	ClustersArm1 int `yaml:"clusters_arm1" validate:"min=0"`
	ClustersArm2 int `yaml:"clusters_arm2" validate:"min=0"`

	// Clusters is the total cluster count for stepped-wedge.
	Clusters int `yaml:"clusters" validate:"min=0"`

	// Subjects is the per-cluster subject count, broadcast to every
	// cluster unless ClusterSizes is supplied.
	Subjects int `yaml:"subjects" validate:"min=0"`

	// ClusterSizes optionally gives one size per cluster; its length must
	// equal the total cluster count.
	ClusterSizes []int `yaml:"cluster_sizes"`

	// Steps is the stepped-wedge step count; clusters are split across
	// steps as evenly as possible (remainder front-loaded onto the
	// earliest steps). Mutually exclusive with Crossover.
	Steps int `yaml:"steps" validate:"min=0"`

	// Crossover is an explicit stepped-wedge schedule. Its shape decides
	// its meaning: if the entries sum to the total cluster count it is a
	// per-step count vector; otherwise it must be a non-decreasing
	// cumulative vector (which may end below the total; trailing clusters
	// then never cross over). Any other shape fails validation.
	Crossover []int `yaml:"crossover"`

	// --- outcome ----------------------------------------------------------

	// Family defaults to gaussian.
	Family Family `yaml:"family" validate:"omitempty,oneof=gaussian binary poisson neg-binomial"`

	// Method defaults to glmm.
	Method Method `yaml:"method" validate:"omitempty,oneof=glmm gee"`

	// Mu1, Mu2 are the arm outcome levels (mean for gaussian/counts,
	// probability for binary); Effect is their absolute difference.
	// At least two of the three must be supplied; if all three are, they
	// must agree: Effect == |Mu1 - Mu2|.
	Mu1    *float64 `yaml:"mu1"`
	Mu2    *float64 `yaml:"mu2"`
	Effect *float64 `yaml:"effect"`

	// TotalVar is the total outcome variance (gaussian only); the residual
	// variance is TotalVar - between-cluster variance.
	TotalVar float64 `yaml:"total_var" validate:"gte=0"`

	// BetweenVar is the between-cluster variance shared by both arms.
	BetweenVar float64 `yaml:"between_var" validate:"gte=0"`

	// BetweenVar2 optionally overrides the second arm. Parallel designs
	// replace the arm-2 variance with it; stepped-wedge designs add it on
	// top of BetweenVar for treated-period cells.
	BetweenVar2 *float64 `yaml:"between_var2"`

	// WithinVar is the subject-level latent variance on the link scale,
	// used by the binary family. Default 0 (pure Bernoulli given cluster).
	WithinVar float64 `yaml:"within_var" validate:"gte=0"`

	// Dispersion is the negative-binomial size parameter. Default 1.
	Dispersion float64 `yaml:"dispersion" validate:"gte=0"`
}

// Default returns a Config pre-filled with the documented defaults. The
// caller still must supply topology, counts and effect sizes.
func Default() Config {
	return Config{
		Alpha:      defaultAlpha,
		Family:     Gaussian,
		Method:     GLMM,
		Dispersion: defaultDispersion,
	}
}

// Documented defaults (single source of truth).
const (
	defaultAlpha      = 0.05
	defaultDispersion = 1.0
)

// effectTol is the tolerance for the effect-triple consistency check.
const effectTol = 1e-9

// Normalized is the validated, fully-derived form of a Config. It is
// immutable by convention: nothing downstream mutates it, and the slices it
// carries are freshly allocated by Validate.
type Normalized struct {
	Topology       Topology
	Family         Family
	Method         Method
	NSim           int
	Alpha          float64
	Seed           int64
	RetainDatasets bool

	// ClusterSizes always has one entry per cluster (broadcast applied).
	ClusterSizes []int

	// ClustersArm1/ClustersArm2 partition the clusters for parallel
	// designs; both are zero for stepped-wedge.
	ClustersArm1 int
	ClustersArm2 int

	// Clusters is the total cluster count for either topology.
	Clusters int

	// Steps and Cumulative describe the stepped-wedge schedule in its
	// canonical cumulative form: Cumulative[j] clusters have crossed over
	// by the end of step j+1. Empty for parallel designs.
	Steps      int
	Cumulative []int

	// Periods is Steps+1 for stepped-wedge (period 0 is all-control), 1
	// for parallel.
	Periods int

	// Mu1, Mu2 are both resolved; Effect == |Mu1 - Mu2|.
	Mu1    float64
	Mu2    float64
	Effect float64

	TotalVar float64

	// BetweenVar1/BetweenVar2 are the resolved per-arm between-cluster
	// variances (parallel). For stepped-wedge BetweenVar1 is the baseline
	// intercept variance and ExtraTreatVar the additive treated-period
	// component (zero unless BetweenVar2 was supplied).
	BetweenVar1   float64
	BetweenVar2   float64
	ExtraTreatVar float64

	WithinVar  float64
	Dispersion float64
}

// ResidualVar returns the gaussian subject-level residual variance for the
// given arm (0 or 1), defined as TotalVar minus that arm's between-cluster
// variance. Meaningful only for the gaussian family.
func (n Normalized) ResidualVar(arm int) float64 {
	if arm == 1 {
		return n.TotalVar - n.BetweenVar2
	}
	return n.TotalVar - n.BetweenVar1
}

// ICC returns the design intraclass correlation implied by the input
// variance components for arm 0: between / total. Zero when TotalVar is 0.
func (n Normalized) ICC() float64 {
	if n.TotalVar <= 0 {
		return 0
	}
	return n.BetweenVar1 / n.TotalVar
}
