// Package config: staged validation and normalization.
//
// Validate is organized like a pipeline of cheap-to-expensive stages; the
// first violated rule wins and is returned with its field name attached.
// Stage 2 (struct tags) covers enumerations and scalar domains via
// go-playground/validator; the relational rules that tags cannot express
// (size vectors, crossover schedules, the effect triple, variance ordering)
// are explicit Go code in stages 3-5.
//
// Design principles:
//   - Deterministic, side-effect free: Validate never mutates its receiver.
//   - No logging, no panics on user input - only sentinel errors.
//   - O(K + S) where K is the cluster count and S the schedule length.
package config

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// tagValidator is shared and concurrency-safe per its documentation.
var tagValidator = newTagValidator()

// newTagValidator builds the struct-tag validator with yaml field naming,
// so tag violations surface the same field names users wrote.
func newTagValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks every rule and returns the fully normalized request.
//
// Contract: on error the returned Normalized is the zero value and the
// error wraps exactly one package sentinel, matchable via errors.Is, with
// the offending field and value in its message.
func (c Config) Validate() (Normalized, error) {
	// Stage 1 - defaults for optional scalars.
	if c.Alpha == 0 {
		c.Alpha = defaultAlpha
	}
	if c.Family == "" {
		c.Family = Gaussian
	}
	if c.Method == "" {
		c.Method = GLMM
	}
	if c.Dispersion == 0 {
		c.Dispersion = defaultDispersion
	}

	// Stage 2 - struct-tag pass: enumerations and scalar domains.
	if err := c.validateTags(); err != nil {
		return Normalized{}, err
	}

	// Stage 3 - topology-specific design shape.
	n := Normalized{
		Topology:       c.Topology,
		Family:         c.Family,
		Method:         c.Method,
		NSim:           c.NSim,
		Alpha:          c.Alpha,
		Seed:           c.Seed,
		RetainDatasets: c.RetainDatasets,
		TotalVar:       c.TotalVar,
		WithinVar:      c.WithinVar,
		Dispersion:     c.Dispersion,
	}
	if err := c.normalizeDesign(&n); err != nil {
		return Normalized{}, err
	}

	// Stage 4 - the effect triple.
	if err := c.normalizeEffect(&n); err != nil {
		return Normalized{}, err
	}

	// Stage 5 - variance components and family domains.
	if err := c.normalizeVariance(&n); err != nil {
		return Normalized{}, err
	}

	return n, nil
}

// validateTags runs the struct-tag validator and converts its first
// violation into a package sentinel with the yaml field name attached.
func (c Config) validateTags() error {
	err := tagValidator.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	first := verrs[0]
	var sentinel error
	switch first.Tag() {
	case "required":
		sentinel = ErrMissingField
	case "min":
		sentinel = ErrNotPositive
	case "oneof":
		sentinel = ErrBadEnum
	default: // gt, lt, gte, lte
		sentinel = ErrOutOfRange
	}
	return fieldErr(first.Field(), first.Value(), sentinel)
}

// normalizeDesign resolves cluster counts, sizes and (for stepped-wedge)
// the crossover schedule into canonical cumulative form.
func (c Config) normalizeDesign(n *Normalized) error {
	switch c.Topology {
	case Parallel:
		if c.Clusters != 0 {
			return fieldErr("clusters", c.Clusters, ErrTopologyField)
		}
		if c.Steps != 0 || len(c.Crossover) != 0 {
			return fieldErr("steps", c.Steps, ErrTopologyField)
		}
		if c.ClustersArm1 < 1 {
			return fieldErr("clusters_arm1", c.ClustersArm1, ErrNotPositive)
		}
		if c.ClustersArm2 < 1 {
			return fieldErr("clusters_arm2", c.ClustersArm2, ErrNotPositive)
		}
		n.ClustersArm1 = c.ClustersArm1
		n.ClustersArm2 = c.ClustersArm2
		n.Clusters = c.ClustersArm1 + c.ClustersArm2
		n.Periods = 1

	case SteppedWedge:
		if c.ClustersArm1 != 0 || c.ClustersArm2 != 0 {
			return fieldErr("clusters_arm1", c.ClustersArm1, ErrTopologyField)
		}
		if c.Clusters < 1 {
			return fieldErr("clusters", c.Clusters, ErrNotPositive)
		}
		n.Clusters = c.Clusters
		if err := c.normalizeSchedule(n); err != nil {
			return err
		}
		n.Periods = n.Steps + 1
	}

	// Cluster sizes: scalar broadcast or exact-length vector.
	sizes, err := resolveSizes(c.Subjects, c.ClusterSizes, n.Clusters)
	if err != nil {
		return err
	}
	n.ClusterSizes = sizes

	return nil
}

// resolveSizes broadcasts a scalar subject count or checks an explicit
// per-cluster vector. Exactly one of the two forms must be usable.
func resolveSizes(subjects int, sizes []int, clusters int) ([]int, error) {
	if len(sizes) == 0 {
		if subjects < 1 {
			return nil, fieldErr("subjects", subjects, ErrNotPositive)
		}
		out := make([]int, clusters)
		for i := range out {
			out[i] = subjects
		}
		return out, nil
	}
	if len(sizes) != clusters {
		return nil, fieldErr("cluster_sizes", len(sizes), ErrClusterSizes)
	}
	out := make([]int, clusters)
	for i, s := range sizes {
		if s < 1 {
			return nil, fieldErr("cluster_sizes", s, ErrNotPositive)
		}
		out[i] = s
	}
	return out, nil
}

// normalizeSchedule converts any accepted crossover specification into the
// canonical cumulative form, where Cumulative[j] clusters have crossed over
// by the end of step j+1.
//
// Accepted forms:
//   - Steps k: clusters split across k steps as evenly as possible; when
//     the division is uneven the remainder is spread one extra cluster over
//     the earliest steps (deterministic remainder policy).
//   - Crossover vector summing exactly to the cluster count: per-step
//     counts, converted by prefix sum.
//   - Crossover vector that is non-decreasing: already cumulative; it may
//     end below the cluster count (trailing clusters never cross over) but
//     never above it.
//
// Anything else fails with ErrCrossoverSchedule.
func (c Config) normalizeSchedule(n *Normalized) error {
	hasSteps := c.Steps != 0
	hasVector := len(c.Crossover) != 0
	switch {
	case hasSteps && hasVector:
		return fieldErr("crossover", c.Crossover, ErrTopologyField)
	case !hasSteps && !hasVector:
		return fieldErr("steps", c.Steps, ErrMissingField)
	case hasSteps:
		if c.Steps < 1 {
			return fieldErr("steps", c.Steps, ErrNotPositive)
		}
		if c.Steps > c.Clusters {
			return fieldErr("steps", c.Steps, ErrCrossoverSchedule)
		}
		n.Steps = c.Steps
		n.Cumulative = evenCumulative(c.Clusters, c.Steps)
		return nil
	}

	// Explicit vector: classify by shape.
	sum := 0
	nondecreasing := true
	for i, v := range c.Crossover {
		if v < 0 {
			return fieldErr("crossover", v, ErrCrossoverSchedule)
		}
		sum += v
		if i > 0 && v < c.Crossover[i-1] {
			nondecreasing = false
		}
	}
	n.Steps = len(c.Crossover)
	n.Cumulative = make([]int, n.Steps)
	switch {
	case sum == c.Clusters:
		// Per-step counts: prefix sum.
		run := 0
		for i, v := range c.Crossover {
			run += v
			n.Cumulative[i] = run
		}
	case nondecreasing && c.Crossover[n.Steps-1] <= c.Clusters:
		copy(n.Cumulative, c.Crossover)
	default:
		return fieldErr("crossover", c.Crossover, ErrCrossoverSchedule)
	}
	return nil
}

// evenCumulative splits clusters across steps, front-loading the remainder.
// evenCumulative(10, 4) => [3, 6, 8, 10].
func evenCumulative(clusters, steps int) []int {
	base := clusters / steps
	rem := clusters % steps
	out := make([]int, steps)
	run := 0
	for i := 0; i < steps; i++ {
		run += base
		if i < rem {
			run++
		}
		out[i] = run
	}
	return out
}

// normalizeEffect resolves the (mu1, mu2, effect) triple.
//
// Resolution policy when one field is absent:
//   - effect absent: effect = |mu1 - mu2|
//   - mu2 absent:    mu2 = mu1 + effect
//   - mu1 absent:    mu1 = mu2 - effect
//
// The stored Effect is always |Mu1 - Mu2|.
func (c Config) normalizeEffect(n *Normalized) error {
	supplied := 0
	for _, p := range []*float64{c.Mu1, c.Mu2, c.Effect} {
		if p != nil {
			supplied++
		}
	}
	if supplied < 2 {
		return fieldErr("mu1", nil, ErrEffectUnderspecified)
	}
	switch {
	case c.Mu1 != nil && c.Mu2 != nil:
		n.Mu1 = *c.Mu1
		n.Mu2 = *c.Mu2
		if c.Effect != nil && math.Abs(*c.Effect-math.Abs(n.Mu1-n.Mu2)) > effectTol {
			return fieldErr("effect", *c.Effect, ErrEffectMismatch)
		}
	case c.Mu1 != nil: // mu1 + effect
		n.Mu1 = *c.Mu1
		n.Mu2 = *c.Mu1 + *c.Effect
	default: // mu2 + effect
		n.Mu2 = *c.Mu2
		n.Mu1 = *c.Mu2 - *c.Effect
	}
	n.Effect = math.Abs(n.Mu1 - n.Mu2)
	return nil
}

// normalizeVariance resolves per-arm between-cluster variances and enforces
// family-specific domains on the arm levels.
func (c Config) normalizeVariance(n *Normalized) error {
	n.BetweenVar1 = c.BetweenVar
	n.BetweenVar2 = c.BetweenVar
	if c.BetweenVar2 != nil {
		if *c.BetweenVar2 < 0 {
			return fieldErr("between_var2", *c.BetweenVar2, ErrOutOfRange)
		}
		if c.Topology == SteppedWedge {
			// Additive on top of the baseline, not a replacement.
			n.ExtraTreatVar = *c.BetweenVar2
			n.BetweenVar2 = c.BetweenVar + *c.BetweenVar2
		} else {
			n.BetweenVar2 = *c.BetweenVar2
		}
	}

	switch c.Family {
	case Gaussian:
		if c.TotalVar <= 0 {
			return fieldErr("total_var", c.TotalVar, ErrMissingField)
		}
		if n.BetweenVar1 > c.TotalVar || n.BetweenVar2 > c.TotalVar {
			return fieldErr("between_var", c.BetweenVar, ErrVarianceOrder)
		}
	case Binary:
		for _, f := range []struct {
			name string
			v    float64
		}{{"mu1", n.Mu1}, {"mu2", n.Mu2}} {
			if f.v <= 0 || f.v >= 1 {
				return fieldErr(f.name, f.v, ErrOutOfRange)
			}
		}
	case Poisson, NegBinomial:
		for _, f := range []struct {
			name string
			v    float64
		}{{"mu1", n.Mu1}, {"mu2", n.Mu2}} {
			if f.v <= 0 {
				return fieldErr(f.name, f.v, ErrOutOfRange)
			}
		}
		if c.Family == NegBinomial && c.Dispersion <= 0 {
			return fieldErr("dispersion", c.Dispersion, ErrOutOfRange)
		}
	}
	return nil
}
