// Package fit: the fitting contract, result type and sentinel errors.
package fit

import (
	"errors"

	"github.com/trialforge/crtpower/config"
	"github.com/trialforge/crtpower/synth"
)

// Sentinel errors. The driver maps any Fit error to a recoverable
// single-replicate failure; these let tests distinguish the cause.
var (
	// ErrNoConverge is returned when IRLS fails to converge within the
	// iteration budget or produces non-finite coefficients.
	ErrNoConverge = errors.New("fit: model failed to converge")

	// ErrSingular is returned when the working information matrix is not
	// positive definite (e.g. a collinear or degenerate design).
	ErrSingular = errors.New("fit: singular information matrix")

	// ErrUnsupported is returned by New for a method/family combination
	// outside the fixed enumerations.
	ErrUnsupported = errors.New("fit: unsupported method or family")

	// ErrEmptyDataset is returned when the replicate has no rows.
	ErrEmptyDataset = errors.New("fit: empty dataset")
)

// Result is the treatment-effect test outcome for one replicate.
type Result struct {
	// Estimate is the fitted treatment coefficient on the link scale.
	Estimate float64

	// StdErr is its standard error (model-based for glmm, sandwich for
	// gee).
	StdErr float64

	// Stat is the test statistic: z for glmm, Wald chi-square(1) for gee.
	Stat float64

	// PValue is the two-sided p-value under the statistic's asymptotic
	// reference distribution.
	PValue float64

	// ICC is the fitted exchangeable within-cluster correlation, kept as
	// a variance-component diagnostic for the aggregator.
	ICC float64
}

// Model fits one replicate dataset and extracts the treatment-effect test.
// Implementations must be safe for concurrent Fit calls on distinct
// datasets.
type Model interface {
	// Name identifies the analysis method ("glmm" or "gee").
	Name() string

	// Fit returns the treatment-effect result or a fit error
	// (ErrNoConverge, ErrSingular, ErrEmptyDataset).
	Fit(ds *synth.Dataset) (Result, error)
}

// New routes to the default engine for the requested method and family.
// Dispersion is the negative-binomial size parameter (ignored elsewhere).
func New(method config.Method, family config.Family, dispersion float64) (Model, error) {
	switch family {
	case config.Gaussian, config.Binary, config.Poisson, config.NegBinomial:
	default:
		return nil, ErrUnsupported
	}
	switch method {
	case config.GLMM, config.GEE:
	default:
		return nil, ErrUnsupported
	}
	return &engine{method: method, family: family, dispersion: dispersion}, nil
}
