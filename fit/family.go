// Package fit: GLM family link and variance functions.
package fit

import (
	"math"

	"github.com/trialforge/crtpower/config"
)

// glmFamily bundles the canonical link pieces IRLS needs.
type glmFamily struct {
	// link maps a mean to the linear-predictor scale.
	link func(mu float64) float64

	// invLink maps a linear predictor back to a mean.
	invLink func(eta float64) float64

	// dMuDEta is the derivative of invLink, evaluated at a mean.
	dMuDEta func(mu float64) float64

	// variance is the family variance function V(mu).
	variance func(mu float64) float64
}

// muClamp keeps initial means away from link-function boundaries.
const muClamp = 1e-6

// familyFor returns the canonical-link family functions. dispersion is the
// negative-binomial size parameter.
func familyFor(f config.Family, dispersion float64) glmFamily {
	switch f {
	case config.Binary:
		return glmFamily{
			link:     func(mu float64) float64 { return math.Log(mu / (1 - mu)) },
			invLink:  func(eta float64) float64 { return 1 / (1 + math.Exp(-eta)) },
			dMuDEta:  func(mu float64) float64 { return mu * (1 - mu) },
			variance: func(mu float64) float64 { return mu * (1 - mu) },
		}
	case config.Poisson:
		return glmFamily{
			link:     math.Log,
			invLink:  math.Exp,
			dMuDEta:  func(mu float64) float64 { return mu },
			variance: func(mu float64) float64 { return mu },
		}
	case config.NegBinomial:
		return glmFamily{
			link:     math.Log,
			invLink:  math.Exp,
			dMuDEta:  func(mu float64) float64 { return mu },
			variance: func(mu float64) float64 { return mu + mu*mu/dispersion },
		}
	default: // config.Gaussian
		return glmFamily{
			link:     func(mu float64) float64 { return mu },
			invLink:  func(eta float64) float64 { return eta },
			dMuDEta:  func(float64) float64 { return 1 },
			variance: func(float64) float64 { return 1 },
		}
	}
}

// clampMean pulls a raw sample mean into the family's open domain so the
// initial link evaluation is finite.
func clampMean(f config.Family, m float64) float64 {
	switch f {
	case config.Binary:
		return math.Min(math.Max(m, muClamp), 1-muClamp)
	case config.Poisson, config.NegBinomial:
		return math.Max(m, muClamp)
	default:
		return m
	}
}
