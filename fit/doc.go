// Package fit defines the model-fitting contract consumed by the
// simulation driver, plus default engines for both analysis methods.
//
// The engine is a replaceable capability: anything honoring the Model
// interface (fit a regression to one replicate, return the treatment
// coefficient's estimate, standard error, test statistic and p-value) can
// be plugged into the driver. The defaults share one IRLS core with an
// exchangeable within-cluster working correlation:
//
//   - glmm: random-intercept analysis with model-based covariance and a z
//     reference distribution. For the gaussian family this is exact
//     feasible GLS for the random-intercept model; for other families it
//     is a quasi-likelihood approximation of the mixed model.
//   - gee:  marginal (population-average) analysis with the robust
//     sandwich covariance and a Wald chi-square(1) reference distribution.
//
// Fixed effects are intercept + treatment, plus period dummies for
// stepped-wedge tables. Non-convergence and singular systems surface as
// sentinel errors; the driver treats them as single-replicate failures.
//
// Engines are stateless and safe for concurrent Fit calls.
package fit
