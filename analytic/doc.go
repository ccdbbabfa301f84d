// Package analytic provides closed-form power and sample-size solvers for
// Gaussian-outcome parallel cluster-randomized designs.
//
// The engine is the classic design-effect formula for a two-arm comparison
// of means with n clusters per arm, m subjects per cluster, total outcome
// variance sigma2 and intraclass correlation rho:
//
//	DE    = 1 + (m-1)*rho
//	SE    = sqrt(2 * sigma2 * DE / (n*m))
//	power = Phi(|delta|/SE - z_{1-alpha/2})
//
// Power evaluates the formula directly; ClustersPerArm and
// SubjectsPerCluster invert it by one-dimensional bisection over the
// relaxed continuous parameter, then return the smallest integer meeting
// the target. Inversion over subjects per cluster can be infeasible: with
// rho > 0 the standard error is bounded below as m grows, capping the
// attainable power; that surfaces as ErrUnattainable rather than a
// runaway search.
//
// These solvers are independent of the simulation engine; use them for
// quick Gaussian sizing and the simulation for everything else.
package analytic
