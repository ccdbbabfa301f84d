// Package fit: the shared IRLS core with exchangeable working correlation.
//
// Both default engines reduce to iteratively reweighted least squares over
// cluster blocks. The exchangeable structure R = (1-a)I + aJ has the
// analytic inverse
//
//	R^-1 = 1/(1-a) * (I - a/(1+(n-1)a) * J)
//
// so every cluster contributes in O(n_i * p^2) without forming or
// factorizing any n_i x n_i matrix. The working correlation a and the
// scale phi are re-estimated by moments between coefficient updates.
//
// Numeric policy:
//   - non-finite linear predictors or coefficients => ErrNoConverge
//   - a working information matrix that fails Cholesky => ErrSingular
//   - variance and scale floors guard degenerate (separated) replicates
package fit

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	maxIter  = 50
	betaTol  = 1e-8
	varFloor = 1e-10
	phiFloor = 1e-12
	alphaMax = 0.95
)

// irlsFit is the converged state handed back to the engines.
type irlsFit struct {
	beta  []float64
	cov   *mat.Dense // covariance of beta; model-based or sandwich
	alpha float64    // fitted exchangeable correlation
	phi   float64    // fitted dispersion scale
}

// fitExchangeable runs Fisher scoring to convergence.
//
// X is row-major (one slice per observation), y the responses, groups the
// half-open [start, end) row range of each cluster (rows of a cluster must
// be contiguous; the design builder guarantees it). robust selects the
// sandwich covariance instead of the model-based one.
//
// Complexity: O(iter * N * p^2) time, O(p^2) extra space.
func fitExchangeable(X [][]float64, y []float64, groups [][2]int, fam glmFamily, startMu float64, robust bool) (irlsFit, error) {
	n := len(y)
	if n == 0 || len(X) != n {
		return irlsFit{}, ErrEmptyDataset
	}
	p := len(X[0])

	// Constant across iterations: total within-cluster pair count for the
	// correlation moment estimator.
	pairs := 0
	for _, g := range groups {
		ni := g[1] - g[0]
		pairs += ni * (ni - 1) / 2
	}

	beta := make([]float64, p)
	beta[0] = startMu // link-scale intercept start; slopes start at zero

	var (
		mu = make([]float64, n)
		w  = make([]float64, n) // dmu/deta
		v  = make([]float64, n) // V(mu), floored
		r  = make([]float64, n) // Pearson residuals

		alpha, phi float64

		bAcc = newSquare(p) // working information
		mAcc = newSquare(p) // sandwich meat
		gvec = make([]float64, p)

		sxx = newSquare(p) // per-cluster scratch
		q   = make([]float64, p)
		ge  = make([]float64, p)
	)

	for iter := 0; iter < maxIter; iter++ {
		// Working quantities at the current beta.
		sumsq := 0.0
		for i := 0; i < n; i++ {
			e := dot(X[i], beta)
			if math.IsNaN(e) || math.IsInf(e, 0) {
				return irlsFit{}, ErrNoConverge
			}
			mu[i] = fam.invLink(e)
			w[i] = fam.dMuDEta(mu[i])
			v[i] = math.Max(fam.variance(mu[i]), varFloor)
			r[i] = (y[i] - mu[i]) / math.Sqrt(v[i])
			sumsq += r[i] * r[i]
		}
		dof := n - p
		if dof < 1 {
			dof = 1
		}
		phi = math.Max(sumsq/float64(dof), phiFloor)

		// Moment estimator for the exchangeable correlation.
		num := 0.0
		for _, g := range groups {
			s, ss := 0.0, 0.0
			for i := g[0]; i < g[1]; i++ {
				s += r[i]
				ss += r[i] * r[i]
			}
			num += (s*s - ss) / 2
		}
		denPairs := pairs - p
		if denPairs < 1 {
			denPairs = 1
		}
		alpha = num / (phi * float64(denPairs))
		alpha = math.Min(math.Max(alpha, 0), alphaMax)

		// Assemble information, score and meat cluster by cluster.
		zero(gvec)
		bAcc.reset()
		mAcc.reset()
		c1 := 1 / (1 - alpha)
		for _, g := range groups {
			ni := g[1] - g[0]
			c2 := alpha / (1 + float64(ni-1)*alpha)

			sxx.reset()
			zero(q)
			zero(ge)
			esum := 0.0
			for i := g[0]; i < g[1]; i++ {
				sa := math.Sqrt(v[i])
				t := w[i] / sa
				e := (y[i] - mu[i]) / sa
				esum += e
				for a := 0; a < p; a++ {
					ta := t * X[i][a]
					q[a] += ta
					ge[a] += ta * e
					for b := a; b < p; b++ {
						sxx.data[a*p+b] += ta * t * X[i][b]
					}
				}
			}

			scale := c1 / phi
			gi := make([]float64, p)
			for a := 0; a < p; a++ {
				gi[a] = scale * (ge[a] - c2*esum*q[a])
				gvec[a] += gi[a]
			}
			for a := 0; a < p; a++ {
				for b := a; b < p; b++ {
					bAcc.data[a*p+b] += scale * (sxx.data[a*p+b] - c2*q[a]*q[b])
				}
			}
			for a := 0; a < p; a++ {
				for b := a; b < p; b++ {
					mAcc.data[a*p+b] += gi[a] * gi[b]
				}
			}
		}

		// Solve B * delta = g.
		bSym := bAcc.sym(p)
		var chol mat.Cholesky
		if !chol.Factorize(bSym) {
			return irlsFit{}, ErrSingular
		}
		var delta mat.VecDense
		if err := chol.SolveVecTo(&delta, mat.NewVecDense(p, gvec)); err != nil {
			return irlsFit{}, ErrSingular
		}

		maxStep := 0.0
		for a := 0; a < p; a++ {
			d := delta.AtVec(a)
			if math.IsNaN(d) || math.IsInf(d, 0) {
				return irlsFit{}, ErrNoConverge
			}
			beta[a] += d
			if ad := math.Abs(d); ad > maxStep {
				maxStep = ad
			}
		}
		if maxStep < betaTol {
			cov, err := covariance(&chol, mAcc.sym(p), p, robust)
			if err != nil {
				return irlsFit{}, err
			}
			return irlsFit{beta: beta, cov: cov, alpha: alpha, phi: phi}, nil
		}
	}
	return irlsFit{}, ErrNoConverge
}

// covariance inverts the working information and, when robust, wraps the
// sandwich around it: Binv * M * Binv.
func covariance(chol *mat.Cholesky, meat *mat.SymDense, p int, robust bool) (*mat.Dense, error) {
	var bInv mat.SymDense
	if err := chol.InverseTo(&bInv); err != nil {
		return nil, ErrSingular
	}
	out := mat.NewDense(p, p, nil)
	if !robust {
		out.Copy(&bInv)
		return out, nil
	}
	var tmp mat.Dense
	tmp.Mul(&bInv, meat)
	out.Mul(&tmp, &bInv)
	return out, nil
}

// square is a tiny upper-triangle accumulator reused across iterations.
type square struct {
	data []float64
	n    int
}

func newSquare(p int) *square { return &square{data: make([]float64, p*p), n: p} }

func (s *square) reset() { zero(s.data) }

// sym mirrors the upper triangle into a SymDense view.
func (s *square) sym(p int) *mat.SymDense {
	out := mat.NewSymDense(p, nil)
	for a := 0; a < p; a++ {
		for b := a; b < p; b++ {
			out.SetSym(a, b, s.data[a*p+b])
		}
	}
	return out
}

func dot(x, b []float64) float64 {
	s := 0.0
	for i := range x {
		s += x[i] * b[i]
	}
	return s
}

func zero(x []float64) {
	for i := range x {
		x[i] = 0
	}
}
