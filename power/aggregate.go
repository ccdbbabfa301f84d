// Package power: the replicate aggregator.
//
// Aggregation is an explicit reduction over immutable per-replicate
// records, never ambient accumulation inside the iteration loop. The
// reduction is a multiset operation (counts and sums), so the estimate and
// its interval are identical however the replicates were scheduled.
package power

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/trialforge/crtpower/fit"
)

// ErrNoCompletedReplicates is returned when every replicate failed to fit;
// a power estimate over zero trials is never reported.
var ErrNoCompletedReplicates = errors.New("power: no replicate completed successfully")

// Estimate is the final power estimate with its Wald confidence bounds.
// Degenerate estimates (exactly 0 or 1) apply the formula as-is, yielding
// a zero-width interval; that is reported, not treated as an error.
// Never mutated after computation.
type Estimate struct {
	Power float64
	Lower float64
	Upper float64
}

// Wald computes the binomial Wald interval for significant successes out
// of completed trials at level alpha:
//
//	p ± z_{1-alpha/2} * sqrt(p(1-p)/n)
//
// Complexity: O(1).
func Wald(significant, completed int, alpha float64) Estimate {
	p := float64(significant) / float64(completed)
	z := distuv.UnitNormal.Quantile(1 - alpha/2)
	se := math.Sqrt(p * (1 - p) / float64(completed))
	return Estimate{Power: p, Lower: p - z*se, Upper: p + z*se}
}

// Aggregate reduces a set of completed replicate results into a power
// estimate at level alpha. The significance flag per replicate is
// p-value < alpha. The input is treated as a multiset: any ordering of
// the same results yields the identical estimate and interval.
//
// Complexity: O(n).
func Aggregate(results []fit.Result, alpha float64) (Estimate, error) {
	if len(results) == 0 {
		return Estimate{}, ErrNoCompletedReplicates
	}
	significant := 0
	for i := range results {
		if results[i].PValue < alpha {
			significant++
		}
	}
	return Wald(significant, len(results), alpha), nil
}

// cellSum is the running (sum, count) pair for one period/treatment cell.
type cellSum struct {
	sum float64
	n   int
}

// cellMeans computes the per-cell outcome means of one replicate:
// means[period][treat] with NaN marking cells the design never observes
// (e.g. treated cells at the all-control baseline period).
func cellMeans(periods int, periodOf, treatOf []int, y []float64) [][2]float64 {
	acc := make([][2]cellSum, periods)
	for i, v := range y {
		c := &acc[periodOf[i]][treatOf[i]]
		c.sum += v
		c.n++
	}
	out := make([][2]float64, periods)
	for p := 0; p < periods; p++ {
		for t := 0; t < 2; t++ {
			if acc[p][t].n == 0 {
				out[p][t] = math.NaN()
				continue
			}
			out[p][t] = acc[p][t].sum / float64(acc[p][t].n)
		}
	}
	return out
}

// reduceMeans averages per-replicate cell means across replicates as a
// running sum divided by the contributing replicate count, cell-wise.
// Inputs are consumed in slice order; the driver always passes them in
// replicate-index order so the reduction is reproducible bit-for-bit.
func reduceMeans(periods int, perReplicate [][][2]float64) [][2]float64 {
	acc := make([][2]cellSum, periods)
	for _, cells := range perReplicate {
		for p := 0; p < periods; p++ {
			for t := 0; t < 2; t++ {
				if math.IsNaN(cells[p][t]) {
					continue
				}
				acc[p][t].sum += cells[p][t]
				acc[p][t].n++
			}
		}
	}
	out := make([][2]float64, periods)
	for p := 0; p < periods; p++ {
		for t := 0; t < 2; t++ {
			if acc[p][t].n == 0 {
				out[p][t] = math.NaN()
				continue
			}
			out[p][t] = acc[p][t].sum / float64(acc[p][t].n)
		}
	}
	return out
}
