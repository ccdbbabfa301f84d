// Package power: the simulation driver.
//
// Run moves through explicit states: validating, building the design,
// iterating replicates, aggregating. Validation failures are fatal and
// immediate; per-replicate fit failures are recorded and skipped. The
// iteration loop itself is a dispatcher over two execution strategies,
// sequential or worker pool, that fill the same index-addressed outcome
// slice, so everything downstream of the loop is strategy-agnostic.
package power

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/trialforge/crtpower/config"
	"github.com/trialforge/crtpower/design"
	"github.com/trialforge/crtpower/fit"
	"github.com/trialforge/crtpower/synth"
)

// Replicate is one completed iteration's record in the result table.
type Replicate struct {
	// Index is the Monte Carlo iteration number (0-based).
	Index int

	fit.Result

	// Significant is the test decision at the run's alpha.
	Significant bool
}

// Result is the structured outcome of one simulation run, consumed by
// reporting layers. Nothing mutates it after Run returns.
type Result struct {
	// RunID uniquely identifies the run in logs and reports.
	RunID string

	Topology config.Topology
	Family   config.Family
	Method   string
	Alpha    float64

	// Requested, Completed and Failed count replicates; the power
	// denominator is Completed, never padded.
	Requested int
	Completed int
	Failed    int

	Power Estimate

	// ICCInput is the intraclass correlation implied by the input
	// variance components; ICCFitted averages the fitted exchangeable
	// correlation across completed replicates, for diagnostic
	// comparison.
	ICCInput  float64
	ICCFitted float64

	// Means holds per-period control/treatment outcome means averaged
	// across replicates; NaN marks cells the design never observes.
	Means [][2]float64

	// Crossover is the clusters x steps treatment matrix; nil for
	// parallel designs.
	Crossover [][]int

	// Replicates lists every completed replicate in index order.
	Replicates []Replicate

	// Datasets holds the raw replicate datasets when retention was
	// requested, in index order (failed replicates included; their data
	// existed even though the fit did not).
	Datasets []*synth.Dataset

	Elapsed time.Duration
}

// outcome is the per-iteration slot filled by the execution strategies.
type outcome struct {
	res   fit.Result
	err   error
	cells [][2]float64
	ds    *synth.Dataset
}

// Run estimates power for the given request.
//
// Fatal errors (invalid configuration, impossible design) surface
// immediately with no partial result. Fit failures are per-replicate and
// recoverable; only ErrNoCompletedReplicates aborts after iteration.
func Run(cfg config.Config, opts ...Option) (*Result, error) {
	o := DefaultOptions()
	for _, apply := range opts {
		apply(&o)
	}

	// Stage 1 - validation gate. Always fatal on error.
	n, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	// Stage 2 - deterministic design construction, once per run.
	tab, err := design.Build(design.SpecFromConfig(n))
	if err != nil {
		return nil, err
	}

	syn, err := synth.New(tab, n)
	if err != nil {
		return nil, err
	}

	model := o.Model
	if model == nil {
		if model, err = fit.New(n.Method, n.Family, n.Dispersion); err != nil {
			return nil, err
		}
	}

	// Row -> cell lookups shared by every replicate's mean computation.
	periodOf := make([]int, len(tab.Rows))
	treatOf := make([]int, len(tab.Rows))
	for i := range tab.Rows {
		periodOf[i] = tab.Rows[i].Period
		treatOf[i] = tab.Rows[i].Treat
	}

	runID := uuid.NewString()
	start := time.Now()
	o.Reporter.Start(runID, n.NSim)

	// Stage 3 - iteration. Both strategies fill outcomes by index, so
	// aggregation order never depends on scheduling.
	outcomes := make([]outcome, n.NSim)
	iterate := func(i int) {
		ds := syn.Replicate(i)
		res, ferr := model.Fit(ds)
		slot := &outcomes[i]
		slot.res = res
		slot.err = ferr
		slot.cells = cellMeans(tab.Periods, periodOf, treatOf, ds.Y)
		if n.RetainDatasets {
			slot.ds = ds
		}
	}
	observe := newObserver(&o, start, n.NSim)
	if o.Workers <= 1 {
		for i := 0; i < n.NSim; i++ {
			iterate(i)
			observe(i, &outcomes[i])
		}
	} else {
		runPool(o.Workers, n.NSim, func(i int) {
			iterate(i)
			observe(i, &outcomes[i])
		})
	}

	// Stage 4 - explicit reduction over the outcome table.
	res, err := summarize(runID, n, tab, model.Name(), outcomes, time.Since(start))
	if err != nil {
		o.Reporter.Done(0, n.NSim, time.Since(start))
		return nil, err
	}
	o.Reporter.Done(res.Completed, res.Failed, res.Elapsed)
	return res, nil
}

// runPool fans indices 0..total-1 over workers goroutines. Each index is
// claimed atomically; slots are disjoint so no further synchronization is
// needed for the outcome table.
func runPool(workers, total int, work func(i int)) {
	var next int64 = -1
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&next, 1))
				if i >= total {
					return
				}
				work(i)
			}
		}()
	}
	wg.Wait()
}

// newObserver serializes progress reporting and the per-replicate hook.
// Observation is synchronous with iteration but never alters it.
func newObserver(o *Options, start time.Time, total int) func(i int, out *outcome) {
	var mu sync.Mutex
	done := 0
	return func(i int, out *outcome) {
		mu.Lock()
		defer mu.Unlock()
		done++
		o.OnReplicate(i, out.res, out.err)
		elapsed := time.Since(start)
		switch {
		case done == 1:
			o.Reporter.Step(1, elapsed*time.Duration(total-1))
		case o.ProgressEvery > 0 && done%o.ProgressEvery == 0:
			perRep := elapsed / time.Duration(done)
			o.Reporter.Step(done, perRep*time.Duration(total-done))
		}
	}
}

// summarize reduces the outcome table into the final Result. Outcomes are
// consumed strictly in replicate-index order, which makes the float
// reductions reproducible for any worker count.
func summarize(runID string, n config.Normalized, tab *design.Table, method string, outcomes []outcome, elapsed time.Duration) (*Result, error) {
	completedResults := make([]fit.Result, 0, len(outcomes))
	replicates := make([]Replicate, 0, len(outcomes))
	meansIn := make([][][2]float64, 0, len(outcomes))
	var datasets []*synth.Dataset
	iccSum := 0.0

	for i := range outcomes {
		out := &outcomes[i]
		if out.ds != nil {
			datasets = append(datasets, out.ds)
		}
		if out.err != nil {
			continue
		}
		completedResults = append(completedResults, out.res)
		replicates = append(replicates, Replicate{
			Index:       i,
			Result:      out.res,
			Significant: out.res.PValue < n.Alpha,
		})
		meansIn = append(meansIn, out.cells)
		iccSum += out.res.ICC
	}

	est, err := Aggregate(completedResults, n.Alpha)
	if err != nil {
		return nil, err
	}

	completed := len(completedResults)
	res := &Result{
		RunID:      runID,
		Topology:   n.Topology,
		Family:     n.Family,
		Method:     method,
		Alpha:      n.Alpha,
		Requested:  len(outcomes),
		Completed:  completed,
		Failed:     len(outcomes) - completed,
		Power:      est,
		ICCInput:   n.ICC(),
		ICCFitted:  iccSum / float64(completed),
		Means:      reduceMeans(tab.Periods, meansIn),
		Crossover:  tab.CrossoverMatrix(),
		Replicates: replicates,
		Datasets:   datasets,
		Elapsed:    elapsed,
	}
	return res, nil
}
