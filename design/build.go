// Package design: the deterministic assignment-table builder.
package design

import "github.com/trialforge/crtpower/config"

// Build constructs the assignment table for the given specification.
//
// Contract: deterministic, no randomness; identical Spec values yield
// identical tables. The returned Table and everything it references is
// freshly allocated and never mutated afterwards.
//
// Complexity: O(N) for parallel (N subjects) and O(N*(S+1)) for
// stepped-wedge (one row per subject-period cell).
func Build(spec Spec) (*Table, error) {
	if len(spec.ClusterSizes) == 0 {
		return nil, ErrEmptySpec
	}
	for _, s := range spec.ClusterSizes {
		if s < 1 {
			return nil, ErrEmptySpec
		}
	}
	switch spec.Topology {
	case config.SteppedWedge:
		return buildSteppedWedge(spec)
	default:
		return buildParallel(spec)
	}
}

// buildParallel lays out arm-0 clusters first, then arm-1 clusters, with
// cluster IDs incrementing across both arms without overlap. One period,
// treatment indicator equal to the arm.
func buildParallel(spec Spec) (*Table, error) {
	clusters := len(spec.ClusterSizes)
	if spec.ArmSplit < 1 || spec.ArmSplit >= clusters {
		return nil, ErrEmptySpec
	}

	total := 0
	for _, s := range spec.ClusterSizes {
		total += s
	}

	t := &Table{
		Topology: spec.Topology,
		Rows:     make([]Row, 0, total),
		Clusters: clusters,
		Periods:  1,
		Subjects: total,
		ArmOf:    make([]int, clusters),
	}

	subject := 0
	for k := 0; k < clusters; k++ {
		arm := 0
		if k >= spec.ArmSplit {
			arm = 1
		}
		t.ArmOf[k] = arm
		for s := 0; s < spec.ClusterSizes[k]; s++ {
			t.Rows = append(t.Rows, Row{
				Subject: subject,
				Cluster: k,
				Period:  0,
				Treat:   arm,
			})
			subject++
		}
	}
	return t, nil
}

// buildSteppedWedge assigns every cluster a crossover step from the
// cumulative schedule, then emits one row per (subject, period) cell with
// Treat=1 iff the period is at or past the cluster's step. Clusters beyond
// the schedule total never cross over (step Steps+1).
func buildSteppedWedge(spec Spec) (*Table, error) {
	clusters := len(spec.ClusterSizes)
	steps := spec.Steps
	if steps < 1 || len(spec.Cumulative) != steps {
		return nil, ErrBadSchedule
	}

	// Expand the cumulative schedule into a per-cluster step assignment.
	stepOf := make([]int, clusters)
	prev := 0
	for j, cum := range spec.Cumulative {
		if cum < prev || cum > clusters {
			return nil, ErrBadSchedule
		}
		for k := prev; k < cum; k++ {
			stepOf[k] = j + 1
		}
		prev = cum
	}
	for k := prev; k < clusters; k++ {
		stepOf[k] = steps + 1 // never crosses over
	}

	total := 0
	for _, s := range spec.ClusterSizes {
		total += s
	}
	periods := steps + 1

	t := &Table{
		Topology: spec.Topology,
		Rows:     make([]Row, 0, total*periods),
		Clusters: clusters,
		Periods:  periods,
		Subjects: total,
		ArmOf:    make([]int, clusters), // all arm 0: treatment varies by period
		StepOf:   stepOf,
	}

	// Cluster-major, then period, then subject: cluster rows stay
	// contiguous for the fitters.
	subjectBase := 0
	for k := 0; k < clusters; k++ {
		size := spec.ClusterSizes[k]
		for p := 0; p < periods; p++ {
			treat := 0
			if p >= stepOf[k] {
				treat = 1
			}
			for s := 0; s < size; s++ {
				t.Rows = append(t.Rows, Row{
					Subject: subjectBase + s,
					Cluster: k,
					Period:  p,
					Treat:   treat,
				})
			}
		}
		subjectBase += size
	}
	return t, nil
}
