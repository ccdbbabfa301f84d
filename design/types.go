// Package design: assignment-table types and sentinel errors.
package design

import (
	"errors"

	"github.com/trialforge/crtpower/config"
)

// Sentinel errors for design construction. Build receives validated input
// in the normal pipeline, so these guard direct library callers only.
var (
	// ErrEmptySpec is returned when the specification has no clusters or a
	// cluster with no subjects.
	ErrEmptySpec = errors.New("design: empty specification")

	// ErrBadSchedule is returned when a stepped-wedge step assignment is
	// structurally impossible (cumulative count exceeding the cluster
	// count, or a non-monotone cumulative vector).
	ErrBadSchedule = errors.New("design: inconsistent crossover schedule")
)

// Spec is the design-relevant slice of a validated configuration.
type Spec struct {
	Topology Topology

	// ClusterSizes has one entry per cluster.
	ClusterSizes []int

	// ArmSplit is the number of arm-0 clusters (parallel only); clusters
	// at index >= ArmSplit belong to arm 1.
	ArmSplit int

	// Steps and Cumulative give the stepped-wedge schedule in cumulative
	// form: Cumulative[j] clusters have crossed over by the end of step
	// j+1. Empty for parallel.
	Steps      int
	Cumulative []int
}

// Topology aliases the validated configuration enumeration so callers can
// carry a single tagged variant through the whole pipeline.
type Topology = config.Topology

// SpecFromConfig projects a validated configuration onto a Spec.
func SpecFromConfig(n config.Normalized) Spec {
	return Spec{
		Topology:     n.Topology,
		ClusterSizes: append([]int(nil), n.ClusterSizes...),
		ArmSplit:     n.ClustersArm1,
		Steps:        n.Steps,
		Cumulative:   append([]int(nil), n.Cumulative...),
	}
}

// Row is one (subject, period) observation cell in long format.
type Row struct {
	// Subject is a stable, globally unique subject index; for stepped-
	// wedge the same subject appears once per period.
	Subject int

	// Cluster is the subject's cluster ID in 0..Clusters-1.
	Cluster int

	// Period is 0 for parallel designs; 0..Steps for stepped-wedge.
	Period int

	// Treat is the treatment indicator (0/1) for this cell.
	Treat int
}

// Table is the immutable per-subject assignment structure for one run.
// Nothing mutates a Table after Build returns; replicate workers share it.
type Table struct {
	Topology Topology

	Rows []Row

	// Clusters, Periods and Subjects are the table's dimensions.
	Clusters int
	Periods  int
	Subjects int

	// ArmOf maps cluster -> arm (0/1). For stepped-wedge every cluster is
	// arm 0: treatment varies by period, not by cluster.
	ArmOf []int

	// StepOf maps cluster -> crossover step in 1..Steps, or Steps+1 for a
	// cluster that never crosses over. Nil for parallel designs.
	StepOf []int
}

// TreatedAt reports whether cluster k is under treatment at period p.
// Parallel designs ignore p. Complexity: O(1).
func (t *Table) TreatedAt(k, p int) bool {
	if t.Topology == config.Parallel {
		return t.ArmOf[k] == 1
	}
	return p >= t.StepOf[k]
}

// CrossoverMatrix returns the clusters x steps 0/1 matrix recording at
// which step each cluster is under treatment. Nil for parallel designs.
// Complexity: O(K*S).
func (t *Table) CrossoverMatrix() [][]int {
	if t.StepOf == nil {
		return nil
	}
	steps := t.Periods - 1
	m := make([][]int, t.Clusters)
	for k := 0; k < t.Clusters; k++ {
		m[k] = make([]int, steps)
		for j := 1; j <= steps; j++ {
			if j >= t.StepOf[k] {
				m[k][j-1] = 1
			}
		}
	}
	return m
}
