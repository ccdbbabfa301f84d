// Package power: human-readable result rendering.
package power

import (
	"fmt"
	"math"
	"strings"
)

// Overview renders the run summary consumed by reporting layers: design,
// method, replicate counts, the power estimate with its interval, and the
// ICC diagnostic pair.
func (r *Result) Overview() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Monte Carlo power estimation for a %s cluster-randomized trial\n", r.Topology)
	fmt.Fprintf(&b, "family: %s | method: %s | alpha: %g\n", r.Family, r.Method, r.Alpha)
	fmt.Fprintf(&b, "replicates: %d completed of %d requested (%d failed to fit)\n",
		r.Completed, r.Requested, r.Failed)
	fmt.Fprintf(&b, "power: %.4f (%.0f%% CI %.4f to %.4f)\n",
		r.Power.Power, 100*(1-r.Alpha), r.Power.Lower, r.Power.Upper)
	fmt.Fprintf(&b, "ICC: %.4f specified, %.4f fitted\n", r.ICCInput, r.ICCFitted)

	if len(r.Means) > 0 {
		b.WriteString("period means (control / treatment):\n")
		for p, cells := range r.Means {
			fmt.Fprintf(&b, "  period %d: %s / %s\n", p, fmtCell(cells[0]), fmtCell(cells[1]))
		}
	}
	if r.Crossover != nil {
		b.WriteString("crossover matrix (clusters x steps):\n")
		for _, row := range r.Crossover {
			b.WriteString("  ")
			for _, v := range row {
				fmt.Fprintf(&b, "%d ", v)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func fmtCell(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}
