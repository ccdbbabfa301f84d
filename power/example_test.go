package power_test

import (
	"fmt"

	"github.com/trialforge/crtpower/config"
	"github.com/trialforge/crtpower/power"
)

// ExampleRun estimates power for a well-powered parallel gaussian trial.
// The exact estimate is seed-dependent; the scenario is strong enough that
// it always clears 90%.
func ExampleRun() {
	f := func(v float64) *float64 { return &v }
	cfg := config.Config{
		Topology:     config.Parallel,
		NSim:         200,
		Seed:         42,
		ClustersArm1: 10,
		ClustersArm2: 10,
		Subjects:     25,
		Mu1:          f(0),
		Mu2:          f(1),
		TotalVar:     1,
		BetweenVar:   0.02,
	}

	res, err := power.Run(cfg, power.WithWorkers(4))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("completed:", res.Completed)
	fmt.Println("power above 0.9:", res.Power.Power > 0.9)
	// Output:
	// completed: 200
	// power above 0.9: true
}

// ExampleAggregate reduces a hand-made set of replicate p-values into a
// power estimate with its Wald interval.
func ExampleAggregate() {
	results := results(0.001, 0.03, 0.2, 0.004, 0.6)
	est, err := power.Aggregate(results, 0.05)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("power: %.1f\n", est.Power)
	// Output:
	// power: 0.6
}
