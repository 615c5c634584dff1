package experiment

import (
	"context"
	"reflect"
	"testing"

	"housesim/pkg/market"
	"housesim/pkg/policy"
)

func testSpecs() []AgentSpec {
	return []AgentSpec{
		{Name: "Greedy", New: func() policy.Policy { return policy.NewGreedy() }, Count: 3},
		{Name: "Threshold_6", New: func() policy.Policy { return policy.NewThreshold(6.0) }, Count: 3},
		{Name: "Optimal_Stopping", New: func() policy.Policy { return policy.NewOptimalStopping(0.2) }, Count: 3},
	}
}

func TestRunAggregates(t *testing.T) {
	specs := testSpecs()
	generator := market.Uniform(20, 1.0, 10.0)
	opts := Options{Experiments: 10, MaxRounds: 15, Seed: 42}

	summary, err := Run(context.Background(), specs, generator, opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.NumExperiments != 10 {
		t.Errorf("NumExperiments = %d, want 10", summary.NumExperiments)
	}
	if len(summary.EfficiencyScores) != 10 || len(summary.MatchRates) != 10 || len(summary.RoundsTaken) != 10 {
		t.Fatalf("per-run series have wrong lengths: %d %d %d",
			len(summary.EfficiencyScores), len(summary.MatchRates), len(summary.RoundsTaken))
	}

	for _, spec := range specs {
		stats, ok := summary.PolicyStats[spec.Name]
		if !ok {
			t.Fatalf("missing stats for %s", spec.Name)
		}
		if stats.TotalAgents != spec.Count*10 {
			t.Errorf("%s TotalAgents = %d, want %d", spec.Name, stats.TotalAgents, spec.Count*10)
		}
		if stats.Matches+stats.Unmatches != stats.TotalAgents {
			t.Errorf("%s matches+unmatches = %d, want %d",
				spec.Name, stats.Matches+stats.Unmatches, stats.TotalAgents)
		}
		if len(stats.Qualities) != stats.Matches || len(stats.Exposures) != stats.Matches {
			t.Errorf("%s has %d qualities and %d exposures for %d matches",
				spec.Name, len(stats.Qualities), len(stats.Exposures), stats.Matches)
		}
	}

	// With 9 agents and 20 houses every greedy agent matches in its
	// first exposure.
	greedy := summary.PolicyStats["Greedy"]
	if greedy.Matches != greedy.TotalAgents {
		t.Errorf("greedy matched %d of %d agents", greedy.Matches, greedy.TotalAgents)
	}
	for _, exposures := range greedy.Exposures {
		if exposures != 1 {
			t.Errorf("greedy agent needed %d exposures", exposures)
		}
	}
}

func TestRunDeterministicAcrossWorkerCounts(t *testing.T) {
	generator := market.Uniform(15, 1.0, 10.0)

	run := func(workers int) *Summary {
		summary, err := Run(context.Background(), testSpecs(), generator, Options{
			Experiments: 8,
			MaxRounds:   10,
			Seed:        7,
			Workers:     workers,
		})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return summary
	}

	serial := run(1)
	parallel := run(4)

	if !reflect.DeepEqual(serial.EfficiencyScores, parallel.EfficiencyScores) {
		t.Errorf("efficiency scores differ across worker counts:\n%v\n%v",
			serial.EfficiencyScores, parallel.EfficiencyScores)
	}
	if !reflect.DeepEqual(serial.RoundsTaken, parallel.RoundsTaken) {
		t.Errorf("rounds differ across worker counts:\n%v\n%v", serial.RoundsTaken, parallel.RoundsTaken)
	}
	if !reflect.DeepEqual(serial.PolicyStats, parallel.PolicyStats) {
		t.Errorf("policy stats differ across worker counts")
	}
}

func TestRunValidation(t *testing.T) {
	generator := market.Uniform(5, 1.0, 10.0)
	ctx := context.Background()

	cases := []struct {
		name  string
		specs []AgentSpec
		opts  Options
	}{
		{"no experiments", testSpecs(), Options{Experiments: 0}},
		{"no specs", nil, Options{Experiments: 1}},
		{"missing factory", []AgentSpec{{Name: "x", Count: 1}}, Options{Experiments: 1}},
		{"zero count", []AgentSpec{{Name: "x", New: func() policy.Policy { return policy.NewGreedy() }, Count: 0}}, Options{Experiments: 1}},
		{"unnamed spec", []AgentSpec{{New: func() policy.Policy { return policy.NewGreedy() }, Count: 1}}, Options{Experiments: 1}},
		{"duplicate names", []AgentSpec{
			{Name: "x", New: func() policy.Policy { return policy.NewGreedy() }, Count: 1},
			{Name: "x", New: func() policy.Policy { return policy.NewGreedy() }, Count: 1},
		}, Options{Experiments: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Run(ctx, tc.specs, generator, tc.opts); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}

	t.Run("nil generator", func(t *testing.T) {
		if _, err := Run(ctx, testSpecs(), nil, Options{Experiments: 1}); err == nil {
			t.Fatal("expected a validation error")
		}
	})
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testSpecs(), market.Uniform(5, 1.0, 10.0), Options{
		Experiments: 1000,
		Seed:        1,
		Workers:     1,
	})
	if err == nil {
		t.Fatal("expected an error from a canceled context")
	}
}
