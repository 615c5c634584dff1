package experiment

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"housesim/pkg/agent"
	"housesim/pkg/environment"
	"housesim/pkg/market"
	"housesim/pkg/policy"
)

// AgentSpec describes one group of agents sharing a decision strategy.
// New is a factory, not a shared instance: it is called once per agent
// so that policies carrying per-run state (reservation qualities and
// the like) are never shared between agents.
type AgentSpec struct {
	Name  string
	New   func() policy.Policy
	Count int
}

// Options configures a batch of simulation runs.
type Options struct {
	Experiments int
	MaxRounds   int    // <= 0 selects the engine default cap
	Seed        uint64 // base seed; run i uses PCG(Seed, i)
	Workers     int    // <= 0 selects GOMAXPROCS
	Logger      *log.Logger
}

// PolicyStats aggregates outcomes for one agent group across all runs.
type PolicyStats struct {
	Matches     int
	Unmatches   int
	TotalAgents int
	// Qualities holds the quality of every house matched by this
	// group; Exposures holds how many offers each matched agent saw
	// before (and including) the one it took.
	Qualities []float64
	Exposures []int
}

// Summary is the aggregate of a full experiment.
type Summary struct {
	NumExperiments   int
	EfficiencyScores []float64
	MatchRates       []float64
	RoundsTaken      []int
	PolicyStats      map[string]*PolicyStats
}

// runRecord is the per-run slice of a Summary, compact enough to
// outlive the worker's agent objects, which are reused across runs.
type runRecord struct {
	run        int
	efficiency float64
	matchRate  float64
	rounds     int
	groups     map[string]*PolicyStats
}

// Run executes opts.Experiments independent simulations of the given
// agent population against houses drawn fresh from the generator each
// run, and aggregates the results per policy group.
//
// Runs are distributed over a worker pool; each run derives its own
// random source from (Seed, run index) and each worker owns its agent
// objects, so the summary is deterministic for a fixed seed regardless
// of worker count.
func Run(ctx context.Context, specs []AgentSpec, generator market.Generator, opts Options) (*Summary, error) {
	if err := validate(specs, generator, opts); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > opts.Experiments {
		workers = opts.Experiments
	}

	logger.Info("starting experiment",
		"runs", opts.Experiments,
		"workers", workers,
		"seed", opts.Seed,
	)

	jobs := make(chan int)
	records := make(chan runRecord, opts.Experiments)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(specs, generator, opts, jobs, records)
		}()
	}

	dispatchErr := func() error {
		defer close(jobs)
		for run := 0; run < opts.Experiments; run++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- run:
			}
		}
		return nil
	}()

	wg.Wait()
	close(records)

	if dispatchErr != nil {
		return nil, dispatchErr
	}

	collected := make([]runRecord, 0, opts.Experiments)
	for record := range records {
		collected = append(collected, record)
	}
	// Workers finish out of order; aggregation order must not depend
	// on scheduling.
	sort.Slice(collected, func(i, j int) bool {
		return collected[i].run < collected[j].run
	})

	summary := newSummary(specs, len(collected))
	for _, record := range collected {
		summary.EfficiencyScores = append(summary.EfficiencyScores, record.efficiency)
		summary.MatchRates = append(summary.MatchRates, record.matchRate)
		summary.RoundsTaken = append(summary.RoundsTaken, record.rounds)
		for name, partial := range record.groups {
			stats := summary.PolicyStats[name]
			stats.Matches += partial.Matches
			stats.Unmatches += partial.Unmatches
			stats.Qualities = append(stats.Qualities, partial.Qualities...)
			stats.Exposures = append(stats.Exposures, partial.Exposures...)
		}
	}

	logger.Info("experiment finished",
		"runs", summary.NumExperiments,
		"mean_efficiency", Mean(summary.EfficiencyScores),
		"mean_match_rate", Mean(summary.MatchRates),
	)
	return summary, nil
}

func worker(specs []AgentSpec, generator market.Generator, opts Options, jobs <-chan int, records chan<- runRecord) {
	agents, groupOf := buildAgents(specs)

	for run := range jobs {
		rng := rand.New(rand.NewPCG(opts.Seed, uint64(run)))
		houses := generator(rng)

		env := environment.New(rng)
		result := env.Run(agents, houses, opts.MaxRounds)

		records <- observe(run, result, agents, groupOf)
	}
}

// buildAgents instantiates the full population for one worker, each
// agent with a policy fresh from its group's factory.
func buildAgents(specs []AgentSpec) ([]*agent.Agent, map[string]string) {
	agents := make([]*agent.Agent, 0)
	groupOf := make(map[string]string)
	for _, spec := range specs {
		for i := 0; i < spec.Count; i++ {
			id := fmt.Sprintf("%s_%d", spec.Name, i+1)
			agents = append(agents, agent.New(spec.New(), agent.WithID(id)))
			groupOf[id] = spec.Name
		}
	}
	return agents, groupOf
}

// observe flattens one run's result into a record that stays valid
// after the worker's agents are reset for the next run.
func observe(run int, result environment.Result, agents []*agent.Agent, groupOf map[string]string) runRecord {
	record := runRecord{
		run:        run,
		efficiency: result.EfficiencyScore,
		rounds:     result.TotalRounds,
		groups:     make(map[string]*PolicyStats),
	}
	if len(agents) > 0 {
		record.matchRate = float64(len(result.MatchedPairs)) / float64(len(agents))
	}

	group := func(id string) *PolicyStats {
		name := groupOf[id]
		stats, ok := record.groups[name]
		if !ok {
			stats = &PolicyStats{}
			record.groups[name] = stats
		}
		return stats
	}

	for _, match := range result.MatchedPairs {
		stats := group(match.Agent.ID())
		stats.Matches++
		stats.Qualities = append(stats.Qualities, match.House.Quality)
		stats.Exposures = append(stats.Exposures, len(match.Agent.SeenHouses()))
	}
	for _, unmatched := range result.UnmatchedAgents {
		group(unmatched.ID()).Unmatches++
	}
	return record
}

func newSummary(specs []AgentSpec, numExperiments int) *Summary {
	summary := &Summary{
		NumExperiments:   numExperiments,
		EfficiencyScores: make([]float64, 0, numExperiments),
		MatchRates:       make([]float64, 0, numExperiments),
		RoundsTaken:      make([]int, 0, numExperiments),
		PolicyStats:      make(map[string]*PolicyStats),
	}
	for _, spec := range specs {
		summary.PolicyStats[spec.Name] = &PolicyStats{
			TotalAgents: spec.Count * numExperiments,
		}
	}
	return summary
}

func validate(specs []AgentSpec, generator market.Generator, opts Options) error {
	if opts.Experiments <= 0 {
		return fmt.Errorf("experiments must be positive, got %d", opts.Experiments)
	}
	if generator == nil {
		return fmt.Errorf("house generator is required")
	}
	if len(specs) == 0 {
		return fmt.Errorf("at least one agent spec is required")
	}
	seen := make(map[string]bool)
	for _, spec := range specs {
		if spec.Name == "" {
			return fmt.Errorf("agent spec name is required")
		}
		if seen[spec.Name] {
			return fmt.Errorf("duplicate agent spec name %q", spec.Name)
		}
		seen[spec.Name] = true
		if spec.New == nil {
			return fmt.Errorf("agent spec %q has no policy factory", spec.Name)
		}
		if spec.Count <= 0 {
			return fmt.Errorf("agent spec %q must have a positive count, got %d", spec.Name, spec.Count)
		}
	}
	return nil
}
