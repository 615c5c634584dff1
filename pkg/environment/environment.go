package environment

import (
	"io"
	"math/rand/v2"
	"sort"

	"github.com/charmbracelet/log"

	"housesim/pkg/agent"
	"housesim/pkg/market"
)

// Match pairs an agent with the house it accepted.
type Match struct {
	Agent *agent.Agent
	House market.House
}

// Result is the immutable outcome of one simulation run.
type Result struct {
	MatchedPairs    []Match
	UnmatchedAgents []*agent.Agent
	UnmatchedHouses []market.House
	TotalRounds     int
	EfficiencyScore float64
}

// Environment drives one simulation run: it builds the round schedule,
// pairs active agents with available houses at random, invokes agent
// decisions, and scores the resulting allocation.
//
// Randomness is the only nondeterminism: with a fixed source, a run is
// a pure function of its inputs. The environment holds no state across
// runs and never touches the global random generator, so independent
// runs with independent sources and independently reset agents are
// safe to execute in parallel.
type Environment struct {
	rng    *rand.Rand
	logger *log.Logger
}

type Option func(*Environment)

func WithLogger(logger *log.Logger) Option {
	return func(e *Environment) {
		e.logger = logger
	}
}

func New(rng *rand.Rand, opts ...Option) *Environment {
	e := &Environment{
		rng:    rng,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes a full simulation. maxRounds <= 0 selects the default
// cap of 2*min(|agents|, |houses|), which bounds total work even if no
// agent ever accepts. Every agent is reset before the first round.
func (e *Environment) Run(agents []*agent.Agent, houses []market.House, maxRounds int) Result {
	for _, a := range agents {
		a.Reset()
	}

	activeAgents := make([]*agent.Agent, 0, len(agents))
	for _, a := range agents {
		if a.Active() {
			activeAgents = append(activeAgents, a)
		}
	}
	availableHouses := make([]market.House, len(houses))
	copy(availableHouses, houses)

	totalAgents := len(agents)
	totalHouses := len(houses)

	if maxRounds <= 0 {
		maxRounds = 2 * min(totalAgents, totalHouses)
	}

	matchedPairs := make([]Match, 0)
	round := 0

	for len(activeAgents) > 0 && len(availableHouses) > 0 && round < maxRounds {
		round++

		pairedAgents, pairedHouses := e.drawPairs(activeAgents, availableHouses)

		// Decisions in this round are evaluated against the counts as
		// they stood when the round began.
		agentsLeft := len(activeAgents)
		housesLeft := len(availableHouses)

		taken := make(map[string]bool)
		for i, a := range pairedAgents {
			house := pairedHouses[i]
			if a.Evaluate(house, round, maxRounds, totalAgents, totalHouses, agentsLeft, housesLeft) {
				matchedPairs = append(matchedPairs, Match{Agent: a, House: house})
				taken[house.ID] = true
				e.logger.Debug("agent matched", "agent", a.ID(), "house", house.ID, "quality", house.Quality, "round", round)
			}
		}

		if len(taken) > 0 {
			remaining := availableHouses[:0]
			for _, house := range availableHouses {
				if !taken[house.ID] {
					remaining = append(remaining, house)
				}
			}
			availableHouses = remaining
		}

		stillActive := activeAgents[:0]
		for _, a := range activeAgents {
			if a.Active() {
				stillActive = append(stillActive, a)
			}
		}
		activeAgents = stillActive
	}

	unmatchedAgents := make([]*agent.Agent, 0)
	for _, a := range agents {
		if _, ok := a.MatchedHouse(); !ok {
			unmatchedAgents = append(unmatchedAgents, a)
		}
	}

	result := Result{
		MatchedPairs:    matchedPairs,
		UnmatchedAgents: unmatchedAgents,
		UnmatchedHouses: availableHouses,
		TotalRounds:     round,
		EfficiencyScore: efficiency(matchedPairs, agents, houses),
	}
	e.logger.Info("simulation finished",
		"rounds", result.TotalRounds,
		"matched", len(result.MatchedPairs),
		"efficiency", result.EfficiencyScore,
	)
	return result
}

// drawPairs draws two independent uniform size-k subsets, one of
// agents and one of houses, without replacement, and pairs them
// index-for-index. The cross-draw pairing order is itself uniform, so
// index pairing carries no bias.
func (e *Environment) drawPairs(agents []*agent.Agent, houses []market.House) ([]*agent.Agent, []market.House) {
	k := min(len(agents), len(houses))

	agentIdx := e.rng.Perm(len(agents))[:k]
	houseIdx := e.rng.Perm(len(houses))[:k]

	pairedAgents := make([]*agent.Agent, k)
	pairedHouses := make([]market.House, k)
	for i := 0; i < k; i++ {
		pairedAgents[i] = agents[agentIdx[i]]
		pairedHouses[i] = houses[houseIdx[i]]
	}
	return pairedAgents, pairedHouses
}

// efficiency is the quality sum of the matched houses over the best
// quality sum an omniscient matcher could reach with the same
// population sizes. It is a normalized yield, not a claim about
// optimality among online policies.
func efficiency(matched []Match, agents []*agent.Agent, houses []market.House) float64 {
	achieved := 0.0
	for _, m := range matched {
		achieved += m.House.Quality
	}

	k := min(len(agents), len(houses))
	sorted := make([]market.House, len(houses))
	copy(sorted, houses)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Quality > sorted[j].Quality
	})
	ideal := 0.0
	for _, house := range sorted[:k] {
		ideal += house.Quality
	}

	if ideal <= 0 {
		return 0
	}
	return achieved / ideal
}
