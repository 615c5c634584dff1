package agent

import (
	"github.com/google/uuid"

	"housesim/pkg/market"
	"housesim/pkg/policy"
)

// Agent is one participant in the matching process. It owns exactly
// one policy instance; callers building many agents from a policy
// template must hand each agent its own instance, since policies may
// carry per-run state.
type Agent struct {
	id      string
	policy  policy.Policy
	history *History
	matched *market.House
	active  bool
}

type AgentParams struct {
	AgentID string
}

type Option func(*AgentParams)

func WithID(id string) Option {
	return func(p *AgentParams) {
		p.AgentID = id
	}
}

func New(pol policy.Policy, opts ...Option) *Agent {
	params := &AgentParams{
		AgentID: "agent-" + uuid.New().String(),
	}
	for _, opt := range opts {
		opt(params)
	}

	return &Agent{
		id:      params.AgentID,
		policy:  pol,
		history: NewHistory(),
		active:  true,
	}
}

func (a *Agent) ID() string {
	return a.id
}

func (a *Agent) Active() bool {
	return a.active
}

// MatchedHouse returns the house this agent accepted, if any.
func (a *Agent) MatchedHouse() (market.House, bool) {
	if a.matched == nil {
		return market.House{}, false
	}
	return *a.matched, true
}

// SeenHouses returns a copy of the agent's observation history in
// exposure order.
func (a *Agent) SeenHouses() []market.House {
	return a.history.Snapshot()
}

// Evaluate shows the agent one house and returns its decision. The
// policy sees the history as it stood before this exposure; the offer
// is appended afterwards regardless of the decision, since seeing a
// house is what calibrates reservation-style policies. An inactive
// agent is inert and returns false with no side effects.
func (a *Agent) Evaluate(house market.House, round, totalRounds, totalAgents, totalHouses, agentsLeft, housesLeft int) bool {
	if !a.active {
		return false
	}

	decision := a.policy.ShouldAccept(house, a.history.Snapshot(), policy.Context{
		TotalRounds: totalRounds,
		RoundsLeft:  totalRounds - round,
		TotalAgents: totalAgents,
		AgentsLeft:  agentsLeft,
		TotalHouses: totalHouses,
		HousesLeft:  housesLeft,
	})

	a.history.Append(house)

	if decision {
		matched := house
		a.matched = &matched
		a.active = false
	}
	return decision
}

// Reset prepares the agent for a fresh run: history and match cleared,
// activity restored, policy state wiped.
func (a *Agent) Reset() {
	a.history.Clear()
	a.matched = nil
	a.active = true
	a.policy.Reset()
}
