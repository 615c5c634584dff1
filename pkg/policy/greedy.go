package policy

import "housesim/pkg/market"

// Greedy accepts whatever it is offered first. Since acceptance
// deactivates the agent, only the first call ever matters.
type Greedy struct{}

func NewGreedy() *Greedy {
	return &Greedy{}
}

func (*Greedy) ShouldAccept(market.House, []market.House, Context) bool {
	return true
}

func (*Greedy) Reset() {}
