package policy

import "housesim/pkg/market"

// Context carries the market information an agent is allowed to see
// when deciding on an offer. AgentsLeft and HousesLeft are snapshots
// taken at the start of the round, not live counts, so decision order
// within a round carries no information.
type Context struct {
	TotalRounds int // the round cap in effect for this run
	RoundsLeft  int // rounds remaining before the cap, 0 on the final round
	TotalAgents int
	AgentsLeft  int
	TotalHouses int
	HousesLeft  int
}

// Policy decides whether an agent accepts the house currently on
// offer. seen holds every house the agent was previously offered, in
// exposure order, and never includes the current offer.
//
// Policies may carry per-run state (a memoized reservation quality,
// a conversation transcript). Reset must clear that state so the same
// instance can serve across independent runs. Stateless policies
// implement Reset as a no-op.
type Policy interface {
	ShouldAccept(offer market.House, seen []market.House, ctx Context) bool
	Reset()
}
