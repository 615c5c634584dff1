package agent

import "housesim/pkg/market"

// History is an agent's append-only stream of observed houses. Every
// offer the agent is shown lands here exactly once, in exposure order,
// whether or not it was accepted.
type History struct {
	stream []market.House
}

func NewHistory() *History {
	return &History{stream: make([]market.House, 0)}
}

// Snapshot returns a copy of the stream so callers can hand it to a
// policy without exposing the backing slice to mutation.
func (h *History) Snapshot() []market.House {
	seen := make([]market.House, len(h.stream))
	copy(seen, h.stream)
	return seen
}

func (h *History) Append(house market.House) {
	h.stream = append(h.stream, house)
}

func (h *History) Len() int {
	return len(h.stream)
}

func (h *History) Clear() {
	h.stream = h.stream[:0]
}
