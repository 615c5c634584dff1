package policy

import (
	"testing"

	"housesim/pkg/market"
)

func house(quality float64) market.House {
	return market.House{ID: "h", Quality: quality}
}

func TestGreedyAlwaysAccepts(t *testing.T) {
	p := NewGreedy()
	if !p.ShouldAccept(house(0.1), nil, Context{TotalRounds: 10, RoundsLeft: 9}) {
		t.Fatal("greedy rejected an offer")
	}
}

func TestThreshold(t *testing.T) {
	p := NewThreshold(6.0)
	ctx := Context{TotalRounds: 10, RoundsLeft: 5}

	t.Run("rejects below threshold", func(t *testing.T) {
		if p.ShouldAccept(house(5.9), nil, ctx) {
			t.Fatal("accepted a house below threshold")
		}
	})

	t.Run("accepts at and above threshold", func(t *testing.T) {
		if !p.ShouldAccept(house(6.0), nil, ctx) {
			t.Fatal("rejected a house at threshold")
		}
		if !p.ShouldAccept(house(9.5), nil, ctx) {
			t.Fatal("rejected a house above threshold")
		}
	})

	t.Run("forced acceptance on last round", func(t *testing.T) {
		last := Context{TotalRounds: 10, RoundsLeft: 0}
		if !p.ShouldAccept(house(1.0), nil, last) {
			t.Fatal("no forced acceptance when rounds_left == 0")
		}
	})
}

func TestOptimalStopping(t *testing.T) {
	// exploration_ratio 0.5 with 4 houses: observe 2, then accept the
	// first offer beating the best of those 2.
	ctx := Context{TotalRounds: 10, RoundsLeft: 5, TotalHouses: 4}

	t.Run("rejects during exploration", func(t *testing.T) {
		p := NewOptimalStopping(0.5)
		if p.ShouldAccept(house(9.9), nil, ctx) {
			t.Fatal("accepted the first exposure during exploration")
		}
		if p.ShouldAccept(house(9.9), []market.House{house(9.9)}, ctx) {
			t.Fatal("accepted the second exposure during exploration")
		}
	})

	t.Run("accepts first offer beating the reservation", func(t *testing.T) {
		p := NewOptimalStopping(0.5)
		seen := []market.House{house(4.0), house(7.0)}

		if p.ShouldAccept(house(7.0), seen, ctx) {
			t.Fatal("accepted an offer equal to the reservation quality")
		}
		if !p.ShouldAccept(house(7.1), seen, ctx) {
			t.Fatal("rejected an offer beating the reservation quality")
		}
	})

	t.Run("reservation is memoized until reset", func(t *testing.T) {
		p := NewOptimalStopping(0.5)
		seen := []market.House{house(4.0), house(7.0)}
		p.ShouldAccept(house(5.0), seen, ctx)

		// Later calls must keep the original reservation even if the
		// exploration window contents would now differ.
		grew := []market.House{house(1.0), house(2.0), house(5.0)}
		if p.ShouldAccept(house(6.0), grew, ctx) {
			t.Fatal("reservation was recomputed mid-run")
		}

		p.Reset()
		if !p.ShouldAccept(house(6.0), grew, ctx) {
			t.Fatal("reservation survived Reset")
		}
	})

	t.Run("forced acceptance overrides exploration", func(t *testing.T) {
		p := NewOptimalStopping(0.5)
		last := Context{TotalRounds: 1, RoundsLeft: 0, TotalHouses: 4}
		if !p.ShouldAccept(house(0.5), nil, last) {
			t.Fatal("exploration phase suppressed forced last-round acceptance")
		}
	})

	t.Run("zero exploration window", func(t *testing.T) {
		p := NewOptimalStopping(0.0)
		if !p.ShouldAccept(house(3.0), nil, ctx) {
			t.Fatal("zero-length exploration should accept any positive-quality offer")
		}
	})
}
