package policy

import "housesim/pkg/market"

// OptimalStopping implements the classic secretary-style rule: observe
// the first floor(totalHouses * ExplorationRatio) offers without
// accepting, remember the best quality seen in that window, then take
// the first offer that beats it.
//
// The memoized reservation quality is per-run state; Reset clears it.
// The forced last-round acceptance takes priority over the exploration
// phase, so a run whose cap truncates exploration still ends with a
// settled agent when an offer lands on the final round.
type OptimalStopping struct {
	ExplorationRatio float64

	reservation *float64
}

func NewOptimalStopping(explorationRatio float64) *OptimalStopping {
	return &OptimalStopping{ExplorationRatio: explorationRatio}
}

func (p *OptimalStopping) ShouldAccept(offer market.House, seen []market.House, ctx Context) bool {
	if ctx.RoundsLeft == 0 {
		return true
	}

	explorationLen := int(float64(ctx.TotalHouses) * p.ExplorationRatio)
	if len(seen) < explorationLen {
		return false
	}

	if p.reservation == nil {
		best := 0.0
		if explorationLen > 0 && len(seen) > 0 {
			best = seen[0].Quality
			for _, house := range seen[1:explorationLen] {
				if house.Quality > best {
					best = house.Quality
				}
			}
		}
		p.reservation = &best
	}

	return offer.Quality > *p.reservation
}

func (p *OptimalStopping) Reset() {
	p.reservation = nil
}
