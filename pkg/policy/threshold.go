package policy

import "housesim/pkg/market"

// Threshold accepts any house at or above a fixed quality bar. On the
// final round it accepts unconditionally: an agent that held out the
// whole run settles for whatever is in front of it rather than leave
// with nothing.
type Threshold struct {
	Quality float64
}

func NewThreshold(quality float64) *Threshold {
	return &Threshold{Quality: quality}
}

func (p *Threshold) ShouldAccept(offer market.House, _ []market.House, ctx Context) bool {
	if ctx.RoundsLeft == 0 {
		return true
	}
	return offer.Quality >= p.Quality
}

func (*Threshold) Reset() {}
