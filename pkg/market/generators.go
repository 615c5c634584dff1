package market

import (
	"fmt"
	"math/rand/v2"
)

// Generator produces the house collection for one simulation run. The
// engine places no distributional constraint on the output; only the
// identifiers need to be unique within a run.
type Generator func(rng *rand.Rand) []House

// Uniform returns a generator producing n houses with quality drawn
// uniformly from [minQuality, maxQuality].
func Uniform(n int, minQuality, maxQuality float64) Generator {
	return func(rng *rand.Rand) []House {
		houses := make([]House, 0, n)
		for i := 0; i < n; i++ {
			quality := minQuality + rng.Float64()*(maxQuality-minQuality)
			houses = append(houses, House{ID: fmt.Sprintf("house_%d", i+1), Quality: quality})
		}
		return houses
	}
}

// Normal returns a generator producing n houses with normally
// distributed quality, clamped to the [1, 10] scale.
func Normal(n int, mean, stddev float64) Generator {
	return func(rng *rand.Rand) []House {
		houses := make([]House, 0, n)
		for i := 0; i < n; i++ {
			quality := clamp(mean+rng.NormFloat64()*stddev, 1.0, 10.0)
			houses = append(houses, House{ID: fmt.Sprintf("house_%d", i+1), Quality: quality})
		}
		return houses
	}
}

// Bimodal returns a generator mixing a low-quality and a high-quality
// market segment. Each house comes from the high segment with
// probability highProb, qualities clamped to [1, 10].
func Bimodal(n int, lowMean, highMean, stddev, highProb float64) Generator {
	return func(rng *rand.Rand) []House {
		houses := make([]House, 0, n)
		for i := 0; i < n; i++ {
			mean := lowMean
			if rng.Float64() < highProb {
				mean = highMean
			}
			quality := clamp(mean+rng.NormFloat64()*stddev, 1.0, 10.0)
			houses = append(houses, House{ID: fmt.Sprintf("house_%d", i+1), Quality: quality})
		}
		return houses
	}
}

// Fixed returns a generator that hands out the same houses every run.
// Useful for deterministic experiments and tests.
func Fixed(houses []House) Generator {
	return func(*rand.Rand) []House {
		out := make([]House, len(houses))
		copy(out, houses)
		return out
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
