package montecarlo

import (
	"math"
	"math/rand/v2"
)

// ClampedNormal is a normal distribution with draws pinned into [Floor, Ceiling].
// A nil Ceiling leaves the upper side open.
type ClampedNormal struct {
	Mean    float64
	StdDev  float64
	Floor   float64
	Ceiling *float64
}

// Sample draws one value.
func (d ClampedNormal) Sample(rng *rand.Rand) float64 {
	return d.pin(rng.NormFloat64()*d.StdDev + d.Mean)
}

func (d ClampedNormal) pin(v float64) float64 {
	v = math.Max(v, d.Floor)
	if d.Ceiling != nil {
		v = math.Min(v, *d.Ceiling)
	}
	return v
}

// Fill draws len(dst) values into dst.
func (d ClampedNormal) Fill(rng *rand.Rand, dst []float64) {
	for i := range dst {
		dst[i] = d.Sample(rng)
	}
}
