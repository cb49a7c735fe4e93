// Package sampler draws the random values used to fill the form. Every draw
// is rounded to two decimals and rejection-sampled with a bounded budget.
package sampler

import (
	"errors"
	"math"
	"math/rand"

	"github.com/ziadkadry99/ecoform/internal/schema"
)

// DefaultMaxDraws bounds every rejection loop.
const DefaultMaxDraws = 1000

// ErrExhausted is returned when a rejection loop runs out of draws.
var ErrExhausted = errors.New("sampler: draw budget exhausted")

// Probabilities of the ConstrainedCf tiers.
const (
	normalTierProbability = 0.8
	lowTailProbability    = 0.5
)

// Sampler produces rounded random values from an injected source.
type Sampler struct {
	rng      *rand.Rand
	maxDraws int
}

// New creates a Sampler. maxDraws <= 0 selects DefaultMaxDraws.
func New(rng *rand.Rand, maxDraws int) *Sampler {
	if maxDraws <= 0 {
		maxDraws = DefaultMaxDraws
	}
	return &Sampler{rng: rng, maxDraws: maxDraws}
}

// MaxDraws returns the per-value draw budget.
func (s *Sampler) MaxDraws() int { return s.maxDraws }

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// UniformOpen01 returns a two-decimal value strictly inside (0,1).
func (s *Sampler) UniformOpen01() (float64, error) {
	for i := 0; i < s.maxDraws; i++ {
		v := round2(s.rng.Float64())
		if v > 0 && v < 1 {
			return v, nil
		}
	}
	return 0, ErrExhausted
}

// ConstrainedCf returns a two-decimal value in (0,1) that lands in the normal
// band (0.3,0.9) with probability 0.8, otherwise in the low tail (0.2,0.3) or
// the high tail [0.9,1) with equal probability. The tier is chosen once and
// redrawn within until a value fits.
func (s *Sampler) ConstrainedCf() (float64, error) {
	t := highTail
	if s.rng.Float64() < normalTierProbability {
		t = normalBand
	} else if s.rng.Float64() < lowTailProbability {
		t = lowTail
	}

	for i := 0; i < s.maxDraws; i++ {
		v := round2(t.lo + s.rng.Float64()*t.span)
		if t.accept(v) && v > 0 && v < 1 {
			return v, nil
		}
	}
	return 0, ErrExhausted
}

// tier is one band of the ConstrainedCf distribution.
type tier struct {
	lo, span float64
	accept   func(float64) bool
}

var (
	normalBand = tier{0.3, 0.6, func(v float64) bool { return v > 0.3 && v < 0.9 }}
	lowTail    = tier{0.2, 0.1, func(v float64) bool { return v > 0.2 && v < 0.3 }}
	highTail   = tier{0.9, 0.1, func(v float64) bool { return v < 1 }}
)

// ConstrainedBelow draws ConstrainedCf values until one is strictly below
// limit.
func (s *Sampler) ConstrainedBelow(limit float64) (float64, error) {
	for i := 0; i < s.maxDraws; i++ {
		v, err := s.ConstrainedCf()
		if err != nil {
			return 0, err
		}
		if v < limit {
			return v, nil
		}
	}
	return 0, ErrExhausted
}

// Below returns a two-decimal value uniformly drawn from (0, limit). It fails
// when no two-decimal value fits, i.e. limit <= 0.01.
func (s *Sampler) Below(limit float64) (float64, error) {
	// Largest k with k/100 < limit; the epsilon absorbs 0.21*100 = 21.000000000000004.
	kmax := int(math.Ceil(limit*100-1e-9)) - 1
	if kmax < 1 {
		return 0, ErrExhausted
	}
	return round2(float64(1+s.rng.Intn(kmax)) / 100), nil
}

// PickTimeValue returns one of the form's time checkpoints.
func (s *Sampler) PickTimeValue() float64 {
	return schema.TimeCheckpoints[s.rng.Intn(len(schema.TimeCheckpoints))]
}
