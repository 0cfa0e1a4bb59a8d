// Package recommend produces the placeholder recommendation records for a
// validated preference set.
package recommend

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/benvon/cinemate/internal/catalog"
	"github.com/benvon/cinemate/internal/models"
)

// ErrIncomplete is returned when a criterion the strategy needs is not set
var ErrIncomplete = errors.New("incomplete preferences")

// Generator maps a validated preference set to exactly catalog.CandidateCount records
type Generator interface {
	Generate(d *catalog.Domain, p models.PreferenceSet) ([]models.RecommendationRecord, error)
}

// Source is the randomness a generator draws from
type Source interface {
	Float64() float64
	IntN(n int) int
	Perm(n int) []int
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }
func (globalSource) IntN(n int) int   { return rand.IntN(n) }
func (globalSource) Perm(n int) []int { return rand.Perm(n) }

// GlobalSource draws from the process-wide math/rand/v2 generator
func GlobalSource() Source { return globalSource{} }

// NewSeededSource returns a reproducible source for tests and replays
func NewSeededSource(seed1, seed2 uint64) Source {
	return rand.New(rand.NewPCG(seed1, seed2))
}

// RandomGenerator is the default generator: uniform draws bounded by the user's ranges
type RandomGenerator struct {
	src Source
}

// NewRandomGenerator creates a generator drawing from src; nil selects GlobalSource
func NewRandomGenerator(src Source) *RandomGenerator {
	if src == nil {
		src = GlobalSource()
	}
	return &RandomGenerator{src: src}
}

// Generate dispatches to the domain's strategy
func (g *RandomGenerator) Generate(d *catalog.Domain, p models.PreferenceSet) ([]models.RecommendationRecord, error) {
	if len(d.Candidates) != catalog.CandidateCount {
		return nil, fmt.Errorf("domain %s has %d candidates, want %d", d.Name, len(d.Candidates), catalog.CandidateCount)
	}
	switch d.Strategy {
	case catalog.StrategyRating:
		return g.byRating(d, p)
	case catalog.StrategyPrice:
		return g.byPrice(d, p)
	default:
		return nil, fmt.Errorf("unknown generation strategy %q", d.Strategy)
	}
}

// uniform draws from [lo, hi]; a degenerate interval yields lo
func (g *RandomGenerator) uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + g.src.Float64()*(hi-lo)
}

// intBetween draws an integer from [lo, hi] inclusive
func (g *RandomGenerator) intBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.src.IntN(hi-lo+1)
}

func requireRange(d *catalog.Domain, p models.PreferenceSet, key string) (models.Range, error) {
	r, ok := p.Range(key)
	if !ok {
		return models.Range{}, fmt.Errorf("%w: %s requires %s", ErrIncomplete, d.Name, key)
	}
	if r.Inverted() {
		return models.Range{}, fmt.Errorf("%w: %s is inverted", ErrIncomplete, key)
	}
	return r, nil
}

// echo copies the domain's single choices and numbers into record attributes
func echo(d *catalog.Domain, p models.PreferenceSet) map[string]string {
	attrs := make(map[string]string, len(d.Choices)+len(d.Numbers))
	for _, c := range d.Choices {
		if v, ok := p.Choice(c.Key); ok {
			attrs[c.Key] = v
		}
	}
	for _, n := range d.Numbers {
		if v, ok := p.Number(n.Key); ok {
			attrs[n.Key] = fmt.Sprintf("%g", v)
		}
	}
	return attrs
}
