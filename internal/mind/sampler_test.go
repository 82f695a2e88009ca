package mind

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChooseDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	items := []Weighted[string]{{Item: "rare", Weight: 1}, {Item: "common", Weight: 3}}

	const draws = 40000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		counts[Choose(rng, items)]++
	}
	assert.InDelta(t, 0.25, float64(counts["rare"])/draws, 0.02)
	assert.InDelta(t, 0.75, float64(counts["common"])/draws, 0.02)
}

func TestChooseSkipsZeroWeight(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	items := []Weighted[int]{{Item: 1, Weight: 0}, {Item: 2, Weight: 5}, {Item: 3, Weight: 0}}
	for i := 0; i < 1000; i++ {
		assert.Equal(t, 2, Choose(rng, items))
	}
}

func TestChooseSingle(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	assert.Equal(t, "only", Choose(rng, []Weighted[string]{{Item: "only", Weight: 7}}))
}

func TestChoosePanicsOnContractFault(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	assert.Panics(t, func() { Choose[string](rng, nil) })
	assert.Panics(t, func() { Choose(rng, []Weighted[string]{{Item: "x", Weight: 0}}) })
}

func TestSamplerPick(t *testing.T) {
	s := NewSampler(5)

	_, ok := s.Pick(nil)
	assert.False(t, ok)

	_, ok = s.Pick([]Entry{{Message: "gone", Weight: 0}})
	assert.False(t, ok)

	msg, ok := s.Pick([]Entry{{Message: "gone", Weight: 0}, {Message: "here", Weight: 2}})
	assert.True(t, ok)
	assert.Equal(t, "here", msg)
}

func TestSamplerDuration(t *testing.T) {
	s := NewSampler(6)
	lo, hi := 10*time.Second, 30*time.Second
	for i := 0; i < 1000; i++ {
		d := s.Duration(lo, hi)
		assert.GreaterOrEqual(t, d, lo)
		assert.Less(t, d, hi)
	}
	assert.Equal(t, lo, s.Duration(lo, lo))
	assert.Equal(t, lo, s.Duration(lo, time.Second))
}

func TestSamplerSeeded(t *testing.T) {
	a, b := NewSampler(42), NewSampler(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}
