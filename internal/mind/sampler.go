package mind

import (
	"math/rand"
	"sync"
	"time"
)

// Weighted pairs an item with its selection weight.
type Weighted[T any] struct {
	Item   T
	Weight int
}

// Choose picks one item with probability proportional to its weight. It draws r in
// [0,total) and walks the items in order, subtracting weights until r goes negative;
// the last item is the fallback. Empty input or a non-positive total weight is a caller bug
// and panics.
func Choose[T any](rng *rand.Rand, items []Weighted[T]) T {
	if len(items) == 0 {
		panic("mind: Choose called with no items")
	}
	total := 0
	for _, it := range items {
		total += it.Weight
	}
	if total <= 0 {
		panic("mind: Choose called with non-positive total weight")
	}

	r := rng.Intn(total)
	for _, it := range items {
		r -= it.Weight
		if r < 0 {
			return it.Item
		}
	}
	return items[len(items)-1].Item
}

// Sampler is a goroutine-safe source of the random draws the bot makes: reply gates,
// delays and weighted picks.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler returns a sampler seeded with seed.
func NewSampler(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform value in [0,1).
func (s *Sampler) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Duration returns a uniform duration in [lo,hi). When hi <= lo it returns lo.
func (s *Sampler) Duration(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + time.Duration(s.rng.Int63n(int64(hi-lo)))
}

// Pick chooses a message from entries by weight. Entries with a non-positive weight are
// skipped; ok is false when nothing is left to choose from.
func (s *Sampler) Pick(entries []Entry) (msg string, ok bool) {
	items := make([]Weighted[string], 0, len(entries))
	for _, e := range entries {
		if e.Weight > 0 {
			items = append(items, Weighted[string]{Item: e.Message, Weight: e.Weight})
		}
	}
	if len(items) == 0 {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return Choose(s.rng, items), true
}
