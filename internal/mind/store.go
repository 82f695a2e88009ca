package mind

import (
	"sort"
	"sync"

	"github.com/keshon/server-mimic/internal/metrics"
)

// Store is the bounded, weighted message memory of every group. A single mutex covers the
// whole structure; readers get copies so that matching never runs under the lock.
type Store struct {
	book *Rulebook

	mu      sync.Mutex
	groups  map[int64]map[string]int
	version uint64
}

// Stats summarises the memory.
type Stats struct {
	Groups  int `json:"groups"`
	Entries int `json:"entries"`
}

// NewStore creates an empty store governed by book.
func NewStore(book *Rulebook) *Store {
	return &Store{
		book:   book,
		groups: make(map[int64]map[string]int),
	}
}

// Record remembers message for groupID. A blacklisted message is dropped and Record
// returns false. A new message starts at weight 1, a repeat gains 1 up to the weight
// limit. If the group then exceeds its capacity, minimum-weight entries are evicted.
func (s *Store) Record(groupID int64, message string) bool {
	rules := s.book.Current()
	if rules.Blacklist.Match(message) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		g = make(map[string]int)
		s.groups[groupID] = g
		metrics.Groups.Set(float64(len(s.groups)))
	}

	w, exists := g[message]
	switch {
	case !exists:
		g[message] = 1
	case w < rules.WeightLimit:
		g[message] = w + 1
	}

	for len(g) > rules.Limit {
		evictMin(g)
		metrics.EntriesEvicted.Inc()
	}

	s.version++
	metrics.MessagesRecorded.Inc()
	return true
}

// evictMin removes the entry with the lowest weight. Ties go to the lexicographically
// smallest message so the outcome does not depend on map iteration order.
func evictMin(g map[string]int) string {
	var victim string
	minW, found := 0, false
	for msg, w := range g {
		if !found || w < minW || (w == minW && msg < victim) {
			victim, minW, found = msg, w, true
		}
	}
	if found {
		delete(g, victim)
	}
	return victim
}

// DecaySweep removes every entry of groupID whose weight is <= cutoff and returns how
// many were removed. The group itself is kept even when it ends up empty.
func (s *Store) DecaySweep(groupID int64, cutoff int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decayLocked(s.groups[groupID], cutoff)
}

// DecayAll runs DecaySweep over every group.
func (s *Store) DecayAll(cutoff int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, g := range s.groups {
		removed += s.decayLocked(g, cutoff)
	}
	return removed
}

func (s *Store) decayLocked(g map[string]int, cutoff int) int {
	removed := 0
	for msg, w := range g {
		if w <= cutoff {
			delete(g, msg)
			removed++
		}
	}
	if removed > 0 {
		s.version++
	}
	return removed
}

// Snapshot returns a copy of the group's entries sorted by message. Unknown groups yield
// an empty slice.
func (s *Store) Snapshot(groupID int64) []Entry {
	s.mu.Lock()
	g := s.groups[groupID]
	out := make([]Entry, 0, len(g))
	for msg, w := range g {
		out = append(out, Entry{Message: msg, Weight: w})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Message < out[j].Message })
	return out
}

// Len returns the number of entries remembered for groupID.
func (s *Store) Len(groupID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.groups[groupID])
}

// Groups returns the ids of every group that has a memory, in ascending order.
func (s *Store) Groups() []int64 {
	s.mu.Lock()
	ids := make([]int64, 0, len(s.groups))
	for id := range s.groups {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Stats counts groups and entries.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Groups: len(s.groups)}
	for _, g := range s.groups {
		st.Entries += len(g)
	}
	return st
}

// Version increases with every mutation. Auto-save compares it to skip idle intervals.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Export returns a deep copy of the whole memory for persistence.
func (s *Store) Export() Histories {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(Histories, len(s.groups))
	for id, g := range s.groups {
		cp := make(map[string]int, len(g))
		for msg, w := range g {
			cp[msg] = w
		}
		out[id] = cp
	}
	return out
}

// Import replaces the memory with h verbatim. The store keeps its own copy.
func (s *Store) Import(h Histories) {
	groups := make(map[int64]map[string]int, len(h))
	for id, g := range h {
		cp := make(map[string]int, len(g))
		for msg, w := range g {
			cp[msg] = w
		}
		groups[id] = cp
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = groups
	s.version++
	metrics.Groups.Set(float64(len(s.groups)))
}
