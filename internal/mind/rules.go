package mind

import (
	"sync"

	"github.com/keshon/server-mimic/internal/config"
	"github.com/rs/zerolog/log"
)

// TuningSource supplies the current tuning snapshot. *config.Settings satisfies it.
type TuningSource interface {
	Current() *config.Tuning
}

// Rules is a tuning snapshot together with its compiled patterns.
type Rules struct {
	config.Tuning
	Blacklist *Blacklist
	Extractor *Extractor
}

func compileRules(t *config.Tuning) (*Rules, error) {
	bl, err := NewBlacklist(t.BlackList)
	if err != nil {
		return nil, err
	}
	ex, err := NewExtractor(t.ExtractRegex)
	if err != nil {
		return nil, err
	}
	return &Rules{Tuning: t.Clone(), Blacklist: bl, Extractor: ex}, nil
}

// Rulebook compiles each tuning snapshot once and hands out the result until the
// source publishes a new snapshot.
type Rulebook struct {
	src TuningSource

	mu    sync.Mutex
	seen  *config.Tuning
	rules *Rules
}

// NewRulebook compiles the source's current tuning.
func NewRulebook(src TuningSource) (*Rulebook, error) {
	t := src.Current()
	r, err := compileRules(t)
	if err != nil {
		return nil, err
	}
	return &Rulebook{src: src, seen: t, rules: r}, nil
}

// Current returns the rules for the source's current tuning. If a new snapshot fails to
// compile, the previous rules stay in effect.
func (b *Rulebook) Current() *Rules {
	t := b.src.Current()

	b.mu.Lock()
	defer b.mu.Unlock()
	if t == b.seen {
		return b.rules
	}
	r, err := compileRules(t)
	if err != nil {
		log.Warn().Str("component", "mind").Err(err).Msg("new tuning does not compile, keeping previous rules")
		b.seen = t
		return b.rules
	}
	b.seen, b.rules = t, r
	return r
}
