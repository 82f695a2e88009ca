package mind

import (
	"fmt"

	"github.com/dlclark/regexp2"
	"github.com/keshon/server-mimic/internal/config"
)

// Blacklist holds full-match patterns. A message matching any of them is never stored
// and never answered.
type Blacklist struct {
	patterns []*regexp2.Regexp
}

// NewBlacklist compiles patterns. Each pattern must match the whole message.
func NewBlacklist(patterns []string) (*Blacklist, error) {
	b := &Blacklist{patterns: make([]*regexp2.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp2.Compile(config.AnchorPattern(p), regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("compile blacklist pattern %q: %w", p, err)
		}
		re.MatchTimeout = regexTimeout
		b.patterns = append(b.patterns, re)
	}
	return b, nil
}

// Match reports whether text is blacklisted. A pattern that times out counts as a match.
func (b *Blacklist) Match(text string) bool {
	for _, re := range b.patterns {
		ok, err := re.MatchString(text)
		if err != nil || ok {
			return true
		}
	}
	return false
}

// Len returns the number of patterns.
func (b *Blacklist) Len() int {
	return len(b.patterns)
}
