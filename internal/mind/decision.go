package mind

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Decide picks a reply for text from the group's memory without sending anything.
// A similar memory (within the edit-distance threshold of the extracted keywords) is
// preferred; otherwise any memory is drawn by weight. ok is false only when the group
// remembers nothing.
func (r *Runner) Decide(groupID int64, text string) (Decision, bool) {
	rules := r.book.Current()
	snap := r.store.Snapshot(groupID)
	if len(snap) == 0 {
		return Decision{}, false
	}

	keywords := rules.Extractor.Extract(text)
	if candidates := FindCandidates(keywords, snap, rules.Threshold, rules.Extractor); len(candidates) > 0 {
		if msg, ok := r.sampler.Pick(candidates); ok {
			return Decision{Text: msg, Kind: ReplyMatched}, true
		}
	}

	msg, ok := r.sampler.Pick(snap)
	if !ok {
		return Decision{}, false
	}
	return Decision{Text: msg, Kind: ReplyRandom}, true
}

// filterReason returns why text must be ignored before it reaches the store, or "".
func filterReason(text string, rules *Rules) string {
	switch {
	case text == "":
		return "empty"
	case utf8.RuneCountInString(text) >= rules.MaxMessageLength:
		return "too_long"
	}
	return ""
}

// stripControl drops control characters (newlines included) from text.
func stripControl(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}
