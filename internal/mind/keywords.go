package mind

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

const regexTimeout = 250 * time.Millisecond

// Extractor reduces a message to the string used for similarity comparison by removing
// every run of separator characters.
type Extractor struct {
	re *regexp2.Regexp
}

// NewExtractor compiles the separator pattern.
func NewExtractor(pattern string) (*Extractor, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compile extract pattern: %w", err)
	}
	re.MatchTimeout = regexTimeout
	return &Extractor{re: re}, nil
}

// Extract splits text on the separator pattern and concatenates the non-empty fragments.
// On a match timeout the text is returned unchanged.
func (e *Extractor) Extract(text string) string {
	out, err := e.re.Replace(text, "", -1, -1)
	if err != nil {
		return text
	}
	return out
}
