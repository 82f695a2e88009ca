package mind

// EditDistance is the Levenshtein distance between a and b counted in runes, with unit
// cost for insertion, deletion and substitution.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(ra)+1)
	cur := make([]int, len(ra)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(rb); i++ {
		cur[0] = i
		for j := 1; j <= len(ra); j++ {
			cost := 1
			if ra[j-1] == rb[i-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(ra)]
}

// FindCandidates returns the snapshot entries whose extracted keywords are within
// threshold edits of keywords. Order follows the snapshot.
func FindCandidates(keywords string, snapshot []Entry, threshold int, ex *Extractor) []Entry {
	var out []Entry
	for _, e := range snapshot {
		if EditDistance(keywords, ex.Extract(e.Message)) <= threshold {
			out = append(out, e)
		}
	}
	return out
}
