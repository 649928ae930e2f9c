package heuristic

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultKeywordLimit is how many keywords ExtractKeywords returns by default.
const DefaultKeywordLimit = 10

// minTokenLength filters out short tokens; tokens of this length or less
// are dropped before counting.
const minTokenLength = 3

// stopWords are filtered out of keyword extraction.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "were": true, "to": true, "of": true, "and": true, "in": true,
	"that": true, "have": true, "it": true, "for": true, "not": true, "on": true,
	"with": true, "as": true, "you": true, "do": true, "at": true, "this": true,
	"but": true, "by": true, "from": true, "they": true, "your": true,
	"will": true, "would": true, "there": true, "their": true, "what": true,
	"about": true, "which": true, "when": true, "into": true, "then": true,
	"them": true, "these": true, "than": true, "been": true,
	"also": true, "more": true, "some": true, "such": true, "only": true,
	"other": true, "over": true, "very": true, "just": true, "like": true,
}

// ExtractKeywords extracts up to limit keywords from text by frequency.
//
// The text is lowercased, punctuation is stripped, and it is split on
// whitespace. Tokens of three characters or fewer and stop words are
// dropped; the remaining tokens are ranked by occurrence count, ties
// broken by first-encountered order.
func ExtractKeywords(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	type entry struct {
		token string
		count int
		first int // position of first occurrence, for stable tie-breaking
	}

	counts := make(map[string]*entry)
	order := make([]*entry, 0)

	for i, token := range strings.Fields(cleaned) {
		if len(token) <= minTokenLength || stopWords[token] {
			continue
		}
		if e, ok := counts[token]; ok {
			e.count++
			continue
		}
		e := &entry{token: token, count: 1, first: i}
		counts[token] = e
		order = append(order, e)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})

	if len(order) > limit {
		order = order[:limit]
	}

	keywords := make([]string, len(order))
	for i, e := range order {
		keywords[i] = e.token
	}
	return keywords
}
