package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		limit    int
		expected []string
	}{
		{
			name:  "frequency ranking with stop words and short tokens",
			text:  "the quick quick brown fox fox fox jumps",
			limit: 10,
			// "the" is a stop word; "fox" is only three characters.
			expected: []string{"quick", "brown", "jumps"},
		},
		{
			name:     "ties broken by first encounter",
			text:     "zebra apple zebra apple mango",
			limit:    10,
			expected: []string{"zebra", "apple", "mango"},
		},
		{
			name:     "punctuation stripped",
			text:     "error: connection refused! connection reset?",
			limit:    10,
			expected: []string{"connection", "error", "refused", "reset"},
		},
		{
			name:     "limit respected",
			text:     "alpha bravo charlie delta echoes",
			limit:    3,
			expected: []string{"alpha", "bravo", "charlie"},
		},
		{
			name:     "empty input",
			text:     "",
			limit:    10,
			expected: []string{},
		},
		{
			name:     "only stop words and short tokens",
			text:     "the a is of fox cat",
			limit:    10,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.text, tt.limit)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractKeywords_DefaultLimit(t *testing.T) {
	text := "alpha bravo charlie delta echoes foxtrot golfing hotels india juliet kilos limas"
	got := ExtractKeywords(text, 0)
	assert.Len(t, got, DefaultKeywordLimit)
}

func TestExtractKeywords_CaseFolding(t *testing.T) {
	got := ExtractKeywords("Docker DOCKER docker compose", 10)
	assert.Equal(t, []string{"docker", "compose"}, got)
}
