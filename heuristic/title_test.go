package heuristic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleFromText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "first qualifying line wins",
			text:     "Hello World\nfoo bar baz",
			expected: "Hello World",
		},
		{
			name:     "short lines skipped",
			text:     "ab\nHello World",
			expected: "Hello World",
		},
		{
			name:     "symbol-only lines skipped",
			text:     "-----\n*** ***\nRelease Notes",
			expected: "Release Notes",
		},
		{
			name:     "disallowed characters cleaned",
			text:     "Build #42 <passed>",
			expected: "Build 42 passed",
		},
		{
			name:     "long first line truncated with ellipsis",
			text:     strings.Repeat("a", 60),
			expected: strings.Repeat("a", 47) + "...",
		},
		{
			name:     "empty text",
			text:     "",
			expected: "",
		},
		{
			name:     "whitespace only",
			text:     "   \n\t\n  ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TitleFromText(tt.text))
		})
	}
}

func TestTitleFromText_PrefersLaterShortLine(t *testing.T) {
	// The first qualifying line is too long, the second fits; the second
	// becomes the title without truncation.
	text := strings.Repeat("x", 80) + "\nQuarterly Report"
	assert.Equal(t, "Quarterly Report", TitleFromText(text))
}
