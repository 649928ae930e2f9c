package heuristic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "go source code",
			text:     "package main\nimport \"fmt\"\nfunc main() {\n\tfmt.Println(\"hi\")\n}",
			expected: "code",
		},
		{
			name:     "webpage with url and login",
			text:     "https://example.com\nSign in to continue",
			expected: "webpage",
		},
		{
			name:     "settings dialog",
			text:     "Settings\nPreferences\nCancel Apply",
			expected: "ui",
		},
		{
			name:     "chart with percentages",
			text:     "Revenue Q1 2026\nLegend\n45% growth",
			expected: "chart",
		},
		{
			name:     "no signal",
			text:     "completely unremarkable words",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectContentType(tt.text))
		})
	}
}

func TestDetectApp(t *testing.T) {
	assert.Equal(t, "VS Code", DetectApp("Visual Studio Code - main.go"))
	assert.Equal(t, "Xcode", DetectApp("Xcode 16 build succeeded"))
	assert.Equal(t, "Terminal", DetectApp("user@host ~ % ls -la"))
	assert.Equal(t, "", DetectApp("nothing recognizable"))
}

func TestDescribeContent(t *testing.T) {
	t.Run("code with app", func(t *testing.T) {
		desc := DescribeContent("package main\nfunc main() {\n// vscode workspace\n}")
		assert.Contains(t, desc, "source code")
		assert.Contains(t, desc, "VS Code")
	})

	t.Run("word count clause for long text", func(t *testing.T) {
		long := strings.Repeat("meaningful words here ", 20)
		desc := DescribeContent(long)
		assert.Contains(t, desc, "words of text")
	})

	t.Run("short text omits word count", func(t *testing.T) {
		desc := DescribeContent("tiny")
		assert.NotContains(t, desc, "words of text")
		assert.Contains(t, desc, "A screenshot")
	})
}
