package heuristic

import (
	"fmt"
	"regexp"
	"strings"
)

// contentPatterns vote on what kind of content a capture shows.
// Each category accumulates one vote per matching pattern; the category
// with the most votes wins.
var contentPatterns = map[string][]*regexp.Regexp{
	"code": {
		regexp.MustCompile(`\bfunc\s+\w+\s*\(`),
		regexp.MustCompile(`\b(?:import|package|class|def|return|const|var|let)\b`),
		regexp.MustCompile(`[{};]\s*$`),
		regexp.MustCompile(`\w+\.\w+\(`),
	},
	"webpage": {
		regexp.MustCompile(`https?://`),
		regexp.MustCompile(`\bwww\.\w+`),
		regexp.MustCompile(`\b(?:login|sign in|sign up|subscribe|cookie)\b`),
	},
	"ui": {
		regexp.MustCompile(`\b(?:settings|preferences|cancel|apply|save|button|menu)\b`),
		regexp.MustCompile(`\b(?:ok|yes|no)\b\s*$`),
	},
	"chart": {
		regexp.MustCompile(`\b(?:axis|legend|q[1-4]\s+\d{4})\b`),
		regexp.MustCompile(`\d+(?:\.\d+)?%`),
	},
	"diagram": {
		regexp.MustCompile(`(?:-->|<--|==>)`),
		regexp.MustCompile(`\b(?:flowchart|diagram|node|edge)\b`),
	},
	"document": {
		regexp.MustCompile(`\b(?:chapter|section|paragraph|page\s+\d+)\b`),
		regexp.MustCompile(`(?m)^\s*\d+\.\s+\w`),
	},
}

// appKeywords map a detected application name to its telltale strings.
var appKeywords = map[string][]string{
	"VS Code":  {"vscode", "vs code", "visual studio code"},
	"Xcode":    {"xcode", "interface builder", "swiftui preview"},
	"Terminal": {"terminal", "bash", "zsh", "$ ", "~ %"},
	"Browser":  {"chrome", "firefox", "safari", "edge", "http://", "https://"},
}

// DetectContentType classifies text into one of the known content
// categories by regex pattern voting over the lowercased input.
// Returns "" when no pattern matches.
func DetectContentType(text string) string {
	lowered := strings.ToLower(text)

	best := ""
	bestVotes := 0
	// Fixed category order keeps ties deterministic.
	for _, category := range []string{"code", "webpage", "ui", "chart", "diagram", "document"} {
		votes := 0
		for _, pattern := range contentPatterns[category] {
			if pattern.MatchString(lowered) {
				votes++
			}
		}
		if votes > bestVotes {
			best = category
			bestVotes = votes
		}
	}
	return best
}

// DetectApp guesses the application visible in the capture from keyword
// matches over the lowercased text. Returns "" when nothing matches.
func DetectApp(text string) string {
	lowered := strings.ToLower(text)

	for _, app := range []string{"VS Code", "Xcode", "Terminal", "Browser"} {
		for _, kw := range appKeywords[app] {
			if strings.Contains(lowered, kw) {
				return app
			}
		}
	}
	return ""
}

// DescribeContent builds a templated description sentence from local
// heuristics, used when the remote description call fails.
func DescribeContent(ocrText string) string {
	var parts []string

	contentType := DetectContentType(ocrText)
	switch contentType {
	case "code":
		parts = append(parts, "A screenshot of source code")
	case "webpage":
		parts = append(parts, "A screenshot of a webpage")
	case "ui":
		parts = append(parts, "A screenshot of an application interface")
	case "chart":
		parts = append(parts, "A screenshot of a chart or data visualization")
	case "diagram":
		parts = append(parts, "A screenshot of a diagram")
	case "document":
		parts = append(parts, "A screenshot of a document")
	default:
		parts = append(parts, "A screenshot")
	}

	if app := DetectApp(ocrText); app != "" {
		parts = append(parts, fmt.Sprintf("captured from %s", app))
	}

	if len(ocrText) > 100 {
		words := len(strings.Fields(ocrText))
		parts = append(parts, fmt.Sprintf("containing roughly %d words of text", words))
	}

	return strings.Join(parts, ", ") + "."
}
