package heuristic

import (
	"regexp"
	"strings"
	"unicode"
)

// maxTitleLength is the hard cap on heuristic titles.
const maxTitleLength = 50

// titleCharset strips characters outside word characters, whitespace,
// and the small set of punctuation a title may reasonably carry.
var titleCharset = regexp.MustCompile(`[^\w\s\-.,!?]`)

// TitleFromText synthesizes a short title from OCR text.
//
// Lines are trimmed and scanned in order; lines under 3 characters or
// consisting only of symbols are skipped. The first qualifying line that
// fits within 50 characters (after cleaning) becomes the title. If every
// qualifying line is too long, the first one is truncated to 47
// characters plus an ellipsis. Returns "" when no line qualifies.
func TitleFromText(text string) string {
	var firstQualifying string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 3 || isSymbolOnly(line) {
			continue
		}
		if firstQualifying == "" {
			firstQualifying = line
		}

		cleaned := strings.TrimSpace(titleCharset.ReplaceAllString(line, ""))
		if cleaned != "" && len(cleaned) <= maxTitleLength {
			return cleaned
		}
	}

	if firstQualifying == "" {
		return ""
	}
	runes := []rune(firstQualifying)
	if len(runes) > maxTitleLength-3 {
		runes = runes[:maxTitleLength-3]
	}
	return string(runes) + "..."
}

// isSymbolOnly reports whether the line holds no letters or digits.
func isSymbolOnly(line string) bool {
	for _, r := range line {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
