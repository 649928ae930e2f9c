package openai

import (
	"fmt"
	"strings"

	"github.com/lightfold/captura/ai"
)

// ocrTextBudget caps how much OCR text is folded into a prompt.
// Longer captures are truncated to keep requests within model limits.
const ocrTextBudget = 4000

const ocrPrompt = `You are an OCR engine. Extract every piece of visible text from the image,
preserving line breaks and reading order. Output only the extracted text with no commentary.
If the image contains no text, output nothing.`

const ocrStructuredPrompt = `You are an OCR engine. Extract every piece of visible text from the image,
preserving line breaks and reading order. Return ONLY a JSON object of the form:

{"text": "<all extracted text>", "confidence": <number between 0 and 1>}

The confidence reflects how certain you are that the extraction is complete and accurate.
If the image contains no text, return {"text": "", "confidence": 0}.
Do not include any preamble, explanation, or text outside the JSON object.`

const classifyPromptTemplate = `Classify the screenshot and return ONLY a JSON object of the form:

{"content_type": "...", "app_detected": "...", "url_detected": "...", "language": "..."}

Rules:
- content_type must be exactly one of: %s.
- app_detected names the application visible in the capture (e.g. "VS Code", "Safari"), or "" if unclear.
- url_detected is a URL visible in the capture, or "" if none.
- language is the dominant natural language of the visible text (e.g. "en"), or "" if none.
- The JSON must parse without errors; no trailing commas, no extra keys, no text outside the object.`

const titlePrompt = `Produce a short descriptive title for this screenshot, at most 8 words.
Output only the title itself: no quotes, no trailing punctuation, no commentary.`

const descriptionPrompt = `Describe what this screenshot shows in 2-3 sentences.
Mention the kind of content, the application if identifiable, and the subject matter.
Output only the description.`

const comprehensivePrompt = `Write a thorough, information-dense description of this screenshot for a
search index. Cover the visible text, the kind of content, the application, and the subject matter.
Favor concrete nouns and names over generic phrasing. Output only the description.`

func buildClassifyPrompt() string {
	return fmt.Sprintf(classifyPromptTemplate, strings.Join(ai.ContentTypes, ", "))
}

// classifyUserPrompt attaches the already-extracted text as context.
func classifyUserPrompt(ocrText string) string {
	if ocrText == "" {
		return ""
	}
	return "Text extracted from the image:\n" + truncateText(ocrText, ocrTextBudget)
}

// contextUserPrompt attaches OCR text as context for title/description calls.
func contextUserPrompt(ocrText string) string {
	if ocrText == "" {
		return ""
	}
	return "Text visible in the image:\n" + truncateText(ocrText, ocrTextBudget)
}

// comprehensiveUserPrompt folds OCR text, title, and keywords into the
// context for the comprehensive description call.
func comprehensiveUserPrompt(ocrText, title string, keywords []string) string {
	var b strings.Builder
	if title != "" {
		b.WriteString("Title: " + title + "\n")
	}
	if len(keywords) > 0 {
		b.WriteString("Keywords: " + strings.Join(keywords, ", ") + "\n")
	}
	if ocrText != "" {
		b.WriteString("Text visible in the image:\n" + truncateText(ocrText, ocrTextBudget))
	}
	return b.String()
}
