// Copyright 2025 Lightfold Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lightfold/captura/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// VisionAnalyzer implements ai.VisionAnalyzer using OpenAI-compatible
// multimodal chat APIs.
type VisionAnalyzer struct {
	client llms.Model
	logger *slog.Logger
}

// extraction is an internal type used for JSON unmarshaling of OCR responses.
type extraction struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// classification is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type classification struct {
	ContentType string `json:"content_type"`
	AppDetected string `json:"app_detected"`
	URLDetected string `json:"url_detected"`
	Language    string `json:"language"`
}

// newVisionAnalyzer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newVisionAnalyzer(config *ai.Config) (*VisionAnalyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.VisionHost),
		openai.WithToken("none"),
		openai.WithModel(config.VisionModel),
	)
	if err != nil {
		return nil, err
	}

	return &VisionAnalyzer{
		client: client,
		logger: slog.Default().With("component", "openai-analyzer"),
	}, nil
}

// NewVisionAnalyzer creates a new vision analyzer using the provided configuration.
//
// Returns ai.VisionAnalyzer interface to enforce abstraction.
func NewVisionAnalyzer(config *ai.Config) (ai.VisionAnalyzer, error) {
	return newVisionAnalyzer(config)
}

// generate sends one multimodal request and returns the trimmed text reply.
func (a *VisionAnalyzer) generate(ctx context.Context, image []byte, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	parts := []llms.ContentPart{
		llms.BinaryPart(http.DetectContentType(image), image),
	}
	if userPrompt != "" {
		parts = append(parts, llms.TextPart(userPrompt))
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: parts,
		},
	}

	opts := []llms.CallOption{llms.WithTemperature(0.0)}
	if jsonMode {
		opts = append(opts, llms.WithJSONMode())
	}

	response, err := a.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", err
	}
	if len(response.Choices) < 1 {
		a.logger.Debug("no choices returned from model")
		return "", nil
	}
	return strings.TrimSpace(response.Choices[0].Content), nil
}

// ExtractText performs plain OCR and returns the raw extracted text.
func (a *VisionAnalyzer) ExtractText(ctx context.Context, image []byte) (string, error) {
	return a.generate(ctx, image, ocrPrompt, "", false)
}

// ExtractAllText performs OCR and reports a confidence score.
// The model is asked for a {"text", "confidence"} JSON object; a reply
// that fails to parse even after repair is accepted as bare text with a
// reduced confidence rather than discarded.
func (a *VisionAnalyzer) ExtractAllText(ctx context.Context, image []byte) (*ai.TextExtraction, error) {
	raw, err := a.generate(ctx, image, ocrStructuredPrompt, "", true)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return &ai.TextExtraction{Text: "", Confidence: 0}, nil
	}

	var result extraction
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		repaired := repairJSON(raw)
		if err := json.Unmarshal([]byte(repaired), &result); err != nil {
			// Not JSON at all: treat the whole reply as extracted text.
			a.logger.Debug("OCR response is not structured, using bare text", "length", len(raw))
			return &ai.TextExtraction{Text: raw, Confidence: 0.5}, nil
		}
	}

	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}

	return &ai.TextExtraction{
		Text:       strings.TrimSpace(result.Text),
		Confidence: result.Confidence,
	}, nil
}

// Classify returns a structured classification of the image content.
func (a *VisionAnalyzer) Classify(ctx context.Context, image []byte, text string) (*ai.Classification, error) {
	raw, err := a.generate(ctx, image, buildClassifyPrompt(), classifyUserPrompt(text), true)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return &ai.Classification{}, nil
	}

	var result classification
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		repaired := repairJSON(raw)
		if err := json.Unmarshal([]byte(repaired), &result); err != nil {
			a.logger.Warn("classification response unparseable", "err", err)
			return nil, err
		}
	}

	return &ai.Classification{
		ContentType: strings.ToLower(strings.TrimSpace(result.ContentType)),
		AppDetected: strings.TrimSpace(result.AppDetected),
		URLDetected: strings.TrimSpace(result.URLDetected),
		Language:    strings.TrimSpace(result.Language),
	}, nil
}

// GenerateTitle produces a short human-readable title for the image.
func (a *VisionAnalyzer) GenerateTitle(ctx context.Context, image []byte, ocrText string) (string, error) {
	title, err := a.generate(ctx, image, titlePrompt, contextUserPrompt(ocrText), false)
	if err != nil {
		return "", err
	}
	return strings.Trim(title, `"`), nil
}

// GenerateDescription produces a detailed description of the image.
func (a *VisionAnalyzer) GenerateDescription(ctx context.Context, image []byte, ocrText string) (string, error) {
	return a.generate(ctx, image, descriptionPrompt, contextUserPrompt(ocrText), false)
}

// GenerateComprehensiveDescription produces a long-form summary used as
// embedding input.
func (a *VisionAnalyzer) GenerateComprehensiveDescription(ctx context.Context, image []byte, ocrText, title string, keywords []string) (string, error) {
	return a.generate(ctx, image, comprehensivePrompt, comprehensiveUserPrompt(ocrText, title, keywords), false)
}
