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

package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/lightfold/captura/ai"
	"github.com/lightfold/captura/core"
	"github.com/lightfold/captura/heuristic"
)

const (
	// remoteTitleLimit bounds titles returned by the vision API.
	remoteTitleLimit = 50

	// ocrExcerptLimit bounds the OCR excerpt used in the comprehensive
	// description fallback.
	ocrExcerptLimit = 500

	// defaultComprehensive stands in when no content at all is
	// available for the comprehensive description.
	defaultComprehensive = "Screenshot with no recognizable content"
)

// inflightRun tracks one running analysis so concurrent requests for
// the same artifact attach to it instead of re-running.
type inflightRun struct {
	done   chan struct{}
	result *core.Analysis
	err    error
}

// Pipeline turns a captured screenshot into an Analysis: OCR text,
// title, description, keywords, classification, and a comprehensive
// description for embedding.
//
// Every remote stage degrades independently. The only fatal condition
// is an unreadable image file; an empty OCR result short-circuits the
// remaining stages and yields a sparse but valid Analysis.
type Pipeline struct {
	analyzer ai.VisionAnalyzer
	logger   *slog.Logger

	mu       sync.Mutex
	inflight map[core.ID]*inflightRun
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates an analysis pipeline backed by the provider's
// vision analyzer.
func NewPipeline(provider ai.AIProvider, opts ...PipelineOption) (*Pipeline, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	p := &Pipeline{
		analyzer: provider.VisionAnalyzer(),
		logger:   slog.Default().With("component", "analysis-pipeline"),
		inflight: make(map[core.ID]*inflightRun),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Process analyzes the screenshot at path and returns its Analysis.
//
// Requests are deduplicated by artifact id: if an analysis for id is
// already running, the call attaches to that run and returns its
// outcome instead of starting a second one. The caller's context only
// governs its own wait; an attached run is never cancelled by a
// waiter's context.
func (p *Pipeline) Process(ctx context.Context, id core.ID, path string) (*core.Analysis, error) {
	if id == "" {
		return nil, core.ErrEmptyID
	}

	p.mu.Lock()
	if run, ok := p.inflight[id]; ok {
		p.mu.Unlock()
		select {
		case <-run.done:
			return run.result, run.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	run := &inflightRun{done: make(chan struct{})}
	p.inflight[id] = run
	p.mu.Unlock()

	result, err := p.run(ctx, id, path)

	p.mu.Lock()
	delete(p.inflight, id)
	p.mu.Unlock()

	run.result, run.err = result, err
	close(run.done)
	return result, err
}

func (p *Pipeline) run(ctx context.Context, id core.ID, path string) (*core.Analysis, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImageUnreadable, path, err)
	}

	result := &core.Analysis{ArtifactId: id}

	extraction, err := p.analyzer.ExtractAllText(ctx, image)
	if err != nil {
		p.logger.Warn("OCR extraction failed", "artifact", id, "error", err)
		extraction = &ai.TextExtraction{}
	}
	result.OCRText = extraction.Text
	result.Confidence = extraction.Confidence

	// No recognizable text: skip the remaining stages entirely rather
	// than feeding the model empty context.
	if strings.TrimSpace(result.OCRText) == "" {
		p.logger.Debug("empty OCR result, short-circuiting analysis", "artifact", id)
		return result, nil
	}

	result.Title = p.resolveTitle(ctx, id, image, result.OCRText)
	result.Description = p.resolveDescription(ctx, id, image, result.OCRText)
	result.Keywords = heuristic.ExtractKeywords(result.OCRText, heuristic.DefaultKeywordLimit)
	p.classify(ctx, id, image, result)
	result.ComprehensiveDescription = p.resolveComprehensive(ctx, id, image, result)

	return result, nil
}

// resolveTitle prefers the vision API, truncated to the title limit,
// and falls back to the first usable OCR line.
func (p *Pipeline) resolveTitle(ctx context.Context, id core.ID, image []byte, ocrText string) string {
	title, errs := heuristic.FirstNonEmpty(
		func() (string, error) {
			remote, err := p.analyzer.GenerateTitle(ctx, image, ocrText)
			if err != nil {
				return "", err
			}
			return truncateRunes(strings.TrimSpace(remote), remoteTitleLimit), nil
		},
		func() (string, error) {
			return heuristic.TitleFromText(ocrText), nil
		},
	)
	p.logProducerErrors("title", id, errs)
	return title
}

// resolveDescription prefers the vision API and falls back to the
// local content heuristics.
func (p *Pipeline) resolveDescription(ctx context.Context, id core.ID, image []byte, ocrText string) string {
	description, errs := heuristic.FirstNonEmpty(
		func() (string, error) {
			return p.analyzer.GenerateDescription(ctx, image, ocrText)
		},
		func() (string, error) {
			return heuristic.DescribeContent(ocrText), nil
		},
	)
	p.logProducerErrors("description", id, errs)
	return description
}

// classify fills the classification fields from the vision API. There
// is no local fallback; on error they stay unset.
func (p *Pipeline) classify(ctx context.Context, id core.ID, image []byte, result *core.Analysis) {
	classification, err := p.analyzer.Classify(ctx, image, result.OCRText)
	if err != nil {
		p.logger.Warn("classification failed, leaving fields unset", "artifact", id, "error", err)
		return
	}
	if classification == nil {
		return
	}
	result.ContentType = classification.ContentType
	result.AppDetected = classification.AppDetected
	result.URLDetected = classification.URLDetected
}

// resolveComprehensive prefers the vision API, then a concatenation of
// whatever analysis fields exist, then the default literal.
func (p *Pipeline) resolveComprehensive(ctx context.Context, id core.ID, image []byte, result *core.Analysis) string {
	comprehensive, errs := heuristic.FirstNonEmpty(
		func() (string, error) {
			return p.analyzer.GenerateComprehensiveDescription(ctx, image, result.OCRText, result.Title, result.Keywords)
		},
		func() (string, error) {
			return assembleComprehensive(result), nil
		},
		heuristic.Static(defaultComprehensive),
	)
	p.logProducerErrors("comprehensive description", id, errs)
	return comprehensive
}

// assembleComprehensive concatenates the available analysis fields.
func assembleComprehensive(result *core.Analysis) string {
	var parts []string
	if strings.TrimSpace(result.Description) != "" {
		parts = append(parts, result.Description)
	}
	if excerpt := truncateRunes(strings.TrimSpace(result.OCRText), ocrExcerptLimit); excerpt != "" {
		parts = append(parts, excerpt)
	}
	if strings.TrimSpace(result.Title) != "" {
		parts = append(parts, result.Title)
	}
	if len(result.Keywords) > 0 {
		parts = append(parts, strings.Join(result.Keywords, " "))
	}
	return strings.Join(parts, "\n")
}

func (p *Pipeline) logProducerErrors(stage string, id core.ID, errs []error) {
	for _, err := range errs {
		p.logger.Warn("stage degraded to fallback", "stage", stage, "artifact", id, "error", err)
	}
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
