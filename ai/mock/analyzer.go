package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/lightfold/captura/ai"
)

// MockVisionAnalyzer is a test double for ai.VisionAnalyzer.
// Each method can be overridden via its function field; unset methods
// return simple deterministic output derived from the inputs.
type MockVisionAnalyzer struct {
	ExtractTextFunc   func(ctx context.Context, image []byte) (string, error)
	ExtractAllFunc    func(ctx context.Context, image []byte) (*ai.TextExtraction, error)
	ClassifyFunc      func(ctx context.Context, image []byte, text string) (*ai.Classification, error)
	TitleFunc         func(ctx context.Context, image []byte, ocrText string) (string, error)
	DescriptionFunc   func(ctx context.Context, image []byte, ocrText string) (string, error)
	ComprehensiveFunc func(ctx context.Context, image []byte, ocrText, title string, keywords []string) (string, error)

	mu     sync.Mutex
	counts map[string]int
}

// NewMockVisionAnalyzer creates a mock analyzer with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via CallCount().
func NewMockVisionAnalyzer() *MockVisionAnalyzer {
	return &MockVisionAnalyzer{counts: make(map[string]int)}
}

func (m *MockVisionAnalyzer) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[method]++
}

// CallCount returns how many times the named method was invoked.
// Method names match the interface: "ExtractAllText", "Classify", etc.
func (m *MockVisionAnalyzer) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[method]
}

// TotalCalls returns the total invocation count across all methods.
func (m *MockVisionAnalyzer) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, c := range m.counts {
		total += c
	}
	return total
}

// Reset clears counters and custom functions.
func (m *MockVisionAnalyzer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = make(map[string]int)
	m.ExtractTextFunc = nil
	m.ExtractAllFunc = nil
	m.ClassifyFunc = nil
	m.TitleFunc = nil
	m.DescriptionFunc = nil
	m.ComprehensiveFunc = nil
}

// ExtractText returns deterministic text derived from the image bytes.
func (m *MockVisionAnalyzer) ExtractText(ctx context.Context, image []byte) (string, error) {
	m.record("ExtractText")
	if m.ExtractTextFunc != nil {
		return m.ExtractTextFunc(ctx, image)
	}
	return fmt.Sprintf("mock text for %d bytes", len(image)), nil
}

// ExtractAllText returns deterministic text with full confidence.
func (m *MockVisionAnalyzer) ExtractAllText(ctx context.Context, image []byte) (*ai.TextExtraction, error) {
	m.record("ExtractAllText")
	if m.ExtractAllFunc != nil {
		return m.ExtractAllFunc(ctx, image)
	}
	return &ai.TextExtraction{
		Text:       fmt.Sprintf("mock text for %d bytes", len(image)),
		Confidence: 1.0,
	}, nil
}

// Classify returns a fixed classification.
func (m *MockVisionAnalyzer) Classify(ctx context.Context, image []byte, text string) (*ai.Classification, error) {
	m.record("Classify")
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, image, text)
	}
	return &ai.Classification{ContentType: "other"}, nil
}

// GenerateTitle returns the first few words of the OCR text.
func (m *MockVisionAnalyzer) GenerateTitle(ctx context.Context, image []byte, ocrText string) (string, error) {
	m.record("GenerateTitle")
	if m.TitleFunc != nil {
		return m.TitleFunc(ctx, image, ocrText)
	}
	words := strings.Fields(ocrText)
	if len(words) > 5 {
		words = words[:5]
	}
	return strings.Join(words, " "), nil
}

// GenerateDescription returns a canned description.
func (m *MockVisionAnalyzer) GenerateDescription(ctx context.Context, image []byte, ocrText string) (string, error) {
	m.record("GenerateDescription")
	if m.DescriptionFunc != nil {
		return m.DescriptionFunc(ctx, image, ocrText)
	}
	return "mock description", nil
}

// GenerateComprehensiveDescription concatenates the available context.
func (m *MockVisionAnalyzer) GenerateComprehensiveDescription(ctx context.Context, image []byte, ocrText, title string, keywords []string) (string, error) {
	m.record("GenerateComprehensiveDescription")
	if m.ComprehensiveFunc != nil {
		return m.ComprehensiveFunc(ctx, image, ocrText, title, keywords)
	}
	parts := []string{"mock comprehensive description"}
	if title != "" {
		parts = append(parts, title)
	}
	if ocrText != "" {
		parts = append(parts, ocrText)
	}
	return strings.Join(parts, ". "), nil
}
