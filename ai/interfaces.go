package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// VisionAnalyzer extracts text and semantic content from captured images
// via a remote multimodal inference API. Every method may fail or return
// empty output; callers are expected to tolerate both and degrade to
// local heuristics where they can.
// Implementations must be thread-safe for concurrent use.
type VisionAnalyzer interface {
	// ExtractText performs plain OCR over the image and returns the raw text.
	ExtractText(ctx context.Context, image []byte) (string, error)

	// ExtractAllText performs OCR over the image and reports a confidence
	// score alongside the extracted text.
	ExtractAllText(ctx context.Context, image []byte) (*TextExtraction, error)

	// Classify returns a structured classification of the image content.
	Classify(ctx context.Context, image []byte, text string) (*Classification, error)

	// GenerateTitle produces a short human-readable title for the image.
	// The ocrText parameter gives the model textual context.
	GenerateTitle(ctx context.Context, image []byte, ocrText string) (string, error)

	// GenerateDescription produces a detailed description of the image.
	GenerateDescription(ctx context.Context, image []byte, ocrText string) (string, error)

	// GenerateComprehensiveDescription produces a long-form summary used as
	// embedding input. Title and keywords are optional context.
	GenerateComprehensiveDescription(ctx context.Context, image []byte, ocrText, title string, keywords []string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and VisionAnalyzer instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// VisionAnalyzer returns the multimodal analysis service.
	// The returned VisionAnalyzer is safe for concurrent use.
	VisionAnalyzer() VisionAnalyzer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
