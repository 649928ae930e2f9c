package analysis

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"

	"github.com/lightfold/captura/core"
	"github.com/lightfold/captura/embedding"
	"github.com/lightfold/captura/storage"
)

const (
	defaultGroupSize      = 3
	defaultGroupInterval  = time.Second
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
)

// Item is one screenshot queued for batch analysis.
type Item struct {
	Id   core.ID
	Path string
}

// Result is the outcome for one item. Err is set when analysis or
// persistence failed; Indexed reports whether the artifact made it
// into the embedding store.
type Result struct {
	Id       core.ID
	Path     string
	Analysis *core.Analysis
	Indexed  bool
	Err      error
}

// BatchProcessor drives the pipeline over many screenshots: items run
// through a worker pool in small groups, each group is awaited in full,
// and a rate limiter paces group starts so the local inference server
// is not flooded. A per-item failure never aborts its siblings.
type BatchProcessor struct {
	pipeline  *Pipeline
	artifacts storage.ArtifactRepository
	store     *embedding.Store
	pool      *ants.Pool
	limiter   *rate.Limiter
	groupSize int

	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor) error

// WithPoolSize sets the worker pool size. Default matches the group size.
func WithPoolSize(size int) BatchOption {
	return func(bp *BatchProcessor) error {
		if size < 1 {
			size = 1
		}
		if bp.pool != nil {
			bp.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		bp.pool = pool
		return nil
	}
}

// WithGroupSize sets how many items run concurrently before the
// processor pauses. Default is 3.
func WithGroupSize(size int) BatchOption {
	return func(bp *BatchProcessor) error {
		if size < 1 {
			size = 1
		}
		bp.groupSize = size
		return nil
	}
}

// WithGroupInterval sets the minimum spacing between group starts.
func WithGroupInterval(interval time.Duration) BatchOption {
	return func(bp *BatchProcessor) error {
		if interval <= 0 {
			bp.limiter = rate.NewLimiter(rate.Inf, 1)
		} else {
			bp.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
		return nil
	}
}

// WithRetryPolicy sets the retry behavior for embedding store writes.
func WithRetryPolicy(maxAttempts int, baseDelay time.Duration) BatchOption {
	return func(bp *BatchProcessor) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		bp.maxRetries = maxAttempts
		bp.retryBaseDelay = baseDelay
		return nil
	}
}

// WithBatchLogger sets a custom logger. Default is slog.Default().
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(bp *BatchProcessor) error {
		if logger != nil {
			bp.logger = logger
		}
		return nil
	}
}

// NewBatchProcessor creates a batch processor. The embedding store may
// be nil, in which case artifacts are analyzed and persisted but never
// semantically indexed.
func NewBatchProcessor(pipeline *Pipeline, artifacts storage.ArtifactRepository, store *embedding.Store, opts ...BatchOption) (*BatchProcessor, error) {
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	if artifacts == nil {
		return nil, ErrArtifactRepositoryRequired
	}

	bp := &BatchProcessor{
		pipeline:       pipeline,
		artifacts:      artifacts,
		store:          store,
		limiter:        rate.NewLimiter(rate.Every(defaultGroupInterval), 1),
		groupSize:      defaultGroupSize,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
		logger:         slog.Default().With("component", "batch-processor"),
	}
	for _, opt := range opts {
		if err := opt(bp); err != nil {
			bp.Release()
			return nil, err
		}
	}

	if bp.pool == nil {
		pool, err := ants.NewPool(bp.groupSize)
		if err != nil {
			return nil, err
		}
		bp.pool = pool
	}
	return bp, nil
}

// ProcessAll runs every item through the pipeline and returns one
// Result per item, in input order. Items run in groups; each group is
// awaited in full and group starts are paced by the configured
// interval. Per-item failures are recorded in their Result and never
// abort the batch.
func (bp *BatchProcessor) ProcessAll(ctx context.Context, items []Item) []Result {
	results := make([]Result, len(items))

	for start := 0; start < len(items); start += bp.groupSize {
		if err := bp.limiter.Wait(ctx); err != nil {
			for i := start; i < len(items); i++ {
				results[i] = Result{Id: items[i].Id, Path: items[i].Path, Err: err}
			}
			return results
		}

		end := min(start+bp.groupSize, len(items))
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			i := i
			item := items[i]
			wg.Add(1)
			if err := bp.pool.Submit(func() {
				defer wg.Done()
				results[i] = bp.processOne(ctx, item)
			}); err != nil {
				wg.Done()
				results[i] = Result{Id: item.Id, Path: item.Path, Err: err}
			}
		}
		wg.Wait()
	}

	return results
}

// processOne analyzes a single item, persists its metadata and search
// entry, then indexes it into the embedding store with retries. An
// embedding failure leaves the artifact analyzed but unindexed.
func (bp *BatchProcessor) processOne(ctx context.Context, item Item) Result {
	result := Result{Id: item.Id, Path: item.Path}

	analysis, err := bp.pipeline.Process(ctx, item.Id, item.Path)
	if err != nil {
		bp.logger.Error("analysis failed", "artifact", item.Id, "path", item.Path, "error", err)
		result.Err = err
		return result
	}
	result.Analysis = analysis

	if err := bp.artifacts.AddAnalysis(ctx, analysis); err != nil {
		bp.logger.Error("persisting analysis failed", "artifact", item.Id, "error", err)
		result.Err = err
		return result
	}
	content := buildSearchContent(item.Path, analysis)
	if err := bp.artifacts.UpdateSearchIndex(ctx, item.Id, content, analysis.Keywords); err != nil {
		bp.logger.Error("updating search index failed", "artifact", item.Id, "error", err)
		result.Err = err
		return result
	}

	if bp.store == nil || strings.TrimSpace(analysis.ComprehensiveDescription) == "" {
		return result
	}

	err = RetryWithBackoff(ctx, func() error {
		return bp.store.AddImage(ctx, item.Id, item.Path, analysis)
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		bp.logger.Warn("indexed without embedding", "artifact", item.Id, "error", err)
		return result
	}
	result.Indexed = true
	return result
}

// Release releases the worker pool. The processor should not be used
// after calling Release.
func (bp *BatchProcessor) Release() {
	if bp.pool != nil {
		bp.pool.Release()
	}
}

// buildSearchContent assembles the lexical search blob for an artifact:
// its filename plus every generated text field.
func buildSearchContent(path string, analysis *core.Analysis) string {
	parts := []string{filepath.Base(path)}
	for _, part := range []string{
		analysis.OCRText,
		analysis.Title,
		analysis.Description,
		analysis.ComprehensiveDescription,
	} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n")
}
