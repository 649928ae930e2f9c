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

package captura

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lightfold/captura/ai"
	"github.com/lightfold/captura/ai/openai"
	"github.com/lightfold/captura/analysis"
	"github.com/lightfold/captura/core"
	"github.com/lightfold/captura/embedding"
	"github.com/lightfold/captura/folder"
	"github.com/lightfold/captura/search"
	"github.com/lightfold/captura/storage"
	"github.com/lightfold/captura/storage/badger"
)

const embeddingIndexFile = "embeddings.json"

// Library is the top-level handle over a captura data directory: the
// metadata store, the embedding index, the analysis pipeline, and the
// search and folder services wired together.
type Library struct {
	backend   *badger.Backend
	artifacts storage.ArtifactRepository
	folders   storage.SmartFolderRepository
	provider  ai.AIProvider
	store     *embedding.Store
	pipeline  *analysis.Pipeline
	batch     *analysis.BatchProcessor
	evaluator *folder.Evaluator
	searcher  *search.Searcher
	logger    *slog.Logger
}

// LibraryOption configures a Library.
type LibraryOption func(*libraryOptions)

type libraryOptions struct {
	aiConfig  *ai.Config
	provider  ai.AIProvider
	batchOpts []analysis.BatchOption
}

// WithAIConfig sets the AI endpoint configuration.
func WithAIConfig(config *ai.Config) LibraryOption {
	return func(o *libraryOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies a pre-built AI provider instead of the default
// OpenAI-compatible one. Used by tests and embedders with their own
// lifecycle.
func WithProvider(provider ai.AIProvider) LibraryOption {
	return func(o *libraryOptions) {
		o.provider = provider
	}
}

// WithBatchOptions forwards options to the batch processor.
func WithBatchOptions(opts ...analysis.BatchOption) LibraryOption {
	return func(o *libraryOptions) {
		o.batchOpts = append(o.batchOpts, opts...)
	}
}

// Open opens (or creates) a library rooted at dataDir.
func Open(dataDir string, opts ...LibraryOption) (*Library, error) {
	options := &libraryOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filepath.Join(dataDir, "metadata"), false)
	if err != nil {
		return nil, err
	}

	artifacts, err := badger.NewArtifactRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	folders, err := badger.NewSmartFolderRepository(backend)
	if err != nil {
		artifacts.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			folders.Close()
			artifacts.Close()
			backend.Close()
			return nil, err
		}
	}

	fail := func(err error) (*Library, error) {
		provider.Close()
		folders.Close()
		artifacts.Close()
		backend.Close()
		return nil, err
	}

	store, err := embedding.NewStore(
		filepath.Join(dataDir, embeddingIndexFile),
		provider.Embedder(),
		embedding.WithVisionAnalyzer(provider.VisionAnalyzer()),
	)
	if err != nil {
		return fail(err)
	}

	pipeline, err := analysis.NewPipeline(provider)
	if err != nil {
		return fail(err)
	}
	batch, err := analysis.NewBatchProcessor(pipeline, artifacts, store, options.batchOpts...)
	if err != nil {
		return fail(err)
	}

	evaluator, err := folder.NewEvaluator(artifacts)
	if err != nil {
		batch.Release()
		return fail(err)
	}
	searcher, err := search.NewSearcher(artifacts, search.WithSemanticIndex(store))
	if err != nil {
		batch.Release()
		return fail(err)
	}

	return &Library{
		backend:   backend,
		artifacts: artifacts,
		folders:   folders,
		provider:  provider,
		store:     store,
		pipeline:  pipeline,
		batch:     batch,
		evaluator: evaluator,
		searcher:  searcher,
		logger:    slog.Default().With("component", "library"),
	}, nil
}

// Close releases every resource held by the library.
func (l *Library) Close() error {
	l.batch.Release()

	if err := l.provider.Close(); err != nil {
		l.logger.Error("error closing AI provider", "err", err)
	}
	if err := l.folders.Close(); err != nil {
		l.logger.Error("error closing folder repository", "err", err)
		return err
	}
	if err := l.artifacts.Close(); err != nil {
		l.logger.Error("error closing artifact repository", "err", err)
		return err
	}
	if err := l.backend.Close(); err != nil {
		l.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// ImportSummary reports one Import call.
type ImportSummary struct {
	Added   []*core.Artifact
	Skipped []string
	Results []analysis.Result
}

// Import registers screenshot files and runs them through the analysis
// pipeline. Files whose content fingerprint already exists in the
// library are skipped, so re-importing a directory is cheap and safe.
// Per-file analysis failures are reported in the summary, never as an
// error.
func (l *Library) Import(ctx context.Context, paths ...string) (*ImportSummary, error) {
	summary := &ImportSummary{}
	var items []analysis.Item

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		fp := core.FingerprintBytes(data)

		if existing, err := l.artifacts.FindByFingerprint(ctx, fp); err == nil {
			l.logger.Info("skipping duplicate import", "path", path, "existing", existing.Id)
			summary.Skipped = append(summary.Skipped, path)
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}

		createdAt := artifactTimestamp(path)
		artifact := &core.Artifact{
			Id:          core.NewID(),
			Path:        path,
			Fingerprint: fp,
			CreatedAt:   createdAt,
		}
		if _, err := l.artifacts.AddArtifacts(ctx, artifact); err != nil {
			return nil, err
		}
		summary.Added = append(summary.Added, artifact)
		items = append(items, analysis.Item{Id: artifact.Id, Path: artifact.Path})
	}

	if len(items) > 0 {
		summary.Results = l.batch.ProcessAll(ctx, items)
	}
	return summary, nil
}

// Reprocess re-runs analysis for one artifact, replacing its metadata
// and re-indexing its embedding.
func (l *Library) Reprocess(ctx context.Context, id core.ID) (*analysis.Result, error) {
	artifact, err := l.artifacts.GetArtifact(ctx, id)
	if err != nil {
		return nil, err
	}
	// The store is idempotent by id; drop the stale record first so the
	// fresh comprehensive description gets embedded.
	if err := l.store.RemoveItem(id); err != nil {
		return nil, err
	}

	results := l.batch.ProcessAll(ctx, []analysis.Item{{Id: artifact.Id, Path: artifact.Path}})
	return &results[0], nil
}

// Search is the unified entry point over lexical and semantic search.
func (l *Library) Search(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	return l.searcher.Search(ctx, query, limit)
}

// AddSmartFolder creates a named smart folder around a rule.
func (l *Library) AddSmartFolder(ctx context.Context, name string, rule core.FilterRule) (*core.SmartFolder, error) {
	sf := &core.SmartFolder{
		Id:   core.NewID(),
		Name: name,
		Rule: rule,
	}
	if _, err := l.folders.AddSmartFolders(ctx, sf); err != nil {
		return nil, err
	}
	return sf, nil
}

// SmartFolders lists all smart folders.
func (l *Library) SmartFolders(ctx context.Context) ([]*core.SmartFolder, error) {
	return l.folders.GetSmartFolders(ctx)
}

// DeleteSmartFolder removes a smart folder definition. Artifacts are
// untouched; folders have no membership of their own.
func (l *Library) DeleteSmartFolder(ctx context.Context, id core.ID) error {
	return l.folders.DeleteSmartFolders(ctx, id)
}

// EvaluateFolder computes the membership of a stored smart folder.
func (l *Library) EvaluateFolder(ctx context.Context, id core.ID) ([]*core.Artifact, error) {
	sf, err := l.folders.GetSmartFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	return l.evaluator.EvaluateFolder(ctx, sf)
}

// EvaluateRule computes membership for an ad-hoc rule.
func (l *Library) EvaluateRule(ctx context.Context, rule core.FilterRule) ([]*core.Artifact, error) {
	return l.evaluator.Evaluate(ctx, rule)
}

// SetFavorite flags or unflags an artifact.
func (l *Library) SetFavorite(ctx context.Context, id core.ID, favorite bool) error {
	return l.artifacts.SetFavorite(ctx, id, favorite)
}

// Tag associates a tag with an artifact.
func (l *Library) Tag(ctx context.Context, id, tagId core.ID) error {
	return l.artifacts.TagArtifact(ctx, id, tagId)
}

// Untag removes a tag association.
func (l *Library) Untag(ctx context.Context, id, tagId core.ID) error {
	return l.artifacts.UntagArtifact(ctx, id, tagId)
}

// Rename records a new file path for an artifact. The artifact id is
// stable identity and never changes; both the metadata store and the
// embedding index follow the path.
func (l *Library) Rename(ctx context.Context, id core.ID, newPath string) error {
	if newPath == "" {
		return core.ErrEmptyPath
	}
	artifact, err := l.artifacts.GetArtifact(ctx, id)
	if err != nil {
		return err
	}
	artifact.Path = newPath
	if _, err := l.artifacts.UpdateArtifacts(ctx, artifact); err != nil {
		return err
	}
	return l.store.UpdatePath(id, newPath)
}

// Delete removes an artifact from the metadata store and the embedding
// index. The screenshot file itself is left alone.
func (l *Library) Delete(ctx context.Context, id core.ID) error {
	if err := l.artifacts.DeleteArtifacts(ctx, id); err != nil {
		return err
	}
	return l.store.RemoveItem(id)
}

// Purge drops embedding records whose backing files have disappeared.
// Returns how many records were removed.
func (l *Library) Purge(ctx context.Context) (int, error) {
	return l.store.PurgeStale()
}

// Artifacts exposes the underlying artifact repository.
func (l *Library) Artifacts() storage.ArtifactRepository {
	return l.artifacts
}

// EmbeddingStore exposes the underlying embedding store.
func (l *Library) EmbeddingStore() *embedding.Store {
	return l.store
}

// artifactTimestamp derives the capture time for an imported file from
// its modification time.
func artifactTimestamp(path string) time.Time {
	if info, err := os.Stat(path); err == nil {
		return info.ModTime().UTC()
	}
	return time.Now().UTC()
}
