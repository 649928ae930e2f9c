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

package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/lightfold/captura/ai"
	"github.com/lightfold/captura/core"
)

// Record kinds.
const (
	KindImage = "image"
	KindText  = "text"
)

// DefaultTextBudget bounds the characters sent to the embedding API.
// The remote model has a token ceiling; truncation is deliberate and
// lossy but bounded.
const DefaultTextBudget = 8000

// Record is one indexed artifact vector with its source text.
type Record struct {
	Id          core.ID           `json:"id"`
	Path        string            `json:"path"`
	Kind        string            `json:"kind"`
	Vector      []float32         `json:"vector"`
	SourceText  string            `json:"sourceText"`
	RawMetadata map[string]string `json:"rawMetadata,omitempty"`
}

// Match is one semantic search hit.
type Match struct {
	Id     core.ID
	Score  float32
	Record *Record
}

// indexFile is the on-disk shape of the store.
type indexFile struct {
	Items       map[core.ID]*Record `json:"items"`
	LastUpdated int64               `json:"lastUpdated"`
}

// Store maintains artifact embeddings in memory, mirrored to a JSON
// index file on every mutation. All persisted state survives restart.
type Store struct {
	mu       sync.RWMutex
	items    map[core.ID]*Record
	dims     int
	path     string
	embedder ai.Embedder
	analyzer ai.VisionAnalyzer
	budget   int
	logger   *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store) error

// WithVisionAnalyzer enables content regeneration from the on-disk
// image when an artifact arrives without a usable description.
func WithVisionAnalyzer(analyzer ai.VisionAnalyzer) StoreOption {
	return func(s *Store) error {
		s.analyzer = analyzer
		return nil
	}
}

// WithTextBudget overrides the character budget applied to embedding
// input.
func WithTextBudget(budget int) StoreOption {
	return func(s *Store) error {
		if budget <= 0 {
			return fmt.Errorf("text budget must be positive, got %d", budget)
		}
		s.budget = budget
		return nil
	}
}

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// NewStore opens (or creates) the embedding index at indexPath.
// A persisted index whose vectors do not all share one dimensionality
// is rejected with ErrDimensionMismatch rather than silently loaded.
func NewStore(indexPath string, embedder ai.Embedder, opts ...StoreOption) (*Store, error) {
	if indexPath == "" {
		return nil, ErrEmptyIndexPath
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Store{
		items:    make(map[core.ID]*Record),
		path:     indexPath,
		embedder: embedder,
		budget:   DefaultTextBudget,
		logger:   slog.Default().With("component", "embedding-store"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(indexPath), 0755); err != nil {
		return nil, err
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var file indexFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptIndex, err)
	}

	for id, record := range file.Items {
		if record == nil {
			continue
		}
		if s.dims == 0 {
			s.dims = len(record.Vector)
		} else if len(record.Vector) != s.dims {
			return fmt.Errorf("%w: record %s has %d dims, store has %d",
				ErrDimensionMismatch, id, len(record.Vector), s.dims)
		}
		s.items[id] = record
	}

	s.logger.Debug("loaded embedding index", "records", len(s.items), "dims", s.dims)
	return nil
}

// AddImage indexes one artifact. Idempotent by id: if the id already
// has a record the call is a no-op; re-analysis refreshes nothing
// unless the caller removes the old record first.
//
// Content is resolved with priority: caller-supplied comprehensive
// description, else regeneration from the on-disk image via the vision
// API, else a concatenation of available metadata fields. A failing or
// empty embedding is fatal to this call; the artifact is either indexed
// with a usable vector or not at all.
func (s *Store) AddImage(ctx context.Context, id core.ID, path string, meta *core.Analysis) error {
	if id == "" {
		return core.ErrEmptyID
	}

	s.mu.RLock()
	_, exists := s.items[id]
	s.mu.RUnlock()
	if exists {
		return nil
	}

	content := s.resolveContent(ctx, path, meta)
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: artifact %s", ErrNoContent, id)
	}
	content = truncateRunes(content, s.budget)

	vector, err := s.embedder.EmbedText(ctx, content)
	if err != nil {
		return fmt.Errorf("embedding artifact %s: %w", id, err)
	}
	if len(vector) == 0 {
		return fmt.Errorf("%w: artifact %s", ErrEmptyEmbedding, id)
	}

	record := &Record{
		Id:          id,
		Path:        path,
		Kind:        KindImage,
		Vector:      vector,
		SourceText:  content,
		RawMetadata: metadataMap(meta),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; exists {
		return nil
	}
	if s.dims == 0 {
		s.dims = len(vector)
	} else if len(vector) != s.dims {
		return fmt.Errorf("%w: got %d dims, store has %d", ErrDimensionMismatch, len(vector), s.dims)
	}
	s.items[id] = record
	return s.persistLocked()
}

// resolveContent picks the embedding input for an artifact.
func (s *Store) resolveContent(ctx context.Context, path string, meta *core.Analysis) string {
	if meta != nil && strings.TrimSpace(meta.ComprehensiveDescription) != "" {
		return meta.ComprehensiveDescription
	}

	if regenerated := s.regenerate(ctx, path); regenerated != "" {
		return regenerated
	}

	if meta == nil {
		return ""
	}
	var parts []string
	for _, part := range []string{meta.Title, meta.Description, meta.OCRText} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	if len(meta.Keywords) > 0 {
		parts = append(parts, strings.Join(meta.Keywords, " "))
	}
	return strings.Join(parts, "\n")
}

// regenerate rebuilds a description from the on-disk image. Any failure
// just falls through to the metadata concatenation.
func (s *Store) regenerate(ctx context.Context, path string) string {
	if s.analyzer == nil || path == "" {
		return ""
	}
	image, err := os.ReadFile(path)
	if err != nil {
		s.logger.Debug("cannot read image for regeneration", "path", path, "error", err)
		return ""
	}
	text, err := s.analyzer.ExtractText(ctx, image)
	if err != nil {
		s.logger.Debug("text extraction failed during regeneration", "path", path, "error", err)
		text = ""
	}
	description, err := s.analyzer.GenerateDescription(ctx, image, text)
	if err != nil {
		s.logger.Debug("description generation failed during regeneration", "path", path, "error", err)
		description = ""
	}
	if strings.TrimSpace(description) != "" && strings.TrimSpace(text) != "" {
		return description + "\n" + text
	}
	if strings.TrimSpace(description) != "" {
		return description
	}
	return strings.TrimSpace(text)
}

// SearchByText embeds the query once, scores every stored vector by
// cosine similarity, and returns the top k matches ordered by
// descending score. Ties break by ascending artifact id so results are
// deterministic for a fixed store state.
func (s *Store) SearchByText(ctx context.Context, query string, k int) ([]Match, error) {
	if k <= 0 {
		return nil, nil
	}

	queryVector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(queryVector) == 0 {
		return nil, ErrEmptyEmbedding
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]Match, 0, len(s.items))
	for id, record := range s.items {
		score, err := CosineSimilarity(queryVector, record.Vector)
		if err != nil {
			return nil, fmt.Errorf("scoring artifact %s: %w", id, err)
		}
		matches = append(matches, Match{Id: id, Score: score, Record: record})
	}

	slices.SortFunc(matches, func(a, b Match) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		return strings.Compare(string(a.Id), string(b.Id))
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// RemoveItem drops an artifact's record and persists. Removing an
// unknown id is a no-op.
func (s *Store) RemoveItem(id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		return nil
	}
	delete(s.items, id)
	return s.persistLocked()
}

// UpdatePath records a rename for an already-indexed artifact. The id
// and vector are untouched. Unknown ids are a no-op; not every artifact
// is indexed.
func (s *Store) UpdatePath(id core.ID, newPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, exists := s.items[id]
	if !exists {
		return nil
	}
	record.Path = newPath
	return s.persistLocked()
}

// PurgeStale removes every record whose backing file no longer exists
// (or whose existence check errors). If anything was removed, the store
// persists once at the end.
func (s *Store) PurgeStale() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, record := range s.items {
		if _, err := os.Stat(record.Path); err != nil {
			delete(s.items, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	s.logger.Info("purged stale embedding records", "removed", removed)
	return removed, s.persistLocked()
}

// Save rewrites the index file even without a pending mutation.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// Count returns the number of indexed records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// persistLocked rewrites the entire store through a temporary file and
// an atomic rename so a reader never observes a half-written index.
// Callers must hold the write lock.
func (s *Store) persistLocked() error {
	file := indexFile{
		Items:       s.items,
		LastUpdated: time.Now().UnixMilli(),
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".captura-index-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func metadataMap(meta *core.Analysis) map[string]string {
	if meta == nil {
		return nil
	}
	m := make(map[string]string)
	if meta.Title != "" {
		m["title"] = meta.Title
	}
	if meta.ContentType != "" {
		m["contentType"] = meta.ContentType
	}
	if meta.AppDetected != "" {
		m["app"] = meta.AppDetected
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// truncateRunes bounds text to limit runes without splitting one.
func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
