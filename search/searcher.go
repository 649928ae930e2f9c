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

package search

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/lightfold/captura/core"
	"github.com/lightfold/captura/embedding"
	"github.com/lightfold/captura/storage"
)

// ErrRepositoryRequired indicates the searcher was built without an
// artifact repository.
var ErrRepositoryRequired = errors.New("artifact repository is required")

// SemanticIndex is the slice of the embedding store the searcher needs.
type SemanticIndex interface {
	SearchByText(ctx context.Context, query string, k int) ([]embedding.Match, error)
}

// Searcher is the unified search entry point. It fans a query out to
// the lexical index and, when available, the semantic index, then
// merges both lists with a semantic-first bias.
type Searcher struct {
	artifacts storage.ArtifactRepository
	index     SemanticIndex
	logger    *slog.Logger
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithSemanticIndex attaches a semantic index. Without one, searches
// are lexical-only.
func WithSemanticIndex(index SemanticIndex) SearcherOption {
	return func(s *Searcher) {
		s.index = index
	}
}

// WithLogger sets the logger used by the searcher.
func WithLogger(logger *slog.Logger) SearcherOption {
	return func(s *Searcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSearcher creates a Searcher over the artifact repository.
func NewSearcher(artifacts storage.ArtifactRepository, opts ...SearcherOption) (*Searcher, error) {
	if artifacts == nil {
		return nil, ErrRepositoryRequired
	}
	s := &Searcher{
		artifacts: artifacts,
		logger:    slog.Default().With("component", "search"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Search runs the lexical and semantic searches concurrently and merges
// the two lists.
//
// The semantic index is a soft dependency: its errors are logged and
// the search proceeds lexical-only. The merge keys by artifact id:
// every semantic hit goes first (scored by cosine similarity), then
// appends each lexical hit whose id is not already present. A lexical
// duplicate of a semantic hit is dropped, not re-ranked. The merged
// list is truncated to limit.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	var (
		lexical  []*core.SearchResult
		semantic []embedding.Match
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lexical, err = s.artifacts.SearchArtifacts(gctx, query, limit)
		return err
	})
	if s.index != nil {
		g.Go(func() error {
			matches, err := s.index.SearchByText(gctx, query, limit)
			if err != nil {
				s.logger.Warn("semantic search failed, continuing lexical-only", "error", err)
				return nil
			}
			semantic = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeResults(semantic, lexical, limit), nil
}

func mergeResults(semantic []embedding.Match, lexical []*core.SearchResult, limit int) []*core.SearchResult {
	merged := make([]*core.SearchResult, 0, len(semantic)+len(lexical))
	seen := make(map[core.ID]bool, len(semantic))

	for _, match := range semantic {
		merged = append(merged, &core.SearchResult{
			ArtifactId: match.Id,
			Score:      match.Score,
			Source:     core.SourceSemantic,
		})
		seen[match.Id] = true
	}
	for _, result := range lexical {
		if seen[result.ArtifactId] {
			continue
		}
		merged = append(merged, result)
	}

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
