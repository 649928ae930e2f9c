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

package folder

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/lightfold/captura/core"
	"github.com/lightfold/captura/storage"
)

// ErrRepositoryRequired indicates the evaluator was built without an
// artifact repository.
var ErrRepositoryRequired = errors.New("artifact repository is required")

// Evaluator computes smart folder membership by interpreting a filter
// rule against the artifact store. Folders persist only their rule;
// membership is recomputed on every evaluation and evaluation never
// mutates anything.
type Evaluator struct {
	artifacts storage.ArtifactRepository
	logger    *slog.Logger
	now       func() time.Time
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithLogger sets the logger used by the evaluator.
func WithLogger(logger *slog.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// withClock overrides the time source. Used by tests.
func withClock(now func() time.Time) EvaluatorOption {
	return func(e *Evaluator) {
		e.now = now
	}
}

// NewEvaluator creates an Evaluator over the given artifact repository.
func NewEvaluator(artifacts storage.ArtifactRepository, opts ...EvaluatorOption) (*Evaluator, error) {
	if artifacts == nil {
		return nil, ErrRepositoryRequired
	}
	e := &Evaluator{
		artifacts: artifacts,
		logger:    slog.Default().With("component", "folder-evaluator"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Evaluate returns the artifacts matching the rule, newest-first.
// A rule kind this build does not recognize yields an empty result
// rather than an error, so folders written by a newer version degrade
// to empty instead of breaking the listing.
func (e *Evaluator) Evaluate(ctx context.Context, rule core.FilterRule) ([]*core.Artifact, error) {
	var (
		results []*core.Artifact
		err     error
	)

	switch rule.Kind {
	case core.RuleAll:
		results, err = e.artifacts.GetAllArtifacts(ctx)
	case core.RuleRecent:
		now := e.now().UTC()
		cutoff := now.Add(-time.Duration(rule.Days) * 24 * time.Hour)
		results, err = e.artifacts.GetArtifactsByDateRange(ctx, cutoff, now)
	case core.RuleFavorites:
		results, err = e.artifacts.GetFavoriteArtifacts(ctx)
	case core.RuleByTag:
		results, err = e.artifacts.GetArtifactsByTag(ctx, rule.TagId)
	case core.RuleDateRange:
		results, err = e.artifacts.GetArtifactsByDateRange(ctx, rule.Start, rule.End)
	case core.RuleContentType:
		results, err = e.artifacts.GetArtifactsByKeywordSubstring(ctx, rule.Substring)
	default:
		e.logger.Warn("unrecognized rule kind, returning empty result", "kind", rule.Kind)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sortNewestFirst(results)
	return results, nil
}

// EvaluateFolder evaluates a stored folder's rule.
func (e *Evaluator) EvaluateFolder(ctx context.Context, folder *core.SmartFolder) ([]*core.Artifact, error) {
	if folder == nil {
		return nil, core.ErrInvalidSmartFolder
	}
	return e.Evaluate(ctx, folder.Rule)
}

// sortNewestFirst orders by CreatedAt descending, ties by ascending id
// so a fixed store state always lists in the same order.
func sortNewestFirst(artifacts []*core.Artifact) {
	slices.SortFunc(artifacts, func(a, b *core.Artifact) int {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if a.CreatedAt.After(b.CreatedAt) {
				return -1
			}
			return 1
		}
		return strings.Compare(string(a.Id), string(b.Id))
	})
}
