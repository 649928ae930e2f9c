package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightfold/captura/core"
	"github.com/lightfold/captura/embedding"
	"github.com/lightfold/captura/storage"
	"github.com/lightfold/captura/storage/badger"
)

// stubIndex is a canned SemanticIndex.
type stubIndex struct {
	matches []embedding.Match
	err     error
}

func (s *stubIndex) SearchByText(ctx context.Context, query string, k int) ([]embedding.Match, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.matches) > k {
		return s.matches[:k], nil
	}
	return s.matches, nil
}

func newSearchFixture(t *testing.T, index SemanticIndex) (storage.ArtifactRepository, *Searcher) {
	t.Helper()
	artifactRepo, folderRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		folderRepo.Close()
		artifactRepo.Close()
		backend.Close()
	})

	opts := []SearcherOption{}
	if index != nil {
		opts = append(opts, WithSemanticIndex(index))
	}
	searcher, err := NewSearcher(artifactRepo, opts...)
	require.NoError(t, err)
	return artifactRepo, searcher
}

func addIndexedArtifact(t *testing.T, repo storage.ArtifactRepository, path, content string) *core.Artifact {
	t.Helper()
	ctx := context.Background()
	artifact := &core.Artifact{Id: core.NewID(), Path: path, CreatedAt: time.Now().UTC()}
	_, err := repo.AddArtifacts(ctx, artifact)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateSearchIndex(ctx, artifact.Id, content, nil))
	return artifact
}

func TestNewSearcherRequiresRepository(t *testing.T) {
	_, err := NewSearcher(nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
}

func TestSearchLexicalOnly(t *testing.T) {
	repo, searcher := newSearchFixture(t, nil)
	artifact := addIndexedArtifact(t, repo, "/captures/invoice.png", "invoice total due")

	results, err := searcher.Search(context.Background(), "invoice", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, artifact.Id, results[0].ArtifactId)
	assert.Equal(t, core.SourceLexical, results[0].Source)
}

func TestSearchMergesSemanticFirst(t *testing.T) {
	semanticId := core.NewID()
	index := &stubIndex{matches: []embedding.Match{
		{Id: semanticId, Score: 0.83},
	}}
	repo, searcher := newSearchFixture(t, index)
	lexical := addIndexedArtifact(t, repo, "/captures/invoice.png", "invoice total due")

	results, err := searcher.Search(context.Background(), "invoice", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Semantic hits lead regardless of lexical score
	assert.Equal(t, semanticId, results[0].ArtifactId)
	assert.Equal(t, core.SourceSemantic, results[0].Source)
	assert.Equal(t, float32(0.83), results[0].Score)
	assert.Equal(t, lexical.Id, results[1].ArtifactId)
	assert.Equal(t, core.SourceLexical, results[1].Source)
}

func TestSearchDropsLexicalDuplicates(t *testing.T) {
	repoLessIndex := &stubIndex{}
	repo, searcher := newSearchFixture(t, repoLessIndex)
	artifact := addIndexedArtifact(t, repo, "/captures/invoice.png", "invoice total due")
	repoLessIndex.matches = []embedding.Match{{Id: artifact.Id, Score: 0.91}}

	results, err := searcher.Search(context.Background(), "invoice", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// The duplicate keeps its semantic score, not the lexical one
	assert.Equal(t, core.SourceSemantic, results[0].Source)
	assert.Equal(t, float32(0.91), results[0].Score)
}

func TestSearchSemanticFailureFallsBackToLexical(t *testing.T) {
	index := &stubIndex{err: errors.New("embedding server down")}
	repo, searcher := newSearchFixture(t, index)
	artifact := addIndexedArtifact(t, repo, "/captures/invoice.png", "invoice total due")

	results, err := searcher.Search(context.Background(), "invoice", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, artifact.Id, results[0].ArtifactId)
	assert.Equal(t, core.SourceLexical, results[0].Source)
}

func TestSearchTruncatesToLimit(t *testing.T) {
	index := &stubIndex{matches: []embedding.Match{
		{Id: core.ID("s1"), Score: 0.9},
		{Id: core.ID("s2"), Score: 0.8},
	}}
	repo, searcher := newSearchFixture(t, index)
	addIndexedArtifact(t, repo, "/captures/invoice-a.png", "invoice one")
	addIndexedArtifact(t, repo, "/captures/invoice-b.png", "invoice two")

	results, err := searcher.Search(context.Background(), "invoice", 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, core.SourceSemantic, results[0].Source)
	assert.Equal(t, core.SourceSemantic, results[1].Source)
	assert.Equal(t, core.SourceLexical, results[2].Source)
}
