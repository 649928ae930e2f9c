package embedding

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightfold/captura/ai/mock"
	"github.com/lightfold/captura/core"
)

func newTestStore(t *testing.T, embedder *mock.MockEmbedder, opts ...StoreOption) (*Store, string) {
	t.Helper()
	indexPath := filepath.Join(t.TempDir(), "embeddings.json")
	store, err := NewStore(indexPath, embedder, opts...)
	require.NoError(t, err)
	return store, indexPath
}

func withMeta(description string) *core.Analysis {
	return &core.Analysis{ComprehensiveDescription: description}
}

func TestNewStoreValidation(t *testing.T) {
	_, err := NewStore("", mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrEmptyIndexPath)

	_, err = NewStore(filepath.Join(t.TempDir(), "idx.json"), nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestAddImageAndSearch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		switch text {
		case "dashboard with charts", "charts":
			return []float32{1, 0, 0}, nil
		case "terminal session":
			return []float32{0, 1, 0}, nil
		default:
			return []float32{0, 0, 1}, nil
		}
	}
	store, _ := newTestStore(t, embedder)
	ctx := context.Background()

	chartId := core.NewID()
	termId := core.NewID()
	require.NoError(t, store.AddImage(ctx, chartId, "/captures/chart.png", withMeta("dashboard with charts")))
	require.NoError(t, store.AddImage(ctx, termId, "/captures/term.png", withMeta("terminal session")))

	matches, err := store.SearchByText(ctx, "charts", 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, chartId, matches[0].Id)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
	assert.Equal(t, termId, matches[1].Id)

	// k caps the result list
	matches, err = store.SearchByText(ctx, "charts", 1)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestAddImageIdempotent(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store, _ := newTestStore(t, embedder)
	ctx := context.Background()

	id := core.NewID()
	require.NoError(t, store.AddImage(ctx, id, "/captures/a.png", withMeta("first analysis")))
	calls := embedder.CallCount()

	// Re-adding the same id is a no-op; no embedding call is made
	require.NoError(t, store.AddImage(ctx, id, "/captures/a.png", withMeta("second analysis")))
	assert.Equal(t, calls, embedder.CallCount())
	assert.Equal(t, 1, store.Count())
}

func TestAddImageNoContent(t *testing.T) {
	store, _ := newTestStore(t, mock.NewMockEmbedder())

	err := store.AddImage(context.Background(), core.NewID(), "/missing/image.png", nil)
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Equal(t, 0, store.Count())
}

func TestAddImageEmptyEmbeddingIsFatal(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, nil
	}
	store, _ := newTestStore(t, embedder)

	err := store.AddImage(context.Background(), core.NewID(), "/captures/a.png", withMeta("text"))
	assert.ErrorIs(t, err, ErrEmptyEmbedding)
	assert.Equal(t, 0, store.Count())
}

func TestAddImageDimensionMismatch(t *testing.T) {
	dims := 4
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		v := make([]float32, dims)
		v[0] = 1
		return v, nil
	}
	store, _ := newTestStore(t, embedder)
	ctx := context.Background()

	require.NoError(t, store.AddImage(ctx, core.NewID(), "/captures/a.png", withMeta("a")))

	dims = 8
	err := store.AddImage(ctx, core.NewID(), "/captures/b.png", withMeta("b"))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSearchTieBreakIsDeterministic(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	store, _ := newTestStore(t, embedder)
	ctx := context.Background()

	require.NoError(t, store.AddImage(ctx, core.ID("bbb"), "/captures/b.png", withMeta("same")))
	require.NoError(t, store.AddImage(ctx, core.ID("aaa"), "/captures/a.png", withMeta("same")))

	// Equal scores order by ascending id
	matches, err := store.SearchByText(ctx, "same", 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, core.ID("aaa"), matches[0].Id)
	assert.Equal(t, core.ID("bbb"), matches[1].Id)
}

func TestRemoveItem(t *testing.T) {
	store, _ := newTestStore(t, mock.NewMockEmbedder())
	ctx := context.Background()

	id := core.NewID()
	require.NoError(t, store.AddImage(ctx, id, "/captures/a.png", withMeta("text")))
	require.Equal(t, 1, store.Count())

	require.NoError(t, store.RemoveItem(id))
	assert.Equal(t, 0, store.Count())

	// Unknown ids are a no-op
	require.NoError(t, store.RemoveItem(core.NewID()))
}

func TestUpdatePath(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store, indexPath := newTestStore(t, embedder)
	ctx := context.Background()

	id := core.NewID()
	require.NoError(t, store.AddImage(ctx, id, "/captures/old.png", withMeta("text")))
	require.NoError(t, store.UpdatePath(id, "/captures/new.png"))

	// The rename survives a restart
	reopened, err := NewStore(indexPath, embedder)
	require.NoError(t, err)
	matches, err := reopened.SearchByText(ctx, "text", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "/captures/new.png", matches[0].Record.Path)

	// Unknown ids are a no-op
	require.NoError(t, store.UpdatePath(core.NewID(), "/elsewhere.png"))
}

func TestPersistenceAcrossRestart(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store, indexPath := newTestStore(t, embedder)
	ctx := context.Background()

	id := core.NewID()
	require.NoError(t, store.AddImage(ctx, id, "/captures/a.png", withMeta("persistent text")))

	reopened, err := NewStore(indexPath, embedder)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Count())

	// Reopened store still refuses the duplicate id
	calls := embedder.CallCount()
	require.NoError(t, reopened.AddImage(ctx, id, "/captures/a.png", withMeta("other")))
	assert.Equal(t, calls, embedder.CallCount())
}

func TestLoadCorruptIndex(t *testing.T) {
	indexPath := filepath.Join(t.TempDir(), "embeddings.json")
	require.NoError(t, os.WriteFile(indexPath, []byte("{not json"), 0644))

	_, err := NewStore(indexPath, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestLoadMixedDimensionsRejected(t *testing.T) {
	indexPath := filepath.Join(t.TempDir(), "embeddings.json")
	payload := `{
  "items": {
    "a": {"id": "a", "path": "/a.png", "kind": "image", "vector": [1, 0], "sourceText": "a"},
    "b": {"id": "b", "path": "/b.png", "kind": "image", "vector": [1, 0, 0], "sourceText": "b"}
  },
  "lastUpdated": 1
}`
	require.NoError(t, os.WriteFile(indexPath, []byte(payload), 0644))

	_, err := NewStore(indexPath, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestPurgeStale(t *testing.T) {
	store, _ := newTestStore(t, mock.NewMockEmbedder())
	ctx := context.Background()

	dir := t.TempDir()
	keepPath := filepath.Join(dir, "keep.png")
	stalePath := filepath.Join(dir, "stale.png")
	require.NoError(t, os.WriteFile(keepPath, []byte("png"), 0644))
	require.NoError(t, os.WriteFile(stalePath, []byte("png"), 0644))

	keepId := core.NewID()
	staleId := core.NewID()
	require.NoError(t, store.AddImage(ctx, keepId, keepPath, withMeta("keep")))
	require.NoError(t, store.AddImage(ctx, staleId, stalePath, withMeta("stale")))

	// Nothing stale yet
	removed, err := store.PurgeStale()
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	require.NoError(t, os.Remove(stalePath))

	removed, err = store.PurgeStale()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Count())
}
