package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lightfold/captura/core"
	"github.com/lightfold/captura/storage"
)

func newArtifact(path string, createdAt time.Time) *core.Artifact {
	return &core.Artifact{
		Id:        core.NewID(),
		Path:      path,
		CreatedAt: createdAt,
	}
}

func TestArtifactBasics(t *testing.T) {
	artifactRepo, folderRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		folderRepo.Close()
		artifactRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	artifact := newArtifact("/captures/shot-001.png", time.Now().UTC())
	artifact.Fingerprint = core.FingerprintBytes([]byte("pixels"))

	added, err := artifactRepo.AddArtifacts(ctx, artifact)
	if err != nil {
		t.Fatalf("Failed to add artifact: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("Expected 1 artifact, got %d", len(added))
	}
	if added[0].InsertedAt.IsZero() {
		t.Fatal("Expected InsertedAt to be set")
	}

	retrieved, err := artifactRepo.GetArtifact(ctx, artifact.Id)
	if err != nil {
		t.Fatalf("Failed to get artifact: %v", err)
	}
	if retrieved.Path != "/captures/shot-001.png" {
		t.Fatalf("Expected path '/captures/shot-001.png', got '%s'", retrieved.Path)
	}

	_, err = artifactRepo.GetArtifact(ctx, core.NewID())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestArtifactDateRange(t *testing.T) {
	artifactRepo, folderRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { folderRepo.Close(); artifactRepo.Close(); backend.Close() }()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	artifacts := []*core.Artifact{
		newArtifact("/captures/old.png", now.Add(-48*time.Hour)),
		newArtifact("/captures/mid.png", now.Add(-12*time.Hour)),
		newArtifact("/captures/new.png", now),
	}
	if _, err := artifactRepo.AddArtifacts(ctx, artifacts...); err != nil {
		t.Fatalf("Failed to add artifacts: %v", err)
	}

	results, err := artifactRepo.GetArtifactsByDateRange(ctx, now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("Failed to get artifacts by date range: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 artifacts, got %d", len(results))
	}

	// Range bounds are inclusive
	exact, err := artifactRepo.GetArtifactsByDateRange(ctx, now, now)
	if err != nil {
		t.Fatalf("Failed to get artifacts by exact range: %v", err)
	}
	if len(exact) != 1 {
		t.Fatalf("Expected 1 artifact at exact bound, got %d", len(exact))
	}
}

func TestArtifactFingerprint(t *testing.T) {
	artifactRepo, folderRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { folderRepo.Close(); artifactRepo.Close(); backend.Close() }()

	ctx := context.Background()
	fp := core.FingerprintBytes([]byte("unique pixels"))

	artifact := newArtifact("/captures/shot.png", time.Now().UTC())
	artifact.Fingerprint = fp
	if _, err := artifactRepo.AddArtifacts(ctx, artifact); err != nil {
		t.Fatalf("Failed to add artifact: %v", err)
	}

	found, err := artifactRepo.FindByFingerprint(ctx, fp)
	if err != nil {
		t.Fatalf("Failed to find by fingerprint: %v", err)
	}
	if found.Id != artifact.Id {
		t.Fatalf("Expected artifact %s, got %s", artifact.Id, found.Id)
	}

	_, err = artifactRepo.FindByFingerprint(ctx, core.FingerprintBytes([]byte("other")))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestArtifactFavoritesAndTags(t *testing.T) {
	artifactRepo, folderRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { folderRepo.Close(); artifactRepo.Close(); backend.Close() }()

	ctx := context.Background()

	a := newArtifact("/captures/a.png", time.Now().UTC())
	b := newArtifact("/captures/b.png", time.Now().UTC())
	if _, err := artifactRepo.AddArtifacts(ctx, a, b); err != nil {
		t.Fatalf("Failed to add artifacts: %v", err)
	}

	if err := artifactRepo.SetFavorite(ctx, a.Id, true); err != nil {
		t.Fatalf("Failed to set favorite: %v", err)
	}
	favorites, err := artifactRepo.GetFavoriteArtifacts(ctx)
	if err != nil {
		t.Fatalf("Failed to get favorites: %v", err)
	}
	if len(favorites) != 1 || favorites[0].Id != a.Id {
		t.Fatalf("Expected only artifact %s to be favorite", a.Id)
	}

	tagId := core.NewID()
	if err := artifactRepo.TagArtifact(ctx, b.Id, tagId); err != nil {
		t.Fatalf("Failed to tag artifact: %v", err)
	}
	// Tagging twice is idempotent
	if err := artifactRepo.TagArtifact(ctx, b.Id, tagId); err != nil {
		t.Fatalf("Failed to re-tag artifact: %v", err)
	}

	tagged, err := artifactRepo.GetArtifactsByTag(ctx, tagId)
	if err != nil {
		t.Fatalf("Failed to get artifacts by tag: %v", err)
	}
	if len(tagged) != 1 || tagged[0].Id != b.Id {
		t.Fatalf("Expected only artifact %s to carry the tag", b.Id)
	}
	if len(tagged[0].TagIds) != 1 {
		t.Fatalf("Expected 1 tag id, got %d", len(tagged[0].TagIds))
	}

	if err := artifactRepo.UntagArtifact(ctx, b.Id, tagId); err != nil {
		t.Fatalf("Failed to untag artifact: %v", err)
	}
	tagged, err = artifactRepo.GetArtifactsByTag(ctx, tagId)
	if err != nil {
		t.Fatalf("Failed to get artifacts by tag: %v", err)
	}
	if len(tagged) != 0 {
		t.Fatalf("Expected no tagged artifacts, got %d", len(tagged))
	}
}

func TestArtifactDelete(t *testing.T) {
	artifactRepo, folderRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { folderRepo.Close(); artifactRepo.Close(); backend.Close() }()

	ctx := context.Background()

	artifact := newArtifact("/captures/shot.png", time.Now().UTC())
	artifact.Fingerprint = core.FingerprintBytes([]byte("pixels"))
	if _, err := artifactRepo.AddArtifacts(ctx, artifact); err != nil {
		t.Fatalf("Failed to add artifact: %v", err)
	}
	if err := artifactRepo.AddAnalysis(ctx, &core.Analysis{ArtifactId: artifact.Id, Title: "t"}); err != nil {
		t.Fatalf("Failed to add analysis: %v", err)
	}

	if err := artifactRepo.DeleteArtifacts(ctx, artifact.Id); err != nil {
		t.Fatalf("Failed to delete artifact: %v", err)
	}

	if _, err := artifactRepo.GetArtifact(ctx, artifact.Id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}
	if _, err := artifactRepo.GetAnalysis(ctx, artifact.Id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected analysis gone after delete, got %v", err)
	}
	if _, err := artifactRepo.FindByFingerprint(ctx, artifact.Fingerprint); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected fingerprint gone after delete, got %v", err)
	}
}

func TestAnalysisRoundtrip(t *testing.T) {
	artifactRepo, folderRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { folderRepo.Close(); artifactRepo.Close(); backend.Close() }()

	ctx := context.Background()

	artifact := newArtifact("/captures/shot.png", time.Now().UTC())
	if _, err := artifactRepo.AddArtifacts(ctx, artifact); err != nil {
		t.Fatalf("Failed to add artifact: %v", err)
	}

	analysis := &core.Analysis{
		ArtifactId:  artifact.Id,
		OCRText:     "invoice total due",
		Title:       "Invoice",
		Keywords:    []string{"invoice", "total"},
		Confidence:  0.9,
		ContentType: "document",
	}
	if err := artifactRepo.AddAnalysis(ctx, analysis); err != nil {
		t.Fatalf("Failed to add analysis: %v", err)
	}

	got, err := artifactRepo.GetAnalysis(ctx, artifact.Id)
	if err != nil {
		t.Fatalf("Failed to get analysis: %v", err)
	}
	if got.Title != "Invoice" || got.ContentType != "document" {
		t.Fatalf("Unexpected analysis: %+v", got)
	}

	// Re-running analysis overwrites the previous result
	analysis.Title = "Invoice v2"
	if err := artifactRepo.AddAnalysis(ctx, analysis); err != nil {
		t.Fatalf("Failed to overwrite analysis: %v", err)
	}
	got, err = artifactRepo.GetAnalysis(ctx, artifact.Id)
	if err != nil {
		t.Fatalf("Failed to get analysis: %v", err)
	}
	if got.Title != "Invoice v2" {
		t.Fatalf("Expected overwritten title, got '%s'", got.Title)
	}
}

func TestSearchArtifacts(t *testing.T) {
	artifactRepo, folderRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { folderRepo.Close(); artifactRepo.Close(); backend.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()

	invoice := newArtifact("/captures/invoice-march.png", now.Add(-time.Hour))
	meeting := newArtifact("/captures/meeting.png", now)
	if _, err := artifactRepo.AddArtifacts(ctx, invoice, meeting); err != nil {
		t.Fatalf("Failed to add artifacts: %v", err)
	}

	err = artifactRepo.UpdateSearchIndex(ctx, invoice.Id, "invoice-march.png Invoice total due March", []string{"invoice", "total"})
	if err != nil {
		t.Fatalf("Failed to update search index: %v", err)
	}
	err = artifactRepo.UpdateSearchIndex(ctx, meeting.Id, "meeting.png quarterly planning notes", []string{"meeting", "planning"})
	if err != nil {
		t.Fatalf("Failed to update search index: %v", err)
	}

	// Filename and content both match: full score
	results, err := artifactRepo.SearchArtifacts(ctx, "Invoice", 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].ArtifactId != invoice.Id {
		t.Fatalf("Expected artifact %s, got %s", invoice.Id, results[0].ArtifactId)
	}
	if results[0].Score != 1.0 {
		t.Fatalf("Expected score 1.0, got %f", results[0].Score)
	}
	if results[0].Source != core.SourceLexical {
		t.Fatalf("Expected lexical source, got %v", results[0].Source)
	}

	// Content-only match scores lower
	results, err = artifactRepo.SearchArtifacts(ctx, "planning", 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 1 || results[0].Score != 0.5 {
		t.Fatalf("Expected a single 0.5 hit, got %+v", results)
	}

	// Invalid queries are rejected
	if _, err := artifactRepo.SearchArtifacts(ctx, "  ", 10); !errors.Is(err, storage.ErrInvalidQuery) {
		t.Fatalf("Expected ErrInvalidQuery for blank query, got %v", err)
	}
	if _, err := artifactRepo.SearchArtifacts(ctx, "invoice", 0); !errors.Is(err, storage.ErrInvalidQuery) {
		t.Fatalf("Expected ErrInvalidQuery for zero limit, got %v", err)
	}
}

func TestGetArtifactsByKeywordSubstring(t *testing.T) {
	artifactRepo, folderRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { folderRepo.Close(); artifactRepo.Close(); backend.Close() }()

	ctx := context.Background()

	code := newArtifact("/captures/editor.png", time.Now().UTC())
	photo := newArtifact("/captures/holiday.png", time.Now().UTC())
	if _, err := artifactRepo.AddArtifacts(ctx, code, photo); err != nil {
		t.Fatalf("Failed to add artifacts: %v", err)
	}
	if err := artifactRepo.UpdateSearchIndex(ctx, code.Id, "editor.png func main", []string{"code", "golang"}); err != nil {
		t.Fatalf("Failed to update search index: %v", err)
	}
	if err := artifactRepo.UpdateSearchIndex(ctx, photo.Id, "holiday.png beach", []string{"photo", "beach"}); err != nil {
		t.Fatalf("Failed to update search index: %v", err)
	}

	results, err := artifactRepo.GetArtifactsByKeywordSubstring(ctx, "code")
	if err != nil {
		t.Fatalf("Failed to match keyword substring: %v", err)
	}
	if len(results) != 1 || results[0].Id != code.Id {
		t.Fatalf("Expected only the code artifact, got %d results", len(results))
	}

	// Matching is case-sensitive
	results, err = artifactRepo.GetArtifactsByKeywordSubstring(ctx, "CODE")
	if err != nil {
		t.Fatalf("Failed to match keyword substring: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("Expected case-sensitive miss, got %d results", len(results))
	}
}
