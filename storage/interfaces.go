package storage

import (
	"context"
	"time"

	"github.com/lightfold/captura/core"
)

// SearchEntry is the persisted lexical search index entry for one artifact.
// Content is a lowercased blob concatenating the searchable text fields;
// Keywords is the serialized keyword list (comma-joined), matched as an
// opaque blob by the content-type smart folder rule.
type SearchEntry struct {
	ArtifactId core.ID
	Content    string
	Keywords   string
}

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close closes the repository and releases resources.
	Close() error
}

// ArtifactRepository provides operations for managing artifacts, their
// analysis metadata, and the lexical search index.
type ArtifactRepository interface {
	Repository

	// AddArtifacts adds one or more artifacts to storage.
	// Sets InsertedAt/UpdatedAt timestamps. Artifact IDs must already be
	// assigned by the caller; identity is never generated by storage.
	AddArtifacts(ctx context.Context, artifacts ...*core.Artifact) ([]*core.Artifact, error)

	// UpdateArtifacts updates existing artifacts.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any artifact doesn't exist.
	UpdateArtifacts(ctx context.Context, artifacts ...*core.Artifact) ([]*core.Artifact, error)

	// DeleteArtifacts removes artifacts and their associated metadata,
	// search entries and indices. Returns ErrNotFound if any is missing.
	DeleteArtifacts(ctx context.Context, ids ...core.ID) error

	// GetArtifact retrieves a single artifact by ID.
	// Returns ErrNotFound if the artifact doesn't exist.
	GetArtifact(ctx context.Context, id core.ID) (*core.Artifact, error)

	// GetArtifacts retrieves multiple artifacts by their IDs.
	// Returns only the artifacts that exist (no error for missing ones).
	GetArtifacts(ctx context.Context, ids ...core.ID) ([]*core.Artifact, error)

	// GetAllArtifacts retrieves every stored artifact.
	GetAllArtifacts(ctx context.Context) ([]*core.Artifact, error)

	// GetArtifactsByDateRange retrieves artifacts with CreatedAt in
	// [start, end] inclusive.
	GetArtifactsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Artifact, error)

	// GetFavoriteArtifacts retrieves artifacts flagged favorite.
	GetFavoriteArtifacts(ctx context.Context) ([]*core.Artifact, error)

	// GetArtifactsByTag retrieves artifacts associated with the tag.
	GetArtifactsByTag(ctx context.Context, tagId core.ID) ([]*core.Artifact, error)

	// GetArtifactsByKeywordSubstring retrieves artifacts whose serialized
	// keyword blob contains the substring (case-sensitive).
	GetArtifactsByKeywordSubstring(ctx context.Context, substring string) ([]*core.Artifact, error)

	// FindByFingerprint looks up an artifact by content fingerprint.
	// Returns ErrNotFound when no artifact has that fingerprint.
	FindByFingerprint(ctx context.Context, fp core.Fingerprint) (*core.Artifact, error)

	// SetFavorite flags or unflags an artifact as favorite.
	SetFavorite(ctx context.Context, id core.ID, favorite bool) error

	// TagArtifact associates a tag with an artifact. Idempotent.
	TagArtifact(ctx context.Context, id, tagId core.ID) error

	// UntagArtifact removes a tag association. Idempotent.
	UntagArtifact(ctx context.Context, id, tagId core.ID) error

	// AddAnalysis persists the analysis result for an artifact,
	// overwriting any previous run's result.
	AddAnalysis(ctx context.Context, analysis *core.Analysis) error

	// GetAnalysis retrieves the analysis result for an artifact.
	// Returns ErrNotFound if the artifact has not been analyzed.
	GetAnalysis(ctx context.Context, id core.ID) (*core.Analysis, error)

	// UpdateSearchIndex stores the lexical search entry for an artifact.
	UpdateSearchIndex(ctx context.Context, id core.ID, content string, keywords []string) error

	// SearchArtifacts performs a case-insensitive substring search over
	// filenames and indexed content. Results are ordered by descending
	// relevance, ties newest-first, capped at limit.
	SearchArtifacts(ctx context.Context, query string, limit int) ([]*core.SearchResult, error)
}

// SmartFolderRepository provides operations for managing smart folders.
// Only the folder definitions are stored; membership is always computed.
type SmartFolderRepository interface {
	Repository

	// AddSmartFolders adds one or more folders to storage.
	// Folders are validated (including their rules) before writing.
	AddSmartFolders(ctx context.Context, folders ...*core.SmartFolder) ([]*core.SmartFolder, error)

	// GetSmartFolder retrieves a folder by ID.
	// Returns ErrNotFound if the folder doesn't exist.
	GetSmartFolder(ctx context.Context, id core.ID) (*core.SmartFolder, error)

	// GetSmartFolders retrieves all folders.
	GetSmartFolders(ctx context.Context) ([]*core.SmartFolder, error)

	// DeleteSmartFolders removes folders by their IDs.
	// Returns ErrNotFound if any folder doesn't exist.
	DeleteSmartFolders(ctx context.Context, ids ...core.ID) error
}
