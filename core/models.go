package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ID is a unique identifier for domain entities.
// It is assigned once at creation and never recomputed; renaming an
// artifact changes its Path but never its ID.
type ID string

// NewID generates a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// Fingerprint is a content-derived digest used to detect byte-identical
// artifacts. Two artifacts with the same fingerprint hold the same pixels.
type Fingerprint string

// FingerprintBytes computes a BLAKE2b-256 digest of raw image bytes.
// Identical content always produces an identical fingerprint.
func FingerprintBytes(data []byte) Fingerprint {
	h, _ := blake2b.New(32, nil)
	h.Write(data)
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// Artifact represents one captured image and its stable identity.
// Path may change over the artifact's lifetime (rename); Id must not.
type Artifact struct {
	Id          ID
	Path        string
	Fingerprint Fingerprint
	CreatedAt   time.Time // When the image was captured or imported
	InsertedAt  time.Time // When the record was inserted into the database
	UpdatedAt   time.Time // When the record was last updated
	Favorite    bool
	TagIds      []ID
}

// Analysis holds the structured metadata produced by one pipeline run
// for an artifact. Every field except ArtifactId is optional: a partial
// result is the normal outcome when upstream AI calls fail.
type Analysis struct {
	ArtifactId               ID
	OCRText                  string
	Title                    string
	Description              string
	Keywords                 []string
	Confidence               float64
	ContentType              string
	AppDetected              string
	URLDetected              string
	ComprehensiveDescription string
}

// Source identifies which search path produced a result.
type Source int

const (
	// SourceLexical marks a result found by substring matching.
	SourceLexical Source = iota + 1
	// SourceSemantic marks a result found by vector similarity.
	SourceSemantic
)

// SearchResult is one entry of a ranked query result.
// It is ephemeral: produced per query, never persisted.
type SearchResult struct {
	ArtifactId ID
	Score      float32
	Source     Source
}
