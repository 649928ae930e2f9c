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

package badger

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/lightfold/captura/core"
	"github.com/lightfold/captura/storage"
)

// ArtifactRepository implements storage.ArtifactRepository for BadgerDB.
type ArtifactRepository struct {
	backend *Backend
}

var _ storage.ArtifactRepository = (*ArtifactRepository)(nil)

// NewArtifactRepository creates a new ArtifactRepository.
func NewArtifactRepository(backend *Backend) (*ArtifactRepository, error) {
	return &ArtifactRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *ArtifactRepository) Close() error {
	return nil
}

// AddArtifacts adds one or more artifacts to storage.
func (r *ArtifactRepository) AddArtifacts(ctx context.Context, artifacts ...*core.Artifact) ([]*core.Artifact, error) {
	for _, artifact := range artifacts {
		if err := core.ValidateArtifact(artifact); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, artifact := range artifacts {
			artifact.InsertedAt = time.Now().UTC()
			artifact.UpdatedAt = artifact.InsertedAt

			if err := r.writeArtifact(tx, artifact); err != nil {
				return err
			}

			dateKey := makeArtifactDateKey(artifact.CreatedAt, artifact.Id)
			if err := tx.Set(dateKey, storage.MarshalID(artifact.Id)); err != nil {
				return err
			}

			if artifact.Fingerprint != "" {
				fpKey := makeFingerprintKey(artifact.Fingerprint)
				if err := tx.Set(fpKey, storage.MarshalID(artifact.Id)); err != nil {
					return err
				}
			}

			for _, tagId := range artifact.TagIds {
				tagKey := makeArtifactTagKey(tagId, artifact.Id)
				if err := tx.Set(tagKey, storage.MarshalID(artifact.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return artifacts, err
}

// UpdateArtifacts updates existing artifacts.
func (r *ArtifactRepository) UpdateArtifacts(ctx context.Context, artifacts ...*core.Artifact) ([]*core.Artifact, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, artifact := range artifacts {
			key := makeArtifactKey(artifact.Id)

			old, err := r.readArtifact(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			artifact.UpdatedAt = time.Now().UTC()

			if err := r.writeArtifact(tx, artifact); err != nil {
				return err
			}

			if !old.CreatedAt.Equal(artifact.CreatedAt) {
				if err := tx.Delete(makeArtifactDateKey(old.CreatedAt, old.Id)); err != nil {
					return err
				}
				newDateKey := makeArtifactDateKey(artifact.CreatedAt, artifact.Id)
				if err := tx.Set(newDateKey, storage.MarshalID(artifact.Id)); err != nil {
					return err
				}
			}

			if old.Fingerprint != artifact.Fingerprint {
				if old.Fingerprint != "" {
					if err := tx.Delete(makeFingerprintKey(old.Fingerprint)); err != nil {
						return err
					}
				}
				if artifact.Fingerprint != "" {
					fpKey := makeFingerprintKey(artifact.Fingerprint)
					if err := tx.Set(fpKey, storage.MarshalID(artifact.Id)); err != nil {
						return err
					}
				}
			}

			if !idsEqual(old.TagIds, artifact.TagIds) {
				for _, tagId := range old.TagIds {
					if err := tx.Delete(makeArtifactTagKey(tagId, old.Id)); err != nil {
						return err
					}
				}
				for _, tagId := range artifact.TagIds {
					tagKey := makeArtifactTagKey(tagId, artifact.Id)
					if err := tx.Set(tagKey, storage.MarshalID(artifact.Id)); err != nil {
						return err
					}
				}
			}
		}
		return tx.Commit()
	}, true)

	return artifacts, err
}

// DeleteArtifacts removes artifacts and all their associated entries.
func (r *ArtifactRepository) DeleteArtifacts(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeArtifactKey(id)

			artifact, err := r.readArtifact(tx, key)
			if err != nil {
				return err
			}
			if artifact == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeArtifactDateKey(artifact.CreatedAt, artifact.Id)); err != nil {
				return err
			}
			if artifact.Fingerprint != "" {
				if err := tx.Delete(makeFingerprintKey(artifact.Fingerprint)); err != nil {
					return err
				}
			}
			for _, tagId := range artifact.TagIds {
				if err := tx.Delete(makeArtifactTagKey(tagId, artifact.Id)); err != nil {
					return err
				}
			}
			if err := tx.Delete(makeAnalysisKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(makeSearchEntryKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetArtifact retrieves a single artifact by ID.
func (r *ArtifactRepository) GetArtifact(ctx context.Context, id core.ID) (*core.Artifact, error) {
	var result *core.Artifact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readArtifact(tx, makeArtifactKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetArtifacts retrieves multiple artifacts by their IDs.
func (r *ArtifactRepository) GetArtifacts(ctx context.Context, ids ...core.ID) ([]*core.Artifact, error) {
	var result []*core.Artifact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			artifact, err := r.readArtifact(tx, makeArtifactKey(id))
			if err != nil {
				return err
			}
			if artifact != nil {
				result = append(result, artifact)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetAllArtifacts retrieves every stored artifact.
func (r *ArtifactRepository) GetAllArtifacts(ctx context.Context) ([]*core.Artifact, error) {
	var results []*core.Artifact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(artifactPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var artifact *core.Artifact
			err := iter.Item().Value(func(val []byte) error {
				var err error
				artifact, err = storage.UnmarshalArtifact(val)
				return err
			})
			if err != nil {
				return err
			}
			if artifact != nil {
				results = append(results, artifact)
			}
		}
		return nil
	}, false)
	return results, err
}

// GetArtifactsByDateRange retrieves artifacts with CreatedAt in [start, end].
func (r *ArtifactRepository) GetArtifactsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Artifact, error) {
	var results []*core.Artifact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialArtifactDateKey(start)
		// The range is inclusive of end; date keys carry the artifact ID
		// after the timestamp, so compare against the next microsecond.
		boundKey := makePartialArtifactDateKey(end.Add(time.Microsecond))
		prefix := []byte(artifactDatePrefix + ":")

		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}
			if slices.Compare(key, boundKey) >= 0 {
				break
			}

			var artifactId core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				artifactId, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			artifact, err := r.readArtifact(tx, makeArtifactKey(artifactId))
			if err != nil {
				return err
			}
			if artifact != nil {
				results = append(results, artifact)
			}
		}
		return nil
	}, false)
	return results, err
}

// GetFavoriteArtifacts retrieves artifacts flagged favorite.
func (r *ArtifactRepository) GetFavoriteArtifacts(ctx context.Context) ([]*core.Artifact, error) {
	all, err := r.GetAllArtifacts(ctx)
	if err != nil {
		return nil, err
	}
	var results []*core.Artifact
	for _, artifact := range all {
		if artifact.Favorite {
			results = append(results, artifact)
		}
	}
	return results, nil
}

// GetArtifactsByTag retrieves artifacts associated with the tag.
func (r *ArtifactRepository) GetArtifactsByTag(ctx context.Context, tagId core.ID) ([]*core.Artifact, error) {
	var results []*core.Artifact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialArtifactTagKey(tagId)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
				break
			}

			var artifactId core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				artifactId, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			artifact, err := r.readArtifact(tx, makeArtifactKey(artifactId))
			if err != nil {
				return err
			}
			if artifact != nil {
				results = append(results, artifact)
			}
		}
		return nil
	}, false)
	return results, err
}

// GetArtifactsByKeywordSubstring retrieves artifacts whose serialized
// keyword blob contains the substring. Matching is case-sensitive.
func (r *ArtifactRepository) GetArtifactsByKeywordSubstring(ctx context.Context, substring string) ([]*core.Artifact, error) {
	var results []*core.Artifact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(searchEntryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *storage.SearchEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalSearchEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry == nil || !strings.Contains(entry.Keywords, substring) {
				continue
			}

			artifact, err := r.readArtifact(tx, makeArtifactKey(entry.ArtifactId))
			if err != nil {
				return err
			}
			if artifact != nil {
				results = append(results, artifact)
			}
		}
		return nil
	}, false)
	return results, err
}

// FindByFingerprint looks up an artifact by content fingerprint.
func (r *ArtifactRepository) FindByFingerprint(ctx context.Context, fp core.Fingerprint) (*core.Artifact, error) {
	var result *core.Artifact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeFingerprintKey(fp))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var artifactId core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			artifactId, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = r.readArtifact(tx, makeArtifactKey(artifactId))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// SetFavorite flags or unflags an artifact as favorite.
func (r *ArtifactRepository) SetFavorite(ctx context.Context, id core.ID, favorite bool) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		artifact, err := r.readArtifact(tx, makeArtifactKey(id))
		if err != nil {
			return err
		}
		if artifact == nil {
			return storage.ErrNotFound
		}
		if artifact.Favorite == favorite {
			return nil
		}
		artifact.Favorite = favorite
		artifact.UpdatedAt = time.Now().UTC()
		if err := r.writeArtifact(tx, artifact); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// TagArtifact associates a tag with an artifact. Idempotent.
func (r *ArtifactRepository) TagArtifact(ctx context.Context, id, tagId core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		artifact, err := r.readArtifact(tx, makeArtifactKey(id))
		if err != nil {
			return err
		}
		if artifact == nil {
			return storage.ErrNotFound
		}
		if slices.Contains(artifact.TagIds, tagId) {
			return nil
		}
		artifact.TagIds = append(artifact.TagIds, tagId)
		artifact.UpdatedAt = time.Now().UTC()
		if err := r.writeArtifact(tx, artifact); err != nil {
			return err
		}
		tagKey := makeArtifactTagKey(tagId, id)
		if err := tx.Set(tagKey, storage.MarshalID(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// UntagArtifact removes a tag association. Idempotent.
func (r *ArtifactRepository) UntagArtifact(ctx context.Context, id, tagId core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		artifact, err := r.readArtifact(tx, makeArtifactKey(id))
		if err != nil {
			return err
		}
		if artifact == nil {
			return storage.ErrNotFound
		}
		idx := slices.Index(artifact.TagIds, tagId)
		if idx < 0 {
			return nil
		}
		artifact.TagIds = slices.Delete(artifact.TagIds, idx, idx+1)
		artifact.UpdatedAt = time.Now().UTC()
		if err := r.writeArtifact(tx, artifact); err != nil {
			return err
		}
		if err := tx.Delete(makeArtifactTagKey(tagId, id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// AddAnalysis persists the analysis result for an artifact, overwriting
// any previous run's result.
func (r *ArtifactRepository) AddAnalysis(ctx context.Context, analysis *core.Analysis) error {
	if analysis == nil || analysis.ArtifactId == "" {
		return core.ErrEmptyID
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeAnalysisKey(analysis.ArtifactId)
		if err := tx.Set(key, storage.MarshalAnalysis(analysis)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetAnalysis retrieves the analysis result for an artifact.
func (r *ArtifactRepository) GetAnalysis(ctx context.Context, id core.ID) (*core.Analysis, error) {
	var result *core.Analysis
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeAnalysisKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalAnalysis(val)
			return err
		})
	}, false)
	return result, err
}

// UpdateSearchIndex stores the lexical search entry for an artifact.
// Content is lowercased on write; keywords are joined into a blob.
func (r *ArtifactRepository) UpdateSearchIndex(ctx context.Context, id core.ID, content string, keywords []string) error {
	if id == "" {
		return core.ErrEmptyID
	}
	entry := &storage.SearchEntry{
		ArtifactId: id,
		Content:    strings.ToLower(content),
		Keywords:   strings.Join(keywords, ","),
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSearchEntryKey(id)
		if err := tx.Set(key, storage.MarshalSearchEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// SearchArtifacts performs a case-insensitive substring search over the
// artifact filename and the indexed content blob. The score is the
// fraction of field groups matched; ties order newest-first, then by
// ascending ID.
func (r *ArtifactRepository) SearchArtifacts(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" || limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	type scored struct {
		result    *core.SearchResult
		createdAt time.Time
	}
	var hits []scored

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(artifactPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var artifact *core.Artifact
			err := iter.Item().Value(func(val []byte) error {
				var err error
				artifact, err = storage.UnmarshalArtifact(val)
				return err
			})
			if err != nil {
				return err
			}
			if artifact == nil {
				continue
			}

			matched := 0
			if strings.Contains(strings.ToLower(filepath.Base(artifact.Path)), query) {
				matched++
			}
			entry, err := r.readSearchEntry(tx, artifact.Id)
			if err != nil {
				return err
			}
			if entry != nil && strings.Contains(entry.Content, query) {
				matched++
			}
			if matched == 0 {
				continue
			}

			hits = append(hits, scored{
				result: &core.SearchResult{
					ArtifactId: artifact.Id,
					Score:      float32(matched) / 2,
					Source:     core.SourceLexical,
				},
				createdAt: artifact.CreatedAt,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(hits, func(a, b scored) int {
		if a.result.Score != b.result.Score {
			if a.result.Score > b.result.Score {
				return -1
			}
			return 1
		}
		if !a.createdAt.Equal(b.createdAt) {
			if a.createdAt.After(b.createdAt) {
				return -1
			}
			return 1
		}
		return strings.Compare(string(a.result.ArtifactId), string(b.result.ArtifactId))
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	results := make([]*core.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = h.result
	}
	return results, nil
}

// Helper methods

func (r *ArtifactRepository) writeArtifact(tx *badger.Txn, artifact *core.Artifact) error {
	return tx.Set(makeArtifactKey(artifact.Id), storage.MarshalArtifact(artifact))
}

// readArtifact reads an artifact from the transaction.
func (r *ArtifactRepository) readArtifact(tx *badger.Txn, key []byte) (*core.Artifact, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var artifact *core.Artifact
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		artifact, unmarshalErr = storage.UnmarshalArtifact(val)
		return unmarshalErr
	})
	return artifact, err
}

// readSearchEntry reads a lexical search entry, nil when absent.
func (r *ArtifactRepository) readSearchEntry(tx *badger.Txn, id core.ID) (*storage.SearchEntry, error) {
	item, err := tx.Get(makeSearchEntryKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *storage.SearchEntry
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		entry, unmarshalErr = storage.UnmarshalSearchEntry(val)
		return unmarshalErr
	})
	return entry, err
}

// idsEqual compares two ID slices for equality.
func idsEqual(a, b []core.ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
