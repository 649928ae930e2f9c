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

import "errors"

var (
	// ErrEmbedderRequired indicates the store was built without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrEmptyIndexPath indicates no index file path was supplied.
	ErrEmptyIndexPath = errors.New("index path must not be empty")

	// ErrDimensionMismatch indicates a vector whose length differs from
	// the vectors already in the store. Mixed dimensions are never
	// tolerated; the index must be rebuilt with one provider.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyEmbedding indicates the embedding API returned an empty
	// vector. The artifact is not indexed.
	ErrEmptyEmbedding = errors.New("embedding vector is empty")

	// ErrNoContent indicates no embeddable text could be resolved for an
	// artifact, neither from the caller, the vision API, nor metadata.
	ErrNoContent = errors.New("no embeddable content")

	// ErrCorruptIndex indicates the persisted index file could not be
	// parsed.
	ErrCorruptIndex = errors.New("embedding index is corrupt")
)
