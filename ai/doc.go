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


// Package ai provides abstractions for the AI services used in captura.
//
// This package defines interfaces for text embeddings and multimodal
// image analysis. It follows the dependency inversion principle: the
// analysis pipeline, embedding store and search layers depend on these
// abstractions rather than on concrete API clients.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - VisionAnalyzer: Extracts text and semantic content from images
//   - AIProvider: Aggregates AI services for convenient initialization
//
// Every VisionAnalyzer operation hits a remote capability boundary that
// may be slow, rate-limited, or return malformed output. Callers must
// treat failures and empty results as routine, not exceptional.
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.)
// return INTERFACE types to enforce abstraction and prevent accidental
// coupling to concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockVisionAnalyzer)
// return CONCRETE types to enable test assertions and behavior injection
// via the mock's public methods (CallCount, function fields, Reset).
package ai
