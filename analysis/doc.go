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

// Package analysis turns captured screenshots into searchable
// metadata.
//
// The Pipeline runs a fixed stage order per screenshot: OCR, title,
// description, keywords, classification, comprehensive description.
// Remote vision stages degrade to local heuristics instead of failing;
// only an unreadable image aborts a run. Concurrent requests for the
// same artifact id share one run.
//
// The BatchProcessor fans the pipeline out over a worker pool in small
// rate-limited groups, persists each result to the metadata store, and
// indexes it into the embedding store with retries.
package analysis
