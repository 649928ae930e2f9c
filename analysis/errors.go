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

package analysis

import "errors"

var (
	// ErrAIProviderRequired indicates the pipeline was built without an
	// AI provider.
	ErrAIProviderRequired = errors.New("AI provider is required")

	// ErrArtifactRepositoryRequired indicates the batch processor was
	// built without an artifact repository.
	ErrArtifactRepositoryRequired = errors.New("artifact repository is required")

	// ErrPipelineRequired indicates the batch processor was built
	// without a pipeline.
	ErrPipelineRequired = errors.New("pipeline is required")

	// ErrImageUnreadable indicates the screenshot file could not be
	// read. This is the only fatal condition in the pipeline.
	ErrImageUnreadable = errors.New("cannot read image")

	// ErrInvalidMaxAttempts indicates a non-positive retry attempt count.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
