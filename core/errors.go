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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidArtifact indicates an Artifact failed validation.
	ErrInvalidArtifact = errors.New("invalid artifact")

	// ErrInvalidSmartFolder indicates a SmartFolder failed validation.
	ErrInvalidSmartFolder = errors.New("invalid smart folder")

	// ErrInvalidRule indicates a filter rule failed validation or decoding.
	ErrInvalidRule = errors.New("invalid filter rule")

	// ErrUnknownRuleKind indicates a rule kind outside the closed variant set.
	ErrUnknownRuleKind = errors.New("unknown rule kind")

	// ErrEmptyID indicates a required identifier is missing.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrEmptyPath indicates the Path field is empty.
	ErrEmptyPath = errors.New("path cannot be empty")

	// ErrEmptyFolderName indicates the folder Name field is empty.
	ErrEmptyFolderName = errors.New("folder name cannot be empty")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")
)
