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

package storage

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrSerializationFailed indicates a record could not be encoded or
	// decoded.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrInvalidQuery indicates the search parameters are unusable,
	// e.g. an empty query or a non-positive limit.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrStorageClosed indicates an operation on a closed repository.
	ErrStorageClosed = errors.New("storage is closed")
)
