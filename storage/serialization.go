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

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/lightfold/captura/core"
)

var stringSliceMUS = ord.NewSliceSer[string](ord.String)

// Timestamps travel as microseconds since the epoch. Zero times are
// stored as 0 so they survive a roundtrip as zero times.
func timeToMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func microToTime(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, ord.String.Size(string(id)))
	ord.String.Marshal(string(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	s, _, err := ord.String.Unmarshal(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(s), nil
}

// MarshalArtifact serializes an Artifact to bytes.
func MarshalArtifact(artifact *core.Artifact) []byte {
	tags := idsToStrings(artifact.TagIds)
	size := ord.String.Size(string(artifact.Id)) +
		ord.String.Size(artifact.Path) +
		ord.String.Size(string(artifact.Fingerprint)) +
		varint.Int64.Size(timeToMicro(artifact.CreatedAt)) +
		varint.Int64.Size(timeToMicro(artifact.InsertedAt)) +
		varint.Int64.Size(timeToMicro(artifact.UpdatedAt)) +
		ord.Bool.Size(artifact.Favorite) +
		stringSliceMUS.Size(tags)
	buf := make([]byte, size)
	n := ord.String.Marshal(string(artifact.Id), buf)
	n += ord.String.Marshal(artifact.Path, buf[n:])
	n += ord.String.Marshal(string(artifact.Fingerprint), buf[n:])
	n += varint.Int64.Marshal(timeToMicro(artifact.CreatedAt), buf[n:])
	n += varint.Int64.Marshal(timeToMicro(artifact.InsertedAt), buf[n:])
	n += varint.Int64.Marshal(timeToMicro(artifact.UpdatedAt), buf[n:])
	n += ord.Bool.Marshal(artifact.Favorite, buf[n:])
	stringSliceMUS.Marshal(tags, buf[n:])
	return buf
}

// UnmarshalArtifact deserializes an Artifact from bytes.
func UnmarshalArtifact(data []byte) (*core.Artifact, error) {
	var (
		artifact core.Artifact
		n, off   int
		err      error
	)
	fail := func(err error) (*core.Artifact, error) {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}

	var s string
	if s, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	artifact.Id = core.ID(s)
	off += n
	if artifact.Path, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	off += n
	if s, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	artifact.Fingerprint = core.Fingerprint(s)
	off += n

	var micro int64
	if micro, n, err = varint.Int64.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	artifact.CreatedAt = microToTime(micro)
	off += n
	if micro, n, err = varint.Int64.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	artifact.InsertedAt = microToTime(micro)
	off += n
	if micro, n, err = varint.Int64.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	artifact.UpdatedAt = microToTime(micro)
	off += n

	if artifact.Favorite, n, err = ord.Bool.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	off += n
	tags, _, err := stringSliceMUS.Unmarshal(data[off:])
	if err != nil {
		return fail(err)
	}
	artifact.TagIds = stringsToIDs(tags)
	return &artifact, nil
}

// MarshalAnalysis serializes an Analysis to bytes.
func MarshalAnalysis(analysis *core.Analysis) []byte {
	size := ord.String.Size(string(analysis.ArtifactId)) +
		ord.String.Size(analysis.OCRText) +
		ord.String.Size(analysis.Title) +
		ord.String.Size(analysis.Description) +
		stringSliceMUS.Size(analysis.Keywords) +
		raw.Float64.Size(analysis.Confidence) +
		ord.String.Size(analysis.ContentType) +
		ord.String.Size(analysis.AppDetected) +
		ord.String.Size(analysis.URLDetected) +
		ord.String.Size(analysis.ComprehensiveDescription)
	buf := make([]byte, size)
	n := ord.String.Marshal(string(analysis.ArtifactId), buf)
	n += ord.String.Marshal(analysis.OCRText, buf[n:])
	n += ord.String.Marshal(analysis.Title, buf[n:])
	n += ord.String.Marshal(analysis.Description, buf[n:])
	n += stringSliceMUS.Marshal(analysis.Keywords, buf[n:])
	n += raw.Float64.Marshal(analysis.Confidence, buf[n:])
	n += ord.String.Marshal(analysis.ContentType, buf[n:])
	n += ord.String.Marshal(analysis.AppDetected, buf[n:])
	n += ord.String.Marshal(analysis.URLDetected, buf[n:])
	ord.String.Marshal(analysis.ComprehensiveDescription, buf[n:])
	return buf
}

// UnmarshalAnalysis deserializes an Analysis from bytes.
func UnmarshalAnalysis(data []byte) (*core.Analysis, error) {
	var (
		analysis core.Analysis
		n, off   int
		err      error
	)
	fail := func(err error) (*core.Analysis, error) {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}

	var s string
	if s, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	analysis.ArtifactId = core.ID(s)
	off += n
	if analysis.OCRText, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	off += n
	if analysis.Title, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	off += n
	if analysis.Description, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	off += n
	if analysis.Keywords, n, err = stringSliceMUS.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	off += n
	if analysis.Confidence, n, err = raw.Float64.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	off += n
	if analysis.ContentType, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	off += n
	if analysis.AppDetected, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	off += n
	if analysis.URLDetected, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	off += n
	if analysis.ComprehensiveDescription, _, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	return &analysis, nil
}

// MarshalSearchEntry serializes a SearchEntry to bytes.
func MarshalSearchEntry(entry *SearchEntry) []byte {
	size := ord.String.Size(string(entry.ArtifactId)) +
		ord.String.Size(entry.Content) +
		ord.String.Size(entry.Keywords)
	buf := make([]byte, size)
	n := ord.String.Marshal(string(entry.ArtifactId), buf)
	n += ord.String.Marshal(entry.Content, buf[n:])
	ord.String.Marshal(entry.Keywords, buf[n:])
	return buf
}

// UnmarshalSearchEntry deserializes a SearchEntry from bytes.
func UnmarshalSearchEntry(data []byte) (*SearchEntry, error) {
	var (
		entry  SearchEntry
		n, off int
		err    error
	)
	fail := func(err error) (*SearchEntry, error) {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}

	var s string
	if s, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	entry.ArtifactId = core.ID(s)
	off += n
	if entry.Content, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	off += n
	if entry.Keywords, _, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	return &entry, nil
}

// MarshalSmartFolder serializes a SmartFolder to bytes. The rule is
// stored field-flat rather than as nested JSON.
func MarshalSmartFolder(folder *core.SmartFolder) []byte {
	rule := folder.Rule
	size := ord.String.Size(string(folder.Id)) +
		ord.String.Size(folder.Name) +
		ord.String.Size(string(rule.Kind)) +
		varint.Int64.Size(int64(rule.Days)) +
		ord.String.Size(string(rule.TagId)) +
		varint.Int64.Size(timeToMicro(rule.Start)) +
		varint.Int64.Size(timeToMicro(rule.End)) +
		ord.String.Size(rule.Substring) +
		varint.Int64.Size(timeToMicro(folder.InsertedAt)) +
		varint.Int64.Size(timeToMicro(folder.UpdatedAt))
	buf := make([]byte, size)
	n := ord.String.Marshal(string(folder.Id), buf)
	n += ord.String.Marshal(folder.Name, buf[n:])
	n += ord.String.Marshal(string(rule.Kind), buf[n:])
	n += varint.Int64.Marshal(int64(rule.Days), buf[n:])
	n += ord.String.Marshal(string(rule.TagId), buf[n:])
	n += varint.Int64.Marshal(timeToMicro(rule.Start), buf[n:])
	n += varint.Int64.Marshal(timeToMicro(rule.End), buf[n:])
	n += ord.String.Marshal(rule.Substring, buf[n:])
	n += varint.Int64.Marshal(timeToMicro(folder.InsertedAt), buf[n:])
	varint.Int64.Marshal(timeToMicro(folder.UpdatedAt), buf[n:])
	return buf
}

// UnmarshalSmartFolder deserializes a SmartFolder from bytes. Records
// carrying a rule kind this build does not know are rejected.
func UnmarshalSmartFolder(data []byte) (*core.SmartFolder, error) {
	var (
		folder core.SmartFolder
		n, off int
		err    error
	)
	fail := func(err error) (*core.SmartFolder, error) {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}

	var s string
	if s, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	folder.Id = core.ID(s)
	off += n
	if folder.Name, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	off += n
	if s, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	folder.Rule.Kind = core.RuleKind(s)
	off += n

	var v int64
	if v, n, err = varint.Int64.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	folder.Rule.Days = int(v)
	off += n
	if s, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	folder.Rule.TagId = core.ID(s)
	off += n
	if v, n, err = varint.Int64.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	folder.Rule.Start = microToTime(v)
	off += n
	if v, n, err = varint.Int64.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	folder.Rule.End = microToTime(v)
	off += n
	if folder.Rule.Substring, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	off += n
	if v, n, err = varint.Int64.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	folder.InsertedAt = microToTime(v)
	off += n
	if v, _, err = varint.Int64.Unmarshal(data[off:]); err != nil {
		return fail(err)
	}
	folder.UpdatedAt = microToTime(v)

	if err := core.ValidateRule(folder.Rule); err != nil {
		return fail(err)
	}
	return &folder, nil
}

func idsToStrings(ids []core.ID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func stringsToIDs(values []string) []core.ID {
	if len(values) == 0 {
		return nil
	}
	out := make([]core.ID, len(values))
	for i, v := range values {
		out[i] = core.ID(v)
	}
	return out
}
