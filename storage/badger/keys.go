package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/lightfold/captura/core"
)

// Key prefixes for different data types
const (
	artifactPrefix     = "artrec"
	artifactDatePrefix = "artrecd"
	artifactTagPrefix  = "artrect"
	fingerprintPrefix  = "artfpr"
	analysisPrefix     = "artmeta"
	searchEntryPrefix  = "artsrch"
	folderPrefix       = "folrec"
)

// makeArtifactKey generates a key for an artifact by ID.
func makeArtifactKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s", artifactPrefix, id))
}

// makeArtifactDateKey generates a composite key for the date index.
// Format: prefix:timestamp:id
func makeArtifactDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := artifactDatePrefix + ":"
	buf := make([]byte, len(prefix)+8+len(id))
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	copy(buf[offset:], id)
	return buf
}

// makePartialArtifactDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialArtifactDateKey(timestamp time.Time) []byte {
	prefix := artifactDatePrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeArtifactTagKey generates a composite key for the tag index.
// Format: prefix:tagID:artifactID
func makeArtifactTagKey(tagId, artifactId core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", artifactTagPrefix, tagId, artifactId))
}

// makePartialArtifactTagKey generates a partial key for tag queries.
func makePartialArtifactTagKey(tagId core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:", artifactTagPrefix, tagId))
}

// makeFingerprintKey generates a key for fingerprint lookup.
func makeFingerprintKey(fp core.Fingerprint) []byte {
	return []byte(fmt.Sprintf("%s:%s", fingerprintPrefix, fp))
}

// makeAnalysisKey generates a key for analysis metadata by artifact ID.
func makeAnalysisKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s", analysisPrefix, id))
}

// makeSearchEntryKey generates a key for a lexical search entry.
func makeSearchEntryKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s", searchEntryPrefix, id))
}

// makeFolderKey generates a key for a smart folder by ID.
func makeFolderKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s", folderPrefix, id))
}
