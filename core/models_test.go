package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_Unique(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		require.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate id generated: %s", id)
		seen[id] = true
	}
}

func TestFingerprintBytes_Deterministic(t *testing.T) {
	data := []byte("the same pixels")

	fp1 := FingerprintBytes(data)
	fp2 := FingerprintBytes(data)

	assert.Equal(t, fp1, fp2, "identical content must produce identical fingerprints")
	assert.Len(t, string(fp1), 64, "BLAKE2b-256 hex digest should be 64 characters")
}

func TestFingerprintBytes_DiffersForDifferentContent(t *testing.T) {
	fp1 := FingerprintBytes([]byte("screenshot one"))
	fp2 := FingerprintBytes([]byte("screenshot two"))

	assert.NotEqual(t, fp1, fp2)
}

func TestFingerprintBytes_EmptyInput(t *testing.T) {
	fp := FingerprintBytes(nil)
	assert.Len(t, string(fp), 64)
}
