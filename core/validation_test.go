package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validArtifact() *Artifact {
	return &Artifact{
		Id:          NewID(),
		Path:        "/captures/shot-001.png",
		Fingerprint: FingerprintBytes([]byte("pixels")),
		CreatedAt:   time.Now().Add(-time.Hour),
	}
}

func TestValidateArtifact(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Artifact)
		wantErr error
	}{
		{
			name:   "valid artifact",
			mutate: func(_ *Artifact) {},
		},
		{
			name:    "empty id",
			mutate:  func(a *Artifact) { a.Id = "" },
			wantErr: ErrEmptyID,
		},
		{
			name:    "empty path",
			mutate:  func(a *Artifact) { a.Path = "" },
			wantErr: ErrEmptyPath,
		},
		{
			name:    "future timestamp",
			mutate:  func(a *Artifact) { a.CreatedAt = time.Now().Add(time.Hour) },
			wantErr: ErrInvalidTimestamp,
		},
		{
			name:   "missing fingerprint is allowed",
			mutate: func(a *Artifact) { a.Fingerprint = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact := validArtifact()
			tt.mutate(artifact)

			err := ValidateArtifact(artifact)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidArtifact)
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateArtifact_Nil(t *testing.T) {
	err := ValidateArtifact(nil)
	assert.ErrorIs(t, err, ErrInvalidArtifact)
}

func TestValidateSmartFolder(t *testing.T) {
	tests := []struct {
		name    string
		folder  *SmartFolder
		wantErr error
	}{
		{
			name:   "valid folder",
			folder: &SmartFolder{Id: NewID(), Name: "Last week", Rule: RecentRule(7)},
		},
		{
			name:    "empty name",
			folder:  &SmartFolder{Id: NewID(), Rule: AllRule()},
			wantErr: ErrEmptyFolderName,
		},
		{
			name:    "invalid rule",
			folder:  &SmartFolder{Id: NewID(), Name: "Broken", Rule: RecentRule(0)},
			wantErr: ErrInvalidRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSmartFolder(tt.folder)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRule(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		rule    FilterRule
		wantErr error
	}{
		{name: "all", rule: AllRule()},
		{name: "favorites", rule: FavoritesRule()},
		{name: "recent", rule: RecentRule(30)},
		{name: "recent zero days", rule: RecentRule(0), wantErr: ErrInvalidRule},
		{name: "by tag", rule: ByTagRule("tag-1")},
		{name: "by tag empty", rule: ByTagRule(""), wantErr: ErrInvalidRule},
		{name: "date range", rule: DateRangeRule(now.Add(-24*time.Hour), now)},
		{name: "date range inverted", rule: DateRangeRule(now, now.Add(-24*time.Hour)), wantErr: ErrInvalidRule},
		{name: "content type", rule: ContentTypeRule("code")},
		{name: "content type empty", rule: ContentTypeRule(""), wantErr: ErrInvalidRule},
		{name: "unknown kind", rule: FilterRule{Kind: "smart_ai_magic"}, wantErr: ErrUnknownRuleKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRule(tt.rule)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
