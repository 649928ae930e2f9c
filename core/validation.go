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

import (
	"fmt"
	"time"
)

// ValidateArtifact validates an Artifact according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - Path must not be empty
//   - CreatedAt must not be in the future
//
// NOT validated (populated by processors or optional):
//   - Fingerprint (may be empty for artifacts imported before hashing)
//   - Favorite, TagIds
func ValidateArtifact(artifact *Artifact) error {
	if artifact == nil {
		return fmt.Errorf("%w: artifact is nil", ErrInvalidArtifact)
	}

	if artifact.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArtifact, ErrEmptyID)
	}

	if artifact.Path == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArtifact, ErrEmptyPath)
	}

	if !IsValidTimestamp(artifact.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidArtifact, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateSmartFolder validates a SmartFolder according to domain rules.
func ValidateSmartFolder(folder *SmartFolder) error {
	if folder == nil {
		return fmt.Errorf("%w: folder is nil", ErrInvalidSmartFolder)
	}

	if folder.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSmartFolder, ErrEmptyFolderName)
	}

	if err := ValidateRule(folder.Rule); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSmartFolder, err)
	}

	return nil
}

// ValidateRule validates a FilterRule and its kind-specific payload.
func ValidateRule(rule FilterRule) error {
	switch rule.Kind {
	case RuleAll, RuleFavorites:
		return nil
	case RuleRecent:
		if rule.Days <= 0 {
			return fmt.Errorf("%w: recent rule requires days > 0, got %d", ErrInvalidRule, rule.Days)
		}
		return nil
	case RuleByTag:
		if rule.TagId == "" {
			return fmt.Errorf("%w: by_tag rule requires a tag id", ErrInvalidRule)
		}
		return nil
	case RuleDateRange:
		if rule.Start.IsZero() || rule.End.IsZero() {
			return fmt.Errorf("%w: date_range rule requires start and end", ErrInvalidRule)
		}
		if rule.End.Before(rule.Start) {
			return fmt.Errorf("%w: date_range end precedes start", ErrInvalidRule)
		}
		return nil
	case RuleContentType:
		if rule.Substring == "" {
			return fmt.Errorf("%w: content_type rule requires a substring", ErrInvalidRule)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRuleKind, rule.Kind)
	}
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
