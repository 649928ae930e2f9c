package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// RuleKind discriminates the filter rule variants a smart folder may use.
type RuleKind string

const (
	RuleAll         RuleKind = "all"
	RuleRecent      RuleKind = "recent"
	RuleFavorites   RuleKind = "favorites"
	RuleByTag       RuleKind = "by_tag"
	RuleDateRange   RuleKind = "date_range"
	RuleContentType RuleKind = "content_type"
)

// FilterRule is a closed tagged variant describing which artifacts belong
// to a smart folder. Payload fields are meaningful only for their kind.
// Rules are decoded once at load time; unknown kinds are rejected there,
// never silently accepted.
type FilterRule struct {
	Kind      RuleKind
	Days      int       // RuleRecent
	TagId     ID        // RuleByTag
	Start     time.Time // RuleDateRange
	End       time.Time // RuleDateRange
	Substring string    // RuleContentType
}

// AllRule matches every artifact.
func AllRule() FilterRule {
	return FilterRule{Kind: RuleAll}
}

// RecentRule matches artifacts created within the last N days.
func RecentRule(days int) FilterRule {
	return FilterRule{Kind: RuleRecent, Days: days}
}

// FavoritesRule matches artifacts flagged favorite.
func FavoritesRule() FilterRule {
	return FilterRule{Kind: RuleFavorites}
}

// ByTagRule matches artifacts associated with the given tag.
func ByTagRule(tagId ID) FilterRule {
	return FilterRule{Kind: RuleByTag, TagId: tagId}
}

// DateRangeRule matches artifacts created in [start, end] inclusive.
func DateRangeRule(start, end time.Time) FilterRule {
	return FilterRule{Kind: RuleDateRange, Start: start, End: end}
}

// ContentTypeRule matches artifacts whose persisted keyword blob contains
// the substring. The match is a case-sensitive substring comparison
// against the serialized keyword list, not a structured field lookup.
func ContentTypeRule(substring string) FilterRule {
	return FilterRule{Kind: RuleContentType, Substring: substring}
}

// ruleJSON is the wire form of a FilterRule.
type ruleJSON struct {
	Kind      RuleKind `json:"kind"`
	Days      int      `json:"days,omitempty"`
	TagId     ID       `json:"tag_id,omitempty"`
	Start     int64    `json:"start,omitempty"` // epoch millis
	End       int64    `json:"end,omitempty"`   // epoch millis
	Substring string   `json:"substring,omitempty"`
}

// MarshalJSON encodes the rule in its wire form.
func (r FilterRule) MarshalJSON() ([]byte, error) {
	w := ruleJSON{
		Kind:      r.Kind,
		Days:      r.Days,
		TagId:     r.TagId,
		Substring: r.Substring,
	}
	if !r.Start.IsZero() {
		w.Start = r.Start.UnixMilli()
	}
	if !r.End.IsZero() {
		w.End = r.End.UnixMilli()
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a rule from its wire form.
// Unknown kinds are rejected so a malformed folder definition fails at
// load time rather than silently producing empty folders.
func (r *FilterRule) UnmarshalJSON(data []byte) error {
	var w ruleJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}

	decoded := FilterRule{
		Kind:      w.Kind,
		Days:      w.Days,
		TagId:     w.TagId,
		Substring: w.Substring,
	}
	if w.Start != 0 {
		decoded.Start = time.UnixMilli(w.Start).UTC()
	}
	if w.End != 0 {
		decoded.End = time.UnixMilli(w.End).UTC()
	}

	if err := ValidateRule(decoded); err != nil {
		return err
	}

	*r = decoded
	return nil
}

// SmartFolder is a virtual, rule-evaluated collection.
// Membership is never persisted; only the rule is.
type SmartFolder struct {
	Id         ID
	Name       string
	Rule       FilterRule
	InsertedAt time.Time
	UpdatedAt  time.Time
}
