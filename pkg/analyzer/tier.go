// Package analyzer provides lexical SQL complexity analysis and cost estimation.
//
// All functions in this package are pure and operate on local state only:
// they are reentrant and safe to call concurrently without synchronization.
package analyzer

import (
	"encoding/json"
	"strings"

	"github.com/TFMV/gauntlet/pkg/errors"
)

// Tier is the coarse complexity classification assigned to a query
// from lexical signals.
type Tier int

const (
	// TierSimple covers plain scans, filters, and single aggregations.
	TierSimple Tier = iota
	// TierMedium covers joins, grouping, ordering, and heavy aggregation.
	TierMedium
	// TierComplex covers window functions and deeply nested subqueries.
	TierComplex
)

// tierRank defines the total order Simple < Medium < Complex explicitly,
// independent of constant declaration order.
var tierRank = map[Tier]int{
	TierSimple:  0,
	TierMedium:  1,
	TierComplex: 2,
}

// maxTier returns the higher-ranked of two tiers.
func maxTier(a, b Tier) Tier {
	if tierRank[b] > tierRank[a] {
		return b
	}
	return a
}

// AtLeast reports whether t is ranked at or above other.
func (t Tier) AtLeast(other Tier) bool {
	return tierRank[t] >= tierRank[other]
}

// String returns the string representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierSimple:
		return "Simple"
	case TierMedium:
		return "Medium"
	case TierComplex:
		return "Complex"
	default:
		return "Unknown"
	}
}

// ParseTier parses a tier name, case-insensitively.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple":
		return TierSimple, nil
	case "medium":
		return TierMedium, nil
	case "complex":
		return TierComplex, nil
	default:
		return TierSimple, errors.Newf(errors.CodeInvalidConfig, "unknown complexity tier: %q", s)
	}
}

// MarshalJSON serializes the tier as its name.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON deserializes a tier from its name.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
