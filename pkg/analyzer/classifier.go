package analyzer

import (
	"regexp"
	"strings"
)

// Classification rules evaluated against normalized, upper-cased text.
// Word boundaries keep identifiers like tableJOIN or COUNTER from matching.
var (
	joinPattern       = regexp.MustCompile(`\bJOIN\b`)
	groupOrderPattern = regexp.MustCompile(`\b(?:GROUP BY|ORDER BY)\b`)
	windowPattern     = regexp.MustCompile(`\b(?:WINDOW|OVER)\b`)
	aggregatePattern  = regexp.MustCompile(`\b(?:COUNT|SUM|AVG|MIN|MAX)\(`)
)

// maxSubqueryDepth is the subquery count above which a query is Complex.
const maxSubqueryDepth = 2

// maxAggregateCalls is the aggregate-call count above which a query is
// at least Medium.
const maxAggregateCalls = 3

// Classify assigns a complexity tier to raw SQL text. Every rule is
// evaluated; the result is the maximum tier any rule triggered, so a later
// rule can never downgrade an earlier one.
func Classify(sql string) Tier {
	normalized := strings.ToUpper(Normalize(sql))
	tier := TierSimple

	if joinPattern.MatchString(normalized) {
		tier = maxTier(tier, TierMedium)
	}

	if groupOrderPattern.MatchString(normalized) {
		tier = maxTier(tier, TierMedium)
	}

	if windowPattern.MatchString(normalized) {
		tier = maxTier(tier, TierComplex)
	}

	if CountSubqueries(normalized) > maxSubqueryDepth {
		tier = maxTier(tier, TierComplex)
	}

	if len(aggregatePattern.FindAllStringIndex(normalized, -1)) > maxAggregateCalls {
		tier = maxTier(tier, TierMedium)
	}

	return tier
}

// CountSubqueries counts SELECT tokens that occur while nested inside at
// least one unmatched opening parenthesis of normalized text. A SELECT is
// counted once per parenthesis transition: after a match, further SELECT
// tokens are ignored until the next '(' or ')'. Parenthesized groups with
// no SELECT, such as IN (1,2,3) lists, contribute zero.
func CountSubqueries(normalized string) int {
	upper := strings.ToUpper(normalized)
	count := 0
	depth := 0
	inSubquery := false

	for i := 0; i < len(upper); i++ {
		switch upper[i] {
		case '(':
			depth++
			inSubquery = false
		case ')':
			depth--
			inSubquery = false
		case 'S':
			if depth > 0 && !inSubquery && wordAt(upper, i, "SELECT") {
				count++
				inSubquery = true
			}
		}
	}

	return count
}

// wordAt reports whether word occurs at position i in s with non-alphanumeric
// characters (or string edges) on both sides.
func wordAt(s string, i int, word string) bool {
	if i+len(word) > len(s) || s[i:i+len(word)] != word {
		return false
	}
	if i > 0 && isAlphanumeric(s[i-1]) {
		return false
	}
	if end := i + len(word); end < len(s) && isAlphanumeric(s[end]) {
		return false
	}
	return true
}

func isAlphanumeric(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
