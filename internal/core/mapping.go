package core

// mapping.go resolves a vendor department/category pair to a curated
// catalog category.
//
// Rules occupy fixed priority bands:
//
//	30  exact department + category
//	20  category only (department is "*")
//	10  department only (category is "*")
//
// The highest matching priority wins. Equal priorities are not expected
// from a well-formed rule set; when they occur the earliest rule in input
// order wins so results never depend on map or sort instability.

import "strings"

// Wildcard matches any value on its axis.
const Wildcard = "*"

// Priority bands.
const (
	PriorityDepartment = 10
	PriorityCategory   = 20
	PriorityExact      = 30
)

// Resolution is the outcome of resolving one pair.
// CuratedCategory is meaningful only when Matched is true.
type Resolution struct {
	Matched         bool
	CuratedCategory string
	Rule            MappingRule
}

// ResolveCategory returns the curated category for a normalized
// department/category pair, or an unmatched Resolution. It never guesses.
func ResolveCategory(department, category string, rules []MappingRule) Resolution {
	var (
		best  MappingRule
		found bool
	)

	for _, r := range rules {
		if !axisMatches(r.Department, department) || !axisMatches(r.Category, category) {
			continue
		}
		if !found || r.Priority > best.Priority {
			best = r
			found = true
		}
	}

	if !found {
		return Resolution{}
	}
	return Resolution{Matched: true, CuratedCategory: best.CuratedCategory, Rule: best}
}

func axisMatches(ruleValue, input string) bool {
	return ruleValue == Wildcard || ruleValue == input
}

// NormalizeRules returns a copy of rules with both axes passed through
// NormalizeCategoryKey, so rules authored as "Decoración" still match
// normalized input. Wildcards are preserved.
func NormalizeRules(rules []MappingRule) []MappingRule {
	out := make([]MappingRule, len(rules))
	for i, r := range rules {
		r.Department = normalizeAxis(r.Department)
		r.Category = normalizeAxis(r.Category)
		r.CuratedCategory = strings.TrimSpace(r.CuratedCategory)
		out[i] = r
	}
	return out
}

func normalizeAxis(v string) string {
	if strings.TrimSpace(v) == Wildcard {
		return Wildcard
	}
	return NormalizeCategoryKey(v)
}

// RuleBand returns the conventional priority for a rule's shape.
func RuleBand(r MappingRule) int {
	switch {
	case r.Department != Wildcard && r.Category != Wildcard:
		return PriorityExact
	case r.Department == Wildcard && r.Category != Wildcard:
		return PriorityCategory
	case r.Department != Wildcard && r.Category == Wildcard:
		return PriorityDepartment
	default:
		return 0
	}
}
