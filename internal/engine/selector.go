package engine

import "slices"

// selectTimeRule returns the first matching rule in declaration order.
// Time rules carry no priority; earlier declared wins.
func selectTimeRule(rules []TimeRule, tc TapContext) (TimeRule, bool) {
	for _, r := range rules {
		if r.matches(tc) {
			return r, true
		}
	}
	return TimeRule{}, false
}

// selectGeoRule returns the matching rule with the highest priority.
// Ties keep declaration order.
func selectGeoRule(rules []GeoRule, tc TapContext) (GeoRule, bool) {
	var cand []GeoRule
	for _, r := range rules {
		if r.matches(tc) {
			cand = append(cand, r)
		}
	}
	if len(cand) == 0 {
		return GeoRule{}, false
	}
	slices.SortStableFunc(cand, func(a, b GeoRule) int { return b.Priority - a.Priority })
	return cand[0], true
}

// selectConditionalRule returns the matching rule with the highest
// priority. Ties keep declaration order.
func selectConditionalRule(rules []ConditionalRule, tc TapContext) (ConditionalRule, bool) {
	var cand []ConditionalRule
	for _, r := range rules {
		if r.matches(tc) {
			cand = append(cand, r)
		}
	}
	if len(cand) == 0 {
		return ConditionalRule{}, false
	}
	slices.SortStableFunc(cand, func(a, b ConditionalRule) int { return b.Priority - a.Priority })
	return cand[0], true
}
