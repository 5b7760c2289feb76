package engine

import "errors"

// ErrNoDefaultURL marks a profile stored without its terminal fallback.
// Write-side validation should make this impossible; hitting it at
// resolve time is a data-integrity violation.
var ErrNoDefaultURL = errors.New("profile has no default url")

// Resolve picks exactly one destination URL for a tap. It consults only
// the rule set named by the profile's strategy and falls back to the
// default URL when nothing matches. Resolve never mutates the profile
// and is deterministic for a fixed context, so concurrent taps against
// the same profile need no coordination.
func Resolve(p Profile, tc TapContext) (string, error) {
	if p.DefaultURL == "" {
		return "", ErrNoDefaultURL
	}

	switch p.Strategy {
	case StrategyStatic:
		// rules stay inert under the static strategy
		return p.DefaultURL, nil
	case StrategyTime:
		if r, ok := selectTimeRule(p.TimeRules, tc); ok {
			return r.URL, nil
		}
	case StrategyGeo:
		if r, ok := selectGeoRule(p.GeoRules, tc); ok {
			return r.URL, nil
		}
	case StrategyConditional:
		if r, ok := selectConditionalRule(p.ConditionalRules, tc); ok {
			return r.URL, nil
		}
	}
	return p.DefaultURL, nil
}
