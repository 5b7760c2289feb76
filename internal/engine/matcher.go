package engine

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// matches reports whether the window covers the tap instant, computed in
// the rule's own timezone rather than the server's. A malformed timezone
// or HH:MM makes the rule non-matching, never an error.
func (r TimeRule) matches(tc TapContext) bool {
	if !r.Active || r.Timezone == "" {
		return false
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return false
	}
	start, ok := minuteOfDay(r.Start)
	if !ok {
		return false
	}
	end, ok := minuteOfDay(r.End)
	if !ok {
		return false
	}

	t := tc.Timestamp.In(loc)
	if len(r.Days) > 0 && !slices.Contains(r.Days, int(t.Weekday())) {
		return false
	}
	m := t.Hour()*60 + t.Minute()
	if start <= end {
		return m >= start && m <= end
	}
	// window wraps past midnight, e.g. 22:00-02:00
	return m >= start || m <= end
}

func minuteOfDay(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// matches reports whether every set field equals the visitor's location
// exactly. Nil fields impose no constraint, so an all-nil rule is a
// catch-all at its priority.
func (r GeoRule) matches(tc TapContext) bool {
	if !r.Active {
		return false
	}
	if r.Country != nil && *r.Country != tc.Location.Country {
		return false
	}
	if r.Region != nil && *r.Region != tc.Location.Region {
		return false
	}
	if r.City != nil && *r.City != tc.Location.City {
		return false
	}
	return true
}

// matches evaluates the rule's operator over the selected client signal.
// String operators compare case-insensitively; regex runs with (?i)
// against the original-case signal. A pattern that does not compile
// never matches.
func (r ConditionalRule) matches(tc TapContext) bool {
	if !r.Active {
		return false
	}
	signal := tc.Signals.value(r.Condition)
	if r.Operator == OpRegex {
		re, err := regexp.Compile("(?i)" + r.Value)
		if err != nil {
			return false
		}
		return re.MatchString(signal)
	}

	s := strings.ToLower(signal)
	v := strings.ToLower(r.Value)
	switch r.Operator {
	case OpEquals:
		return s == v
	case OpContains:
		return strings.Contains(s, v)
	case OpStartsWith:
		return strings.HasPrefix(s, v)
	case OpEndsWith:
		return strings.HasSuffix(s, v)
	}
	return false
}
