package engine

import "time"

// Strategy names the rule kind a profile consults on a tap.
// Exactly one strategy is active per resolution.
type Strategy string

const (
	StrategyStatic      Strategy = "static"
	StrategyTime        Strategy = "time-based"
	StrategyGeo         Strategy = "geo-based"
	StrategyConditional Strategy = "conditional"
)

// Profile is the redirect configuration owned by a card owner.
// The resolver is a read-only consumer; rule slices keep insertion order,
// which is the tie-break of last resort.
type Profile struct {
	ID               string
	DefaultURL       string // terminal fallback, must never be empty
	Strategy         Strategy
	TimeRules        []TimeRule
	GeoRules         []GeoRule
	ConditionalRules []ConditionalRule
}

// TimeRule maps a recurring time window to a destination.
// Start/End are "HH:MM" minute-of-day, inclusive on both ends.
// A window with Start > End wraps past midnight.
type TimeRule struct {
	Name     string
	Start    string
	End      string
	Days     []int  // 0=Sunday..6=Saturday; empty means every day
	Timezone string // IANA name the window is anchored to
	URL      string
	Active   bool
}

// GeoRule maps a visitor location to a destination. Nil fields are
// wildcards; a rule with all three unset matches any visitor.
type GeoRule struct {
	Name     string
	Country  *string // ISO-3166 alpha-2
	Region   *string
	City     *string
	URL      string
	Active   bool
	Priority int // >= 1, higher wins
}

// Condition names the client signal a ConditionalRule inspects.
type Condition string

const (
	ConditionDevice    Condition = "device"
	ConditionBrowser   Condition = "browser"
	ConditionReferrer  Condition = "referrer"
	ConditionUserAgent Condition = "user-agent"
)

// Operator is the comparison a ConditionalRule applies.
type Operator string

const (
	OpEquals     Operator = "equals"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "starts-with"
	OpEndsWith   Operator = "ends-with"
	OpRegex      Operator = "regex"
)

// ConditionalRule maps a client-signal predicate to a destination.
type ConditionalRule struct {
	Name      string
	Condition Condition
	Value     string
	Operator  Operator
	URL       string
	Active    bool
	Priority  int // >= 1, higher wins
}

// Location is where a tap came from, as far as geolocation can tell.
// The zero value means "unknown".
type Location struct {
	Country string
	Region  string
	City    string
}

// Signals are the client-side facts extracted from the tap request.
type Signals struct {
	Device    string
	Browser   string
	Referrer  string
	UserAgent string
}

func (s Signals) value(c Condition) string {
	switch c {
	case ConditionDevice:
		return s.Device
	case ConditionBrowser:
		return s.Browser
	case ConditionReferrer:
		return s.Referrer
	case ConditionUserAgent:
		return s.UserAgent
	}
	return ""
}

// TapContext is the ephemeral snapshot of a single card scan.
// It is built per request and never persisted by the engine.
type TapContext struct {
	Timestamp time.Time
	Location  Location
	Signals   Signals
}

// CardStatus is the lifecycle state of a physical card. The engine only
// reads it; transitions belong to the card's owning subsystem.
type CardStatus string

const (
	CardUnassigned CardStatus = "unassigned"
	CardReady      CardStatus = "ready"
	CardActivated  CardStatus = "activated"
	CardSuspended  CardStatus = "suspended"
)

// Card is the physical token a tap identifies.
type Card struct {
	ID         string
	Identifier string // opaque uppercase alphanumeric token printed on the card
	Status     CardStatus
	ProfileID  string // empty when no profile is assigned
}
