package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_StaticIgnoresRules(t *testing.T) {
	p := Profile{
		DefaultURL: "https://default.example",
		Strategy:   StrategyStatic,
		// rules are inert configuration under the static strategy
		GeoRules: []GeoRule{{Priority: 1, URL: "https://geo.example", Active: true}},
		ConditionalRules: []ConditionalRule{
			{Condition: ConditionDevice, Operator: OpEquals, Value: "mobile", Priority: 1, URL: "https://m.example", Active: true},
		},
	}
	ctx := TapContext{
		Timestamp: time.Now(),
		Location:  Location{Country: "US"},
		Signals:   Signals{Device: "mobile"},
	}

	url, err := Resolve(p, ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://default.example", url)
}

func TestResolve_EmptyRuleListFallsBack(t *testing.T) {
	for _, strategy := range []Strategy{StrategyTime, StrategyGeo, StrategyConditional} {
		p := Profile{DefaultURL: "https://default.example", Strategy: strategy}
		url, err := Resolve(p, TapContext{Timestamp: time.Now()})
		require.NoError(t, err)
		assert.Equal(t, "https://default.example", url, string(strategy))
	}
}

func TestResolve_NoDefaultURL(t *testing.T) {
	_, err := Resolve(Profile{Strategy: StrategyStatic}, TapContext{})
	assert.ErrorIs(t, err, ErrNoDefaultURL)
}

// Office-hours scenario: weekday taps inside the window go to the work
// URL, weekend taps fall back.
func TestResolve_TimeBasedScenario(t *testing.T) {
	p := Profile{
		DefaultURL: "https://default.example",
		Strategy:   StrategyTime,
		TimeRules: []TimeRule{{
			Name:     "office",
			Start:    "09:00",
			End:      "17:00",
			Days:     []int{1, 2, 3, 4, 5},
			Timezone: "America/New_York",
			URL:      "https://work.example",
			Active:   true,
		}},
	}

	wednesday := TapContext{Timestamp: utc(2026, time.March, 4, 15, 0)} // Wed 10:00 NY
	saturday := TapContext{Timestamp: utc(2026, time.March, 7, 15, 0)}  // Sat 10:00 NY

	url, err := Resolve(p, wednesday)
	require.NoError(t, err)
	assert.Equal(t, "https://work.example", url)

	url, err = Resolve(p, saturday)
	require.NoError(t, err)
	assert.Equal(t, "https://default.example", url)
}

// Geo scenario: owner-assigned priority decides, not specificity.
func TestResolve_GeoBasedScenario(t *testing.T) {
	p := Profile{
		DefaultURL: "https://default.example",
		Strategy:   StrategyGeo,
		GeoRules: []GeoRule{
			{Name: "us", Country: strptr("US"), Priority: 5, URL: "https://us.example", Active: true},
			{Name: "ca", Country: strptr("US"), Region: strptr("CA"), Priority: 10, URL: "https://ca.example", Active: true},
		},
	}

	california := TapContext{Location: Location{Country: "US", Region: "CA"}}
	url, err := Resolve(p, california)
	require.NoError(t, err)
	assert.Equal(t, "https://ca.example", url)

	texas := TapContext{Location: Location{Country: "US", Region: "TX"}}
	url, err = Resolve(p, texas)
	require.NoError(t, err)
	assert.Equal(t, "https://us.example", url)

	abroad := TapContext{Location: Location{Country: "DE"}}
	url, err = Resolve(p, abroad)
	require.NoError(t, err)
	assert.Equal(t, "https://default.example", url)
}

// Conditional scenario: case-insensitive device match.
func TestResolve_ConditionalScenario(t *testing.T) {
	p := Profile{
		DefaultURL: "https://d.example",
		Strategy:   StrategyConditional,
		ConditionalRules: []ConditionalRule{{
			Condition: ConditionDevice,
			Operator:  OpEquals,
			Value:     "mobile",
			Priority:  1,
			URL:       "https://m.example",
			Active:    true,
		}},
	}

	url, err := Resolve(p, TapContext{Signals: Signals{Device: "Mobile"}})
	require.NoError(t, err)
	assert.Equal(t, "https://m.example", url)

	url, err = Resolve(p, TapContext{Signals: Signals{Device: "desktop"}})
	require.NoError(t, err)
	assert.Equal(t, "https://d.example", url)
}

func TestResolve_IdempotentForFixedContext(t *testing.T) {
	p := Profile{
		DefaultURL: "https://default.example",
		Strategy:   StrategyTime,
		TimeRules: []TimeRule{
			{Start: "00:00", End: "11:59", Timezone: "UTC", URL: "https://am.example", Active: true},
			{Start: "12:00", End: "23:59", Timezone: "UTC", URL: "https://pm.example", Active: true},
		},
	}
	ctx := TapContext{Timestamp: time.Date(2026, time.March, 4, 13, 0, 0, 0, time.UTC)}

	first, err := Resolve(p, ctx)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		url, err := Resolve(p, ctx)
		require.NoError(t, err)
		assert.Equal(t, first, url)
	}
	assert.Equal(t, "https://pm.example", first)
}

func TestResolve_UnknownStrategyFallsBack(t *testing.T) {
	p := Profile{
		DefaultURL: "https://default.example",
		Strategy:   Strategy("experimental"),
		GeoRules:   []GeoRule{{Priority: 1, URL: "https://geo.example", Active: true}},
	}
	url, err := Resolve(p, TapContext{})
	require.NoError(t, err)
	assert.Equal(t, "https://default.example", url)
}

func BenchmarkResolveConditional(b *testing.B) {
	rules := make([]ConditionalRule, 0, 20)
	for i := 0; i < 20; i++ {
		rules = append(rules, ConditionalRule{
			Condition: ConditionUserAgent,
			Operator:  OpContains,
			Value:     "nomatch",
			Priority:  i + 1,
			URL:       "https://x.example",
			Active:    true,
		})
	}
	rules = append(rules, ConditionalRule{
		Condition: ConditionDevice, Operator: OpEquals, Value: "mobile",
		Priority: 1, URL: "https://m.example", Active: true,
	})
	p := Profile{DefaultURL: "https://d.example", Strategy: StrategyConditional, ConditionalRules: rules}
	ctx := TapContext{Signals: Signals{Device: "mobile", UserAgent: "Mozilla/5.0 (iPhone) Safari"}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Resolve(p, ctx)
	}
}
