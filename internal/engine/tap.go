package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tap-redirect-engine/internal/clientinfo"
)

var (
	// ErrCardNotFound means the identifier maps to no known card.
	ErrCardNotFound = errors.New("card not found")
	// ErrCardNotActivated means the card exists but is not in the
	// activated lifecycle state.
	ErrCardNotActivated = errors.New("card not activated")
	// ErrProfileNotFound is returned by stores for a dangling profile id.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrNoProfileConfigured means the card has no profile to resolve
	// against. A legitimate terminal state, not a fault.
	ErrNoProfileConfigured = errors.New("no profile configured")
)

// CardStore is the persistence boundary the processor reads through.
// RecordTap must not block the caller; implementations run it off the
// request path and may drop it under pressure.
type CardStore interface {
	CardByIdentifier(ctx context.Context, identifier string) (Card, error)
	ProfileByID(ctx context.Context, id string) (Profile, error)
	RecordTap(cardID string, at time.Time)
}

// Locator resolves a visitor IP to a coarse location.
type Locator interface {
	Locate(ctx context.Context, ip string) (Location, error)
}

// Recorder receives tap events for the analytics subsystem. Calls must
// return immediately; delivery is best-effort.
type Recorder interface {
	RecordTapEvent(cardID string, tc TapContext, destination string)
}

// RawRequest is what the HTTP boundary hands the processor: the facts
// of the request before any interpretation.
type RawRequest struct {
	IP        string
	Timestamp time.Time
	UserAgent string
	Referrer  string
}

// TapResult is a successfully resolved tap.
type TapResult struct {
	Card        Card
	Destination string
	Context     TapContext
}

// TapProcessor is the entry point for the card-scan boundary. It loads
// the card, builds the tap context, resolves the destination and fires
// the recording side effects.
type TapProcessor struct {
	Store         CardStore
	Locator       Locator
	Recorder      Recorder
	LocateTimeout time.Duration
}

// ProcessTap resolves one card scan to a destination URL.
// Failure policy: only an absent/inactive card, a dangling profile or a
// profile without a default URL may block the redirect; geolocation and
// recording failures degrade silently.
func (p *TapProcessor) ProcessTap(ctx context.Context, identifier string, req RawRequest) (TapResult, error) {
	card, err := p.Store.CardByIdentifier(ctx, NormalizeIdentifier(identifier))
	if err != nil {
		return TapResult{}, err
	}
	if card.Status != CardActivated {
		return TapResult{}, fmt.Errorf("%w: card %s is %s", ErrCardNotActivated, card.Identifier, card.Status)
	}
	if card.ProfileID == "" {
		return TapResult{}, ErrNoProfileConfigured
	}

	profile, err := p.Store.ProfileByID(ctx, card.ProfileID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return TapResult{}, ErrNoProfileConfigured
		}
		return TapResult{}, err
	}

	tc := p.buildContext(ctx, req)
	dest, err := Resolve(profile, tc)
	if err != nil {
		return TapResult{}, err
	}

	p.Store.RecordTap(card.ID, tc.Timestamp)
	if p.Recorder != nil {
		p.Recorder.RecordTapEvent(card.ID, tc, dest)
	}
	return TapResult{Card: card, Destination: dest, Context: tc}, nil
}

func (p *TapProcessor) buildContext(ctx context.Context, req RawRequest) TapContext {
	ts := req.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var loc Location
	if p.Locator != nil && req.IP != "" {
		timeout := p.LocateTimeout
		if timeout <= 0 {
			timeout = 500 * time.Millisecond
		}
		lctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		l, err := p.Locator.Locate(lctx, req.IP)
		if err != nil {
			// unknown location; geo rules with set fields won't match
			log.Debug().Err(err).Str("ip", req.IP).Msg("geolocation failed")
		} else {
			loc = l
		}
	}

	return TapContext{
		Timestamp: ts,
		Location:  loc,
		Signals: Signals{
			Device:    clientinfo.Device(req.UserAgent),
			Browser:   clientinfo.Browser(req.UserAgent),
			Referrer:  req.Referrer,
			UserAgent: req.UserAgent,
		},
	}
}

// NormalizeIdentifier canonicalizes the token printed on a card before
// lookup: trimmed and upper-cased.
func NormalizeIdentifier(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
