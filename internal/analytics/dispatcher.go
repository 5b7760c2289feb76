// Package analytics decouples tap-event recording from the redirect
// path. Events go through a bounded buffer to a sink; a full buffer
// drops the event rather than delaying the redirect.
package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tap-redirect-engine/internal/engine"
	"tap-redirect-engine/internal/observability"
)

// Event is one recorded tap, flattened for the analytics subsystem.
type Event struct {
	ID          string
	CardID      string
	Destination string
	Country     string
	Region      string
	City        string
	Device      string
	Browser     string
	Referrer    string
	UserAgent   string
	TappedAt    time.Time
}

// Sink is where events end up. Delivery may fail transiently; the
// dispatcher retries with backoff before giving up on an event.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, ev Event) error

func (f SinkFunc) Deliver(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Dispatcher implements engine.Recorder. RecordTapEvent never blocks.
type Dispatcher struct {
	sink       Sink
	events     chan Event
	maxRetries uint64

	wg   sync.WaitGroup
	once sync.Once
}

func NewDispatcher(sink Sink, buffer int, maxRetries uint64) *Dispatcher {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Dispatcher{
		sink:       sink,
		events:     make(chan Event, buffer),
		maxRetries: maxRetries,
	}
}

// Start launches the delivery worker. Cancelling ctx stops it after the
// in-flight event.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-d.events:
				if !ok {
					return
				}
				d.deliver(ctx, ev)
			}
		}
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, ev Event) {
	op := func() error { return d.sink.Deliver(ctx, ev) }
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), d.maxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		log.Error().Err(err).Str("event_id", ev.ID).Str("card_id", ev.CardID).Msg("deliver tap event")
	}
}

// RecordTapEvent implements engine.Recorder. A full buffer drops the
// event and counts the drop.
func (d *Dispatcher) RecordTapEvent(cardID string, tc engine.TapContext, destination string) {
	ev := Event{
		ID:          uuid.NewString(),
		CardID:      cardID,
		Destination: destination,
		Country:     tc.Location.Country,
		Region:      tc.Location.Region,
		City:        tc.Location.City,
		Device:      tc.Signals.Device,
		Browser:     tc.Signals.Browser,
		Referrer:    tc.Signals.Referrer,
		UserAgent:   tc.Signals.UserAgent,
		TappedAt:    tc.Timestamp,
	}
	select {
	case d.events <- ev:
	default:
		observability.AnalyticsDropped.Inc()
		log.Warn().Str("card_id", cardID).Msg("analytics buffer full, dropping tap event")
	}
}

// Close stops accepting events and waits for the worker to drain.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.events) })
	d.wg.Wait()
}
