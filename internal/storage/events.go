package storage

import (
	"context"
	"fmt"

	"tap-redirect-engine/internal/analytics"
)

// InsertTapEvent persists one tap event row. Used as the analytics
// dispatcher's sink; it runs off the redirect path and may be retried.
func (s *Store) InsertTapEvent(ctx context.Context, ev analytics.Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tap_events
			(id, card_id, destination, country, region, city,
			 device, browser, referrer, user_agent, tapped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`,
		ev.ID, ev.CardID, ev.Destination, ev.Country, ev.Region, ev.City,
		ev.Device, ev.Browser, ev.Referrer, ev.UserAgent, ev.TappedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tap event: %w", err)
	}
	return nil
}
