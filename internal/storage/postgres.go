package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"tap-redirect-engine/internal/config"
	"tap-redirect-engine/internal/engine"
)

// Store is the pgx-backed card/profile store. It implements
// engine.CardStore.
type Store struct {
	pool  *pgxpool.Pool
	cache *ProfileCache
}

func New(ctx context.Context, cfg config.Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Postgres.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Postgres.MaxIdleConns)
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	return &Store{pool: pool, cache: NewProfileCache()}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// CardByIdentifier looks up a card by its printed token. The caller is
// expected to have normalized the identifier already.
func (s *Store) CardByIdentifier(ctx context.Context, identifier string) (engine.Card, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, identifier, status, COALESCE(profile_id::text, '')
		FROM cards
		WHERE identifier = $1
	`, identifier)

	var c engine.Card
	var status string
	if err := row.Scan(&c.ID, &c.Identifier, &status, &c.ProfileID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return engine.Card{}, fmt.Errorf("%w: %s", engine.ErrCardNotFound, identifier)
		}
		return engine.Card{}, fmt.Errorf("query card: %w", err)
	}
	c.Status = engine.CardStatus(status)
	return c, nil
}

// ProfileByID loads a profile and its three rule sets, rule order being
// the stored position. Results are cached until the listener flushes.
func (s *Store) ProfileByID(ctx context.Context, id string) (engine.Profile, error) {
	if p, ok := s.cache.Get(id); ok {
		return p, nil
	}

	row := s.pool.QueryRow(ctx, `
		SELECT id, default_url, strategy
		FROM profiles
		WHERE id = $1
	`, id)

	var p engine.Profile
	var strategy string
	if err := row.Scan(&p.ID, &p.DefaultURL, &strategy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return engine.Profile{}, fmt.Errorf("%w: %s", engine.ErrProfileNotFound, id)
		}
		return engine.Profile{}, fmt.Errorf("query profile: %w", err)
	}
	p.Strategy = engine.Strategy(strategy)

	var err error
	if p.TimeRules, err = s.timeRules(ctx, id); err != nil {
		return engine.Profile{}, err
	}
	if p.GeoRules, err = s.geoRules(ctx, id); err != nil {
		return engine.Profile{}, err
	}
	if p.ConditionalRules, err = s.conditionalRules(ctx, id); err != nil {
		return engine.Profile{}, err
	}

	s.cache.Put(p)
	return p, nil
}

func (s *Store) timeRules(ctx context.Context, profileID string) ([]engine.TimeRule, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, start_time, end_time, days_of_week, timezone, url, active
		FROM time_rules
		WHERE profile_id = $1
		ORDER BY position
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("query time rules: %w", err)
	}
	defer rows.Close()

	var out []engine.TimeRule
	for rows.Next() {
		var r engine.TimeRule
		var days []int32
		if err := rows.Scan(&r.Name, &r.Start, &r.End, &days, &r.Timezone, &r.URL, &r.Active); err != nil {
			return nil, fmt.Errorf("scan time rule: %w", err)
		}
		for _, d := range days {
			r.Days = append(r.Days, int(d))
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) geoRules(ctx context.Context, profileID string) ([]engine.GeoRule, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, country, region, city, url, active, priority
		FROM geo_rules
		WHERE profile_id = $1
		ORDER BY position
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("query geo rules: %w", err)
	}
	defer rows.Close()

	var out []engine.GeoRule
	for rows.Next() {
		var r engine.GeoRule
		// nullable columns scan straight into the wildcard pointers
		if err := rows.Scan(&r.Name, &r.Country, &r.Region, &r.City, &r.URL, &r.Active, &r.Priority); err != nil {
			return nil, fmt.Errorf("scan geo rule: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) conditionalRules(ctx context.Context, profileID string) ([]engine.ConditionalRule, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, condition, operator, match_value, url, active, priority
		FROM conditional_rules
		WHERE profile_id = $1
		ORDER BY position
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("query conditional rules: %w", err)
	}
	defer rows.Close()

	var out []engine.ConditionalRule
	for rows.Next() {
		var r engine.ConditionalRule
		var cond, op string
		if err := rows.Scan(&r.Name, &cond, &op, &r.Value, &r.URL, &r.Active, &r.Priority); err != nil {
			return nil, fmt.Errorf("scan conditional rule: %w", err)
		}
		r.Condition = engine.Condition(cond)
		r.Operator = engine.Operator(op)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordTap bumps the card's tap counter and last-tap timestamp off the
// request path. Failures are logged and dropped; the redirect decision
// must never wait on this write.
func (s *Store) RecordTap(cardID string, at time.Time) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := s.pool.Exec(ctx, `
			UPDATE cards
			SET tap_count = tap_count + 1, last_tap_at = $2
			WHERE id = $1
		`, cardID, at)
		if err != nil {
			log.Error().Err(err).Str("card_id", cardID).Msg("record tap")
		}
	}()
}

// FlushProfiles empties the profile cache; called by the listener when
// the database signals a data change.
func (s *Store) FlushProfiles() {
	s.cache.Flush()
}

func (s *Store) ListenChannel() string {
	return "redirect_data_change"
}

func (s *Store) PgxPool() *pgxpool.Pool {
	if s.pool == nil {
		panic(errors.New("pgx pool is nil"))
	}
	return s.pool
}
