// Package geoip resolves visitor IPs to country/region/city using a
// local MaxMind database. Lookups are in-process and cheap; the reader
// can be swapped at runtime when the database file is refreshed.
package geoip

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/maxminddb-golang"

	"tap-redirect-engine/internal/cache"
	"tap-redirect-engine/internal/engine"
	"tap-redirect-engine/internal/observability"
)

// record maps the subset of the GeoLite2-City schema we care about.
type record struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
	Subdivisions []struct {
		ISOCode string            `maxminddb:"iso_code"`
		Names   map[string]string `maxminddb:"names"`
	} `maxminddb:"subdivisions"`
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
}

// DB wraps a maxminddb reader behind an atomic snapshot so Reload can
// swap the database under concurrent lookups.
type DB struct {
	snap cache.Snapshot[*maxminddb.Reader]
}

// Open reads the database at path.
func Open(path string) (*DB, error) {
	r, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	db := &DB{}
	db.snap.Store(r)
	return db, nil
}

// Reload swaps in a freshly opened database. The previous reader is not
// closed; in-flight lookups may still hold it and it is reclaimed with
// the process.
func (d *DB) Reload(path string) error {
	r, err := maxminddb.Open(path)
	if err != nil {
		return fmt.Errorf("reload geoip database: %w", err)
	}
	d.snap.Swap(r)
	return nil
}

// Close releases the current reader.
func (d *DB) Close() {
	if r, ok := d.snap.Load(); ok {
		_ = r.Close()
	}
}

// Locate implements engine.Locator. Any failure means "location
// unknown" to the caller; the engine degrades rather than fails.
func (d *DB) Locate(ctx context.Context, ip string) (engine.Location, error) {
	if err := ctx.Err(); err != nil {
		return engine.Location{}, err
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return engine.Location{}, fmt.Errorf("unparseable ip %q", ip)
	}
	r, ok := d.snap.Load()
	if !ok {
		return engine.Location{}, errors.New("geoip database not loaded")
	}

	var rec record
	if err := r.Lookup(parsed, &rec); err != nil {
		observability.GeoLookups.WithLabelValues("error").Inc()
		return engine.Location{}, fmt.Errorf("geoip lookup: %w", err)
	}

	if rec.Country.ISOCode == "" {
		observability.GeoLookups.WithLabelValues("unknown").Inc()
	} else {
		observability.GeoLookups.WithLabelValues("ok").Inc()
	}
	loc := engine.Location{
		Country: rec.Country.ISOCode,
		City:    rec.City.Names["en"],
	}
	if len(rec.Subdivisions) > 0 {
		loc.Region = rec.Subdivisions[0].ISOCode
	}
	return loc, nil
}
