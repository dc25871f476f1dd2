package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mappy/internal/domain"
	"mappy/internal/platform/obs"
)

// SQLGeocodeCache is a Postgres-backed cache mapping search queries to destinations.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

// Fetch cached destinations for the given queries.
func (s *SQLGeocodeCache) GetMany(
	ctx context.Context,
	queries []string,
) (_ map[string]domain.Destination, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueKeys(queries)
	if len(uniq) == 0 {
		return map[string]domain.Destination{}, nil
	}

	q := `
	SELECT query, lat, lon, display_name
    FROM geocode_cache
    WHERE query = ANY($1::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, uniq)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	return scanDestinations(rows, len(uniq))
}

// Store query -> destination mappings in the cache.
func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Destination) (err error) {
	defer obs.Time(ctx, "geocode.cache.PutMany")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO geocode_cache (query, lat, lon, display_name)
    VALUES ($1, $2, $3, $4)
	ON CONFLICT (query) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		display_name = EXCLUDED.display_name;
	`)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for query, d := range results {
		if strings.TrimSpace(query) == "" {
			return fmt.Errorf("insert geocode cache: empty query key")
		}

		if _, err := stmt.ExecContext(ctx, query, d.Lat, d.Lon, d.DisplayName); err != nil {
			return fmt.Errorf("insert geocode cache query=%q: %w", query, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}

	return nil
}

func uniqueKeys(keys []string) []string {
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}

		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	return uniq
}

func scanDestinations(rows *sql.Rows, hint int) (map[string]domain.Destination, error) {
	out := make(map[string]domain.Destination, hint)
	for rows.Next() {
		var query, name string
		var lat, lon float64
		if err := rows.Scan(&query, &lat, &lon, &name); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out[query] = domain.Destination{
			Coordinate:  domain.Coordinate{Lat: lat, Lon: lon},
			DisplayName: name,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}
	return out, nil
}
