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

// SQLite backed cache mapping search queries to destinations.
// Query keys are expected to be normalized by the caller.
type SqliteGeocodeCache struct {
	DB *sql.DB
}

func NewSqliteGeocodeCache(db *sql.DB) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db}
}

// Fetch cached destinations for the given queries.
func (s *SqliteGeocodeCache) GetMany(
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

	ph := make([]string, len(uniq))
	args := make([]any, len(uniq))
	for i, q := range uniq {
		ph[i] = "?"
		args[i] = q
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
        query,
        lat,
        lon,
        display_name
    FROM geocode_cache
    WHERE query IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	return scanDestinations(rows, len(uniq))
}

// Store query -> destination mappings in the cache.
func (s *SqliteGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Destination) (err error) {
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
	INSERT OR REPLACE INTO geocode_cache (
        query,
        lat,
        lon,
        display_name
    )
    VALUES (?, ?, ?, ?);
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
