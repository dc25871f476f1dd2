package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"mappy/internal/domain"
	"mappy/internal/ports"
)

// Initialize the database schema. The DDL is valid for both SQLite and Postgres.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        query TEXT PRIMARY KEY,
        lat DOUBLE PRECISION NOT NULL,
        lon DOUBLE PRECISION NOT NULL,
        display_name TEXT NOT NULL DEFAULT ''
    );
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
        route_key TEXT PRIMARY KEY,
        mode TEXT NOT NULL,
        distance_meters DOUBLE PRECISION NOT NULL,
        duration_seconds DOUBLE PRECISION NOT NULL,
        geometry TEXT NOT NULL DEFAULT '',
        created_at BIGINT NOT NULL
    );
	`

	createPreferencesQuery := `
	CREATE TABLE IF NOT EXISTS preferences (
        client_id TEXT PRIMARY KEY,
        theme TEXT NOT NULL,
        updated_at BIGINT NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_cache_created_at
    ON route_cache(created_at);
	`

	statements := []string{
		createGeocodeCacheQuery,
		createRouteCacheQuery,
		createPreferencesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type PlaceSeed struct {
	Query       string  `json:"query"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

// Pre-populate the geocode cache from a JSON file of known places.
// Queries are normalized with normalize before they are stored.
func SeedFromJSON(
	ctx context.Context,
	cache ports.GeocodeCache,
	jsonPath string,
	normalize func(string) string,
) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed places: read %q: %w", jsonPath, err)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed places: parse json: %w", err)
	}

	results := make(map[string]domain.Destination, len(data))
	for i, item := range data {
		query := normalize(item.Query)
		if strings.TrimSpace(query) == "" {
			return 0, fmt.Errorf("seed places: item at index %d: query cannot be empty", i+1)
		}

		dest := domain.Destination{
			Coordinate:  domain.Coordinate{Lat: item.Lat, Lon: item.Lon},
			DisplayName: strings.TrimSpace(item.DisplayName),
		}
		if err := dest.Validate(); err != nil {
			return 0, fmt.Errorf("seed places: item at index %d: %w", i+1, err)
		}
		results[query] = dest
	}

	if err := cache.PutMany(ctx, results); err != nil {
		return 0, fmt.Errorf("seed places: %w", err)
	}

	return len(results), nil
}
