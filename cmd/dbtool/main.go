package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"mappy/internal/adapters/cache"
	"mappy/internal/adapters/repositories"
	"mappy/internal/config"
	"mappy/internal/platform/db"
	"mappy/internal/platform/obs"
	"mappy/internal/ports"
	"mappy/internal/services"
)

// dbtool initializes the schema of the configured database and optionally
// pre-populates the geocode cache from a JSON file of known places.
func main() {
	seedPath := flag.String("seed", config.Get("SEED_PATH", ""), "JSON file of places to load into the geocode cache")
	flag.Parse()

	cfg, err := config.Load(config.Get("MAPPY_CONFIG", "config.toml"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := obs.NewLogger(cfg.Env, "dbtool")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.DotEnvErr != nil {
		log.Info("no .env file found (using environment variables)", zap.Error(cfg.DotEnvErr))
	}

	conn, geocodeCache, err := open(cfg.Storage)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	if err := initAndSeed(context.Background(), conn, geocodeCache, *seedPath, log); err != nil {
		log.Fatal("dbtool failed", zap.Error(err))
	}
}

func open(cfg config.StorageConfig) (*sql.DB, ports.GeocodeCache, error) {
	if cfg.Driver == string(db.DialectPostgres) {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return conn, cache.NewSQLGeocodeCache(conn), nil
	}

	conn, err := db.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	return conn, cache.NewSqliteGeocodeCache(conn), nil
}

func initAndSeed(ctx context.Context, conn *sql.DB, geocodeCache ports.GeocodeCache, seedPath string, log *zap.Logger) error {
	log.Info("initializing database schema")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Info("schema ready")

	if seedPath == "" {
		return nil
	}

	log.Info("seeding geocode cache", zap.String("path", seedPath))
	n, err := repositories.SeedFromJSON(ctx, geocodeCache, seedPath, services.NormalizeQuery)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Info("seeding complete", zap.Int("places", n))

	return nil
}
