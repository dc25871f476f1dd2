package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"mappy/internal/domain"
)

// Config is the full service configuration. Values come from defaults, an
// optional TOML file, then environment variables, in that order.
type Config struct {
	Env       string `toml:"env"`
	Port      string `toml:"port"`
	StaticDir string `toml:"static_dir"`
	SentryDSN string `toml:"sentry_dsn"`

	Storage   StorageConfig   `toml:"storage"`
	Nominatim NominatimConfig `toml:"nominatim"`
	OSRM      OSRMConfig      `toml:"osrm"`
	Session   SessionConfig   `toml:"session"`

	TileLayers   []TileLayerConfig `toml:"tile_layers"`
	DefaultLayer string            `toml:"default_layer"`

	// DotEnvErr is why no .env file was applied, nil when one was. Load runs
	// before the logger exists, so the caller logs it.
	DotEnvErr error `toml:"-"`
}

type StorageConfig struct {
	Driver        string   `toml:"driver"` // sqlite | postgres
	SQLitePath    string   `toml:"sqlite_path"`
	DatabaseURL   string   `toml:"database_url"`
	RedisURL      string   `toml:"redis_url"`
	RouteCacheTTL Duration `toml:"route_cache_ttl"`
}

type NominatimConfig struct {
	BaseURL   string   `toml:"base_url"`
	UserAgent string   `toml:"user_agent"`
	Timeout   Duration `toml:"timeout"`
}

type OSRMConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
	// Upstream profile name per travel mode, e.g. walking = "foot".
	Profiles map[string]string `toml:"profiles"`
}

type SessionConfig struct {
	LocateTimeout   Duration `toml:"locate_timeout"`
	TrackingTimeout Duration `toml:"tracking_timeout"`
	FlyingSpeedKmh  float64  `toml:"flying_speed_kmh"`
}

type TileLayerConfig struct {
	ID          string `toml:"id"`
	URL         string `toml:"url"`
	Attribution string `toml:"attribution"`
	MaxZoom     int    `toml:"max_zoom"`
}

// Duration decodes "10s"-style strings from TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	layers := domain.DefaultTileLayers()
	tl := make([]TileLayerConfig, 0, len(layers))
	for _, l := range layers {
		tl = append(tl, TileLayerConfig{ID: l.ID, URL: l.URL, Attribution: l.Attribution, MaxZoom: l.MaxZoom})
	}

	return &Config{
		Env:       "development",
		Port:      "8080",
		StaticDir: "web",
		Storage: StorageConfig{
			Driver:        "sqlite",
			SQLitePath:    "data/mappy.db",
			RouteCacheTTL: Duration{24 * time.Hour},
		},
		Nominatim: NominatimConfig{
			BaseURL:   "https://nominatim.openstreetmap.org",
			UserAgent: "Mappy-App/1.0",
			Timeout:   Duration{10 * time.Second},
		},
		OSRM: OSRMConfig{
			BaseURL: "https://router.project-osrm.org",
			Timeout: Duration{10 * time.Second},
			Profiles: map[string]string{
				string(domain.ModeDriving): "driving",
				string(domain.ModeWalking): "foot",
				string(domain.ModeCycling): "bike",
			},
		},
		Session: SessionConfig{
			LocateTimeout:   Duration{10 * time.Second},
			TrackingTimeout: Duration{5 * time.Second},
			FlyingSpeedKmh:  800,
		},
		TileLayers:   tl,
		DefaultLayer: domain.DefaultLayerID,
	}
}

// Load builds the configuration. A missing .env or TOML file is not an error.
func Load(path string) (*Config, error) {
	envErr := godotenv.Load()

	cfg := Default()
	cfg.DotEnvErr = envErr

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("load config: decode %q: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load config: stat %q: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Env = Get("MAPPY_ENV", c.Env)
	c.Port = Get("PORT", c.Port)
	c.StaticDir = Get("STATIC_DIR", c.StaticDir)
	c.SentryDSN = Get("SENTRY_DSN", c.SentryDSN)

	c.Storage.Driver = Get("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.SQLitePath = Get("DB_PATH", c.Storage.SQLitePath)
	c.Storage.DatabaseURL = Get("DATABASE_URL", c.Storage.DatabaseURL)
	c.Storage.RedisURL = Get("REDIS_URL", c.Storage.RedisURL)

	c.Nominatim.BaseURL = Get("NOMINATIM_URL", c.Nominatim.BaseURL)
	c.Nominatim.UserAgent = Get("NOMINATIM_USER_AGENT", c.Nominatim.UserAgent)
	c.OSRM.BaseURL = Get("OSRM_URL", c.OSRM.BaseURL)

	durations := []struct {
		key string
		dst *Duration
	}{
		{"ROUTE_CACHE_TTL", &c.Storage.RouteCacheTTL},
		{"LOCATE_TIMEOUT", &c.Session.LocateTimeout},
		{"TRACKING_TIMEOUT", &c.Session.TrackingTimeout},
	}
	for _, d := range durations {
		if v := os.Getenv(d.key); v != "" {
			if err := d.dst.UnmarshalText([]byte(v)); err != nil {
				return fmt.Errorf("%s: %w", d.key, err)
			}
		}
	}

	if v := os.Getenv("FLYING_SPEED_KMH"); v != "" {
		speed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("FLYING_SPEED_KMH: %w", err)
		}
		c.Session.FlyingSpeedKmh = speed
	}

	return nil
}

// Validate checks the values the service cannot start without.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite":
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			return errors.New("storage.sqlite_path (DB_PATH) is required for the sqlite driver")
		}
	case "postgres":
		if strings.TrimSpace(c.Storage.DatabaseURL) == "" {
			return errors.New("storage.database_url (DATABASE_URL) is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Nominatim.BaseURL == "" {
		return errors.New("nominatim.base_url is required")
	}
	if c.OSRM.BaseURL == "" {
		return errors.New("osrm.base_url is required")
	}
	for _, m := range domain.RoadModes() {
		if c.OSRM.Profiles[string(m)] == "" {
			return fmt.Errorf("osrm.profiles.%s is required", m)
		}
	}

	if c.Session.FlyingSpeedKmh <= 0 {
		return errors.New("session.flying_speed_kmh must be greater than zero")
	}
	if c.Session.LocateTimeout.Duration <= 0 || c.Session.TrackingTimeout.Duration <= 0 {
		return errors.New("session timeouts must be positive")
	}

	if len(c.TileLayers) == 0 {
		return errors.New("at least one tile layer is required")
	}
	if _, ok := c.Layer(c.DefaultLayer); !ok {
		return fmt.Errorf("default_layer %q is not a configured tile layer", c.DefaultLayer)
	}

	return nil
}

// Layers returns the tile layer catalogue as domain values.
func (c *Config) Layers() []domain.TileLayer {
	out := make([]domain.TileLayer, 0, len(c.TileLayers))
	for _, l := range c.TileLayers {
		out = append(out, domain.TileLayer{ID: l.ID, URL: l.URL, Attribution: l.Attribution, MaxZoom: l.MaxZoom})
	}
	return out
}

func (c *Config) Layer(id string) (domain.TileLayer, bool) {
	for _, l := range c.Layers() {
		if l.ID == id {
			return l, true
		}
	}
	return domain.TileLayer{}, false
}

// Profiles returns the OSRM profile name per road mode.
func (c *Config) Profiles() map[domain.TravelMode]string {
	out := make(map[domain.TravelMode]string, len(c.OSRM.Profiles))
	for k, v := range c.OSRM.Profiles {
		out[domain.TravelMode(k)] = v
	}
	return out
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
