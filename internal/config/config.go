package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the research feed platform.
type Config struct {
	Storage Storage `yaml:"storage"`
	Server  Server  `yaml:"server"`
	Feed    Feed    `yaml:"feed"`
	Alpaca  Alpaca  `yaml:"alpaca"`
	News    News    `yaml:"news"`
	Logging Logging `yaml:"logging"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
	PrefsPath  string `yaml:"prefs_path"`
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address for http.Server.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Feed configures the upstream idea feed and refresh cadence.
type Feed struct {
	IdeaURL          string `yaml:"idea_url"`
	IdeaToken        string `yaml:"idea_token"`
	PollIntervalSec  int    `yaml:"poll_interval_sec"`
	QuoteIntervalSec int    `yaml:"quote_interval_sec"`
	RetentionDays    int    `yaml:"retention_days"`
}

// PollInterval returns the idea poll cadence.
func (f Feed) PollInterval() time.Duration {
	return time.Duration(f.PollIntervalSec) * time.Second
}

// QuoteInterval returns the quote refresh cadence.
func (f Feed) QuoteInterval() time.Duration {
	return time.Duration(f.QuoteIntervalSec) * time.Second
}

// Alpaca holds credentials and endpoints for the Alpaca market data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	DataURL   string `yaml:"data_url"`
}

// News configures the catalyst headline fetcher.
type News struct {
	RateLimitPerMin int `yaml:"rate_limit_per_min"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, fills in defaults, and then applies environment variable
// overrides. A .env file in the working directory is loaded first so local
// setups can keep credentials out of the YAML.
func Load(path string) (*Config, error) {
	// Absent .env is the normal case outside local development.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyDefaults fills zero-valued fields that have a sensible default.
// Credentials and the idea feed URL have none; callers decide whether a
// missing value disables the component or is fatal.
func applyDefaults(cfg *Config) {
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/research.db"
	}
	if cfg.Storage.PrefsPath == "" {
		cfg.Storage.PrefsPath = "data/prefs.json"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Feed.PollIntervalSec <= 0 {
		cfg.Feed.PollIntervalSec = 60
	}
	if cfg.Feed.QuoteIntervalSec <= 0 {
		cfg.Feed.QuoteIntervalSec = 30
	}
	if cfg.Feed.RetentionDays <= 0 {
		cfg.Feed.RetentionDays = 90
	}
	if cfg.News.RateLimitPerMin <= 0 {
		cfg.News.RateLimitPerMin = 10
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Alpaca.DataURL == "" {
		cfg.Alpaca.DataURL = "https://data.alpaca.markets"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("PREFS_PATH"); v != "" {
		cfg.Storage.PrefsPath = v
	}

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			cfg.Server.Port = p
		}
	}

	if v := os.Getenv("IDEA_FEED_URL"); v != "" {
		cfg.Feed.IdeaURL = v
	}
	if v := os.Getenv("IDEA_FEED_TOKEN"); v != "" {
		cfg.Feed.IdeaToken = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars (highest priority, canonical names used by SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
