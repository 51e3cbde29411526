// Package config loads the collector and bot configuration from YAML,
// with environment overrides for secrets. Config is read once at
// startup and treated as immutable afterwards.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

type Logging struct {
	Level   string  `yaml:"level"`
	Console bool    `yaml:"console"`
	File    LogFile `yaml:"file"`
}

type LogFile struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type Database struct {
	Path string `yaml:"path"`
	// BusyTimeout is a Go duration string (e.g. "5s").
	BusyTimeout string `yaml:"busy_timeout"`
}

type Riot struct {
	APIKey     string  `yaml:"api_key"`
	BaseURL    string  `yaml:"base_url"`
	RatePerSec float64 `yaml:"rate_per_sec"`
	Burst      int     `yaml:"burst"`
}

type IPC struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Collector configures the ingestion process.
type Collector struct {
	Logging  Logging  `yaml:"logging"`
	Database Database `yaml:"database"`
	Riot     Riot     `yaml:"riot"`
	IPC      IPC      `yaml:"ipc"`

	// PollInterval is a Go duration string; the sweep that re-lists
	// every tracked player runs at this cadence.
	PollInterval string `yaml:"poll_interval"`
	// AccountRefreshInterval re-looks-up display names and tags.
	AccountRefreshInterval string `yaml:"account_refresh_interval"`
	// CacheSize bounds the match-ID recency cache.
	CacheSize int `yaml:"cache_size"`
}

// Bot configures the notification process.
type Bot struct {
	Logging  Logging  `yaml:"logging"`
	Database Database `yaml:"database"`
	Riot     Riot     `yaml:"riot"`
	IPC      IPC      `yaml:"ipc"`

	Discord       Discord     `yaml:"discord"`
	TemplatesPath string      `yaml:"templates_path"`
	Leaderboard   Leaderboard `yaml:"leaderboard"`
	Evaluator     Evaluator   `yaml:"evaluator"`
}

type Discord struct {
	Token string `yaml:"token"`
}

type Leaderboard struct {
	QueueIDs []int64 `yaml:"queue_ids"`
	Size     int     `yaml:"size"`
}

// Evaluator mirrors evaluator.Config in YAML shape. An omitted section
// falls back to the shipped defaults.
type Evaluator struct {
	Threshold float64            `yaml:"threshold"`
	Floor     *Floor             `yaml:"floor"`
	Weights   map[string]Weights `yaml:"weights"`
	Ranges    []DeathRange       `yaml:"ranges"`
}

type Floor struct {
	Enabled   bool  `yaml:"enabled"`
	MaxDeaths int64 `yaml:"max_deaths"`
	MinKills  int64 `yaml:"min_kills"`
}

type Weights struct {
	Kill   float64 `yaml:"kill"`
	Death  float64 `yaml:"death"`
	Assist float64 `yaml:"assist"`
}

type DeathRange struct {
	Level     string `yaml:"level"`
	MinDeaths int64  `yaml:"min_deaths"`
	MaxDeaths int64  `yaml:"max_deaths"`
}

// LoadCollector reads and validates the collector config.
func LoadCollector(path string) (*Collector, error) {
	var cfg Collector
	if err := loadStrict(path, &cfg); err != nil {
		return nil, err
	}
	applyCommonEnv(&cfg.Database, &cfg.Riot, &cfg.IPC)

	if cfg.Riot.APIKey == "" {
		return nil, fmt.Errorf("config: riot.api_key (or RGAPI_KEY) is required")
	}
	if cfg.Database.Path == "" {
		return nil, fmt.Errorf("config: database.path is required")
	}
	return &cfg, nil
}

// LoadBot reads and validates the bot config.
func LoadBot(path string) (*Bot, error) {
	var cfg Bot
	if err := loadStrict(path, &cfg); err != nil {
		return nil, err
	}
	applyCommonEnv(&cfg.Database, &cfg.Riot, &cfg.IPC)
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}

	if cfg.Discord.Token == "" {
		return nil, fmt.Errorf("config: discord.token (or DISCORD_TOKEN) is required")
	}
	if cfg.Riot.APIKey == "" {
		return nil, fmt.Errorf("config: riot.api_key (or RGAPI_KEY) is required")
	}
	if cfg.Database.Path == "" {
		return nil, fmt.Errorf("config: database.path is required")
	}
	return &cfg, nil
}

func loadStrict(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyCommonEnv(db *Database, riot *Riot, ipc *IPC) {
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		db.Path = v
	}
	if v := os.Getenv("RGAPI_KEY"); v != "" {
		riot.APIKey = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		ipc.URL = v
	}
}

// ParseDurationOrDefault parses a Go duration string, using def when
// the field is empty or zero.
func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	if d == 0 {
		return def, nil
	}
	return d, nil
}
