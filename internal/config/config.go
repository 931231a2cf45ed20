package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration written as "90s", "10m" or "1h30m".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %q: negative", string(text))
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// SetValue lets cleanenv parse durations from the environment.
func (d *Duration) SetValue(s string) error {
	return d.UnmarshalText([]byte(s))
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type NotifyConfig struct {
	Enabled      *bool      `toml:"enabled"`
	Sound        string     `toml:"sound" env:"DAYTRACKER_NOTIFY_SOUND"`
	NotifyBefore []Duration `toml:"notify_before"`
	Expire       Duration   `toml:"expire" env:"DAYTRACKER_NOTIFY_EXPIRE"`
}

type LogConfig struct {
	Level  string `toml:"level" env:"DAYTRACKER_LOG_LEVEL"`
	Format string `toml:"format" env:"DAYTRACKER_LOG_FORMAT"`
}

type MetricsConfig struct {
	Listen string `toml:"listen" env:"DAYTRACKER_METRICS_LISTEN"`
}

type Config struct {
	DataDir        string        `toml:"data_dir" env:"DAYTRACKER_DATA_DIR"`
	Timezone       string        `toml:"timezone" env:"DAYTRACKER_TIMEZONE"`
	TickInterval   Duration      `toml:"tick_interval" env:"DAYTRACKER_TICK_INTERVAL"`
	HistoryLimit   int           `toml:"history_limit" env:"DAYTRACKER_HISTORY_LIMIT"`
	KeepCategories *bool         `toml:"keep_categories"`
	Notify         NotifyConfig  `toml:"notify"`
	Log            LogConfig     `toml:"log"`
	Metrics        MetricsConfig `toml:"metrics"`
}

const (
	DefaultTickInterval = Duration(time.Second)
	DefaultHistoryLimit = 365
	DefaultSound        = "complete"
	DefaultExpire       = Duration(10 * time.Second)
)

// SetDefault fills every unset field.
func (c *Config) SetDefault() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.TickInterval == 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.KeepCategories == nil {
		keep := true
		c.KeepCategories = &keep
	}
	if c.Notify.Enabled == nil {
		enabled := true
		c.Notify.Enabled = &enabled
	}
	if c.Notify.Sound == "" {
		c.Notify.Sound = DefaultSound
	}
	if c.Notify.Expire == 0 {
		c.Notify.Expire = DefaultExpire
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks values that SetDefault cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if c.TickInterval.Std() < 10*time.Millisecond || c.TickInterval.Std() > time.Minute {
		errs = append(errs, fmt.Errorf("tick_interval %s out of range 10ms..1m", c.TickInterval.Std()))
	}
	if c.HistoryLimit < 1 {
		errs = append(errs, fmt.Errorf("history_limit must be positive, got %d", c.HistoryLimit))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Location resolves Timezone; empty means the host's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// NotifyBefore returns the heads-up thresholds as durations.
func (c *Config) NotifyBefore() []time.Duration {
	out := make([]time.Duration, 0, len(c.Notify.NotifyBefore))
	for _, d := range c.Notify.NotifyBefore {
		out = append(out, d.Std())
	}
	return out
}

// LoadConfigFromFile reads path, applies DAYTRACKER_* environment
// overrides, fills defaults and validates. A missing file is not an error.
func LoadConfigFromFile(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return finish(&cfg)
}

// LoadConfigFromBytes is LoadConfigFromFile for in-memory TOML.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	cfg.SetDefault()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// DefaultConfigPath is $XDG_CONFIG_HOME/daytracker/config.toml.
func DefaultConfigPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "daytracker", "config.toml")
}

// DefaultDataDir is $XDG_DATA_HOME/daytracker.
func DefaultDataDir() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), "daytracker")
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, fallback)
}
