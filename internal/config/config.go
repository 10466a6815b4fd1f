// Package config loads and saves the agenda configuration file.
//
// The file is YAML. It is created with defaults and 0600 permissions on first
// run. Values from a .env file and the process environment are applied on top
// after loading; they are never written back.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvAPIURL   = "AGENDA_API_URL"
	EnvTimezone = "AGENDA_TIMEZONE"
	EnvLogLevel = "AGENDA_LOG_LEVEL"
)

const (
	defaultAPIURL         = "http://localhost:8000"
	defaultTimezone       = "Asia/Ho_Chi_Minh"
	defaultNarrowWidth    = 100
	defaultToastDuration  = 4 * time.Second
	defaultSearchDebounce = 220 * time.Millisecond
	defaultSearchMax      = 5
	defaultRefresh        = "*/5 * * * *"
)

// LogConfig controls the zap logger.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is "console" or "json".
	Format string `yaml:"format"`
	// File is the log sink. The terminal belongs to the UI, so logs never go
	// to stdout.
	File string `yaml:"file"`
}

// Config is the top-level client configuration.
type Config struct {
	// APIURL is the base URL of the schedule backend.
	APIURL string `yaml:"api_url"`

	// Timezone is the IANA zone every date key is computed in.
	Timezone string `yaml:"timezone"`

	// NarrowWidth is the terminal width below which the calendar opens a
	// day-detail overlay instead of selecting a date.
	NarrowWidth int `yaml:"narrow_width"`

	ToastDuration    time.Duration `yaml:"toast_duration"`
	SearchDebounce   time.Duration `yaml:"search_debounce"`
	SearchMaxResults int           `yaml:"search_max_results"`

	// Refresh is a standard five-field cron expression for periodic refetch.
	Refresh string `yaml:"refresh"`

	// Reminders enables client-side reminder toasts.
	Reminders bool `yaml:"reminders"`

	Log LogConfig `yaml:"log"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		APIURL:           defaultAPIURL,
		Timezone:         defaultTimezone,
		NarrowWidth:      defaultNarrowWidth,
		ToastDuration:    defaultToastDuration,
		SearchDebounce:   defaultSearchDebounce,
		SearchMaxResults: defaultSearchMax,
		Refresh:          defaultRefresh,
		Reminders:        true,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Normalize fills zero values with defaults so partially written files still
// behave.
func (c *Config) Normalize() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		c.APIURL = defaultAPIURL
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.NarrowWidth <= 0 {
		c.NarrowWidth = defaultNarrowWidth
	}
	if c.ToastDuration <= 0 {
		c.ToastDuration = defaultToastDuration
	}
	if c.SearchDebounce <= 0 {
		c.SearchDebounce = defaultSearchDebounce
	}
	if c.SearchMaxResults <= 0 {
		c.SearchMaxResults = defaultSearchMax
	}
	if strings.TrimSpace(c.Refresh) == "" {
		c.Refresh = defaultRefresh
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		c.Log.Level = "info"
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		c.Log.Format = "console"
	}
}

// DefaultPath returns <user config dir>/agenda/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "agenda", "config.yaml"), nil
}

// DefaultLogPath returns <user config dir>/agenda/agenda.log.
func DefaultLogPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "agenda", "agenda.log"), nil
}

// Load reads the YAML file at path. A missing file is created with defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, fmt.Errorf("write default config: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// ApplyEnv overlays values from the environment. When dotenv names an
// existing file it is loaded first; variables already set in the process win
// over the file.
func (c *Config) ApplyEnv(dotenv string) error {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", dotenv, err)
		}
	}
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	c.Normalize()
	return nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".agenda-config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
