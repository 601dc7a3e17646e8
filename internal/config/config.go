package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Default storage locations per driver.
const (
	DefaultFilePath   = "./data"
	DefaultSQLitePath = "./data/monthcal.db"
)

// StorageConfig selects the medium events are persisted in.
type StorageConfig struct {
	// Driver is one of "file" (default), "sqlite" or "memory".
	Driver string `yaml:"driver" json:"driver" env:"MONTHCAL_STORAGE_DRIVER"`
	// Path is a directory for "file" and a database file for "sqlite".
	Path string `yaml:"path" json:"path" env:"MONTHCAL_STORAGE_PATH"`
	// Key is the name the event collection is stored under.
	Key string `yaml:"key" json:"key"`
}

// ExportConfig controls the periodically published iCalendar file.
type ExportConfig struct {
	// Path is where the .ics file is written. Empty disables publishing.
	Path string `yaml:"path" json:"path" env:"MONTHCAL_EXPORT_PATH"`
	// Cron is a 5-field cron schedule (e.g. "*/15 * * * *").
	Cron string `yaml:"cron" json:"cron"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the web UI/API.
// Password may be plaintext or an "$argon2id$..." hash.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the web UI and API.
	Listen string `yaml:"listen" json:"listen" env:"MONTHCAL_LISTEN"`

	// Timezone is the IANA zone "today" is resolved in. Empty means the
	// host's local zone.
	Timezone string `yaml:"timezone" json:"timezone" env:"MONTHCAL_TIMEZONE"`

	// WeekStart controls the first grid column:
	//   - "sunday" (default)
	//   - "monday"
	WeekStart string `yaml:"week_start" json:"week_start" env:"MONTHCAL_WEEK_START"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level" env:"MONTHCAL_LOG_LEVEL"`

	Storage StorageConfig `yaml:"storage" json:"storage"`
	Export  ExportConfig  `yaml:"export" json:"export"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:    "127.0.0.1:8080",
		Timezone:  "",
		WeekStart: "sunday",
		LogLevel:  "info",
		Storage: StorageConfig{
			Driver: DriverFile,
			Path:   DefaultFilePath,
			Key:    "calendarEvents",
		},
		Export: ExportConfig{
			Cron: "*/15 * * * *",
		},
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	switch strings.ToLower(c.WeekStart) {
	case "sunday", "monday":
		c.WeekStart = strings.ToLower(c.WeekStart)
	default:
		// Unknown value; fall back to sunday to avoid surprising layouts.
		c.WeekStart = def.WeekStart
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}

	switch c.Storage.Driver {
	case DriverFile, DriverSQLite, DriverMemory:
	default:
		c.Storage.Driver = DriverFile
	}
	// A default path follows the driver, so switching drivers in the file
	// or through MONTHCAL_STORAGE_DRIVER never points sqlite at a directory.
	switch c.Storage.Path {
	case "", DefaultFilePath, DefaultSQLitePath:
		c.Storage.Path = defaultStoragePath(c.Storage.Driver)
	}
	if c.Storage.Key == "" {
		c.Storage.Key = def.Storage.Key
	}
	if c.Export.Cron == "" {
		c.Export.Cron = def.Export.Cron
	}
}

func defaultStoragePath(driver string) string {
	if driver == DriverSQLite {
		return DefaultSQLitePath
	}
	return DefaultFilePath
}

// WeekStartDay maps WeekStart to a time.Weekday.
func (c *Config) WeekStartDay() time.Weekday {
	if strings.EqualFold(c.WeekStart, "monday") {
		return time.Monday
	}
	return time.Sunday
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ApplyEnv overrides fields from MONTHCAL_* environment variables. Unset
// variables leave the current values alone.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	c.Normalize()
	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
//
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, cfg.ApplyEnv()
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file in the same directory, then rename) with 0600 permissions.
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
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".monthcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
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

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
