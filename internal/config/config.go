package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Version int             `toml:"version"`
	API     APISettings     `toml:"api"`
	Links   LinkSettings    `toml:"links"`
	Paging  PageSettings    `toml:"paging"`
	Cache   CacheSettings   `toml:"cache"`
	Log     LogSettings     `toml:"log"`
	Metrics MetricsSettings `toml:"metrics"`
}

// APISettings locates the search backend
type APISettings struct {
	GroupsURL  string   `toml:"groups_url"`  // faceted search and group value paging
	EntriesURL string   `toml:"entries_url"` // record search (drill-down and full-text)
	Timeout    Duration `toml:"timeout"`
}

// LinkSettings holds fmt templates for outbound record links
type LinkSettings struct {
	Detail string `toml:"detail"`
	Figure string `toml:"figure"`
}

// PageSettings holds page sizes per scope
type PageSettings struct {
	GroupValues  int `toml:"group_values"`
	GroupEntries int `toml:"group_entries"`
	FullText     int `toml:"full_text"`
}

// CacheSettings configures the in-memory result cache
type CacheSettings struct {
	Enabled bool     `toml:"enabled"`
	TTL     Duration `toml:"ttl"`
}

// LogSettings configures the log file
type LogSettings struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsSettings configures the optional Prometheus endpoint
type MetricsSettings struct {
	Addr string `toml:"addr"` // empty disables the endpoint
}

// Duration is a time.Duration written as a string ("10s") in TOML
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	filePath string
}

// NewConfigService creates a config service rooted in the user config directory
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	return &configService{
		filePath: filepath.Join(configDir, "channelsdb", "config.toml"),
	}
}

// NewConfigServiceAt creates a config service for an explicit file
func NewConfigServiceAt(path string) ConfigService {
	return &configService{filePath: path}
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration, writing the defaults when no file exists yet
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = DefaultConfig()
		if err := cs.Save(cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	return cfg, err
}

// Save saves the configuration to the service's file
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path.
// Keys missing from the file keep their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects settings the controller cannot work with
func (c *Config) Validate() error {
	if c.Paging.GroupValues <= 0 || c.Paging.GroupEntries <= 0 || c.Paging.FullText <= 0 {
		return fmt.Errorf("page sizes must be positive: %+v", c.Paging)
	}
	if c.API.GroupsURL == "" || c.API.EntriesURL == "" {
		return errors.New("api.groups_url and api.entries_url are required")
	}
	if c.API.Timeout.Duration < 0 || c.Cache.TTL.Duration < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APISettings{
			GroupsURL:  "https://www.ebi.ac.uk/pdbe/search/channelsdb/select",
			EntriesURL: "https://www.ebi.ac.uk/pdbe/search/pdb/select",
			Timeout:    Duration{10 * time.Second},
		},
		Links: LinkSettings{
			Detail: "http://channelsdb.dominiktousek.eu/ChannelsDB/detail/%s",
			Figure: "https://webchem.ncbr.muni.cz/API/ChannelsDB/Download/%s?type=figure",
		},
		Paging: PageSettings{
			GroupValues:  6,
			GroupEntries: 6,
			FullText:     12,
		},
		Cache: CacheSettings{
			Enabled: true,
			TTL:     Duration{5 * time.Minute},
		},
		Log: LogSettings{
			File:  "channelsdb.log",
			Level: "info",
		},
	}
}
