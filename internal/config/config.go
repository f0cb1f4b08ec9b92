package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	OMDb    OMDbConfig    `mapstructure:"omdb"`
	Session SessionConfig `mapstructure:"session"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Browser BrowserConfig `mapstructure:"browser"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// BackendConfig holds the remote list store configuration
type BackendConfig struct {
	URL        string        `mapstructure:"url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"` // Negative disables retries
}

// OMDbConfig holds the metadata provider configuration
type OMDbConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig holds the persisted credential. An empty token means guest.
type SessionConfig struct {
	Token    string `mapstructure:"token"`
	Username string `mapstructure:"username"` // Display only
}

// CacheConfig holds the notes cache location
type CacheConfig struct {
	Path string `mapstructure:"path"` // Empty keeps notes in memory only
}

// BrowserConfig holds the program used to open links
type BrowserConfig struct {
	Command string   `mapstructure:"command"` // Empty uses the system default
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:        "http://localhost:8000",
			Timeout:    15 * time.Second,
			MaxRetries: 2,
		},
		OMDb: OMDbConfig{
			URL:     "https://www.omdbapi.com/",
			Timeout: 15 * time.Second,
		},
		Cache: CacheConfig{
			Path: defaultCachePath(),
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// dataDir returns the per-user data directory for the current OS
func dataDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "cinelist")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "cinelist")
	}
}

func defaultLogPath() string {
	return filepath.Join(dataDir(), "cinelist.log")
}

func defaultCachePath() string {
	return filepath.Join(dataDir(), "cache")
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "cinelist")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "cinelist")
	}
}

// Loader reads and writes config.yaml in one directory
type Loader struct {
	dir string
	v   *viper.Viper
}

// NewLoader creates a loader for dir. An empty dir uses DefaultConfigDir.
func NewLoader(dir string) *Loader {
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Loader{dir: dir, v: viper.New()}
}

// Path returns the config file the loader writes
func (l *Loader) Path() string {
	return filepath.Join(l.dir, "config.yaml")
}

// Load reads configuration from file and environment
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()
	v := l.v

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(l.dir)

	setDefaults(v, cfg)

	// Environment variable overrides, e.g. CINELIST_BACKEND_URL
	v.SetEnvPrefix("CINELIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("backend.url", cfg.Backend.URL)
	v.SetDefault("backend.timeout", cfg.Backend.Timeout)
	v.SetDefault("backend.max_retries", cfg.Backend.MaxRetries)
	v.SetDefault("omdb.url", cfg.OMDb.URL)
	v.SetDefault("omdb.api_key", cfg.OMDb.APIKey)
	v.SetDefault("omdb.timeout", cfg.OMDb.Timeout)
	v.SetDefault("session.token", cfg.Session.Token)
	v.SetDefault("session.username", cfg.Session.Username)
	v.SetDefault("cache.path", cfg.Cache.Path)
	v.SetDefault("browser.command", cfg.Browser.Command)
	v.SetDefault("browser.args", cfg.Browser.Args)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// Save writes the full configuration to file
func (l *Loader) Save(cfg *Config) error {
	// Set fields individually to ensure correct key names (snake_case)
	l.v.Set("backend.url", cfg.Backend.URL)
	l.v.Set("backend.timeout", cfg.Backend.Timeout.String())
	l.v.Set("backend.max_retries", cfg.Backend.MaxRetries)

	l.v.Set("omdb.url", cfg.OMDb.URL)
	l.v.Set("omdb.api_key", cfg.OMDb.APIKey)
	l.v.Set("omdb.timeout", cfg.OMDb.Timeout.String())

	l.v.Set("session.token", cfg.Session.Token)
	l.v.Set("session.username", cfg.Session.Username)

	l.v.Set("cache.path", cfg.Cache.Path)

	l.v.Set("browser.command", cfg.Browser.Command)
	l.v.Set("browser.args", cfg.Browser.Args)

	l.v.Set("logging.file", cfg.Logging.File)
	l.v.Set("logging.level", cfg.Logging.Level)

	return l.write()
}

// SaveSession updates just the credential in the configuration
func (l *Loader) SaveSession(token, username string) error {
	l.v.Set("session.token", token)
	l.v.Set("session.username", username)
	return l.write()
}

// ClearSession removes the credential while preserving other settings
func (l *Loader) ClearSession() error {
	return l.SaveSession("", "")
}

func (l *Loader) write() error {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	// The file can hold a bearer token
	if err := l.v.WriteConfigAs(l.Path()); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(l.Path(), 0600); err != nil {
		return fmt.Errorf("failed to restrict config file: %w", err)
	}
	return nil
}

// IsAuthenticated returns true if a credential is stored
func (c *Config) IsAuthenticated() bool {
	return c.Session.Token != ""
}
