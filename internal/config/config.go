package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"interviewpro/internal/ics"
	"interviewpro/internal/intake"
	"interviewpro/internal/roster"
)

// Calendar providers accepted in CalendarConfig.Provider.
const (
	ProviderGoogle = "google"
	ProviderICS    = "ics"
)

const (
	defaultListen     = "127.0.0.1:8080"
	defaultTimezone   = "Asia/Seoul"
	defaultRefresh    = "*/15 * * * *"
	defaultWindowDays = 7
	defaultAPIKeyEnv  = "GEMINI_API_KEY"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// StorageConfig selects where the roster, drafts and question bank live.
type StorageConfig struct {
	// Backend is one of "file", "sqlite" or "memory".
	Backend string `yaml:"backend" json:"backend"`
	Path    string `yaml:"path" json:"path"`
}

// CalendarConfig describes where interview events come from.
type CalendarConfig struct {
	// Provider is "google" or "ics".
	Provider string `yaml:"provider" json:"provider"`

	// Google Calendar settings.
	CalendarID      string `yaml:"calendar_id" json:"calendar_id"`
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`
	TokenFile       string `yaml:"token_file" json:"token_file"`
	RedirectURL     string `yaml:"redirect_url" json:"redirect_url"`

	// WindowDays is the fetch window on each side of now.
	WindowDays int `yaml:"window_days" json:"window_days"`

	// ICS subscription settings.
	CacheDir string     `yaml:"cache_dir" json:"cache_dir"`
	ICS      []ics.Feed `yaml:"ics" json:"ics"`
}

// GeminiConfig configures the summarizer. The key itself is read from the
// environment variable named by APIKeyEnv and is never written to disk.
type GeminiConfig struct {
	Model     string `yaml:"model" json:"model"`
	APIKeyEnv string `yaml:"api_key_env" json:"api_key_env"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone used for week boundaries and display.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Locale selects the board labels; "ko" gives Korean labels.
	Locale string `yaml:"locale" json:"locale"`

	// RefreshCron is the calendar sync schedule (e.g. "*/15 * * * *").
	RefreshCron string `yaml:"refresh" json:"refresh"`

	Storage  StorageConfig  `yaml:"storage" json:"storage"`
	Calendar CalendarConfig `yaml:"calendar" json:"calendar"`

	// Keywords mark a calendar event as an interview.
	Keywords []string `yaml:"keywords" json:"keywords"`

	// LegacyIDs are removed from the roster on load.
	LegacyIDs []string `yaml:"legacy_ids" json:"legacy_ids"`

	Gemini GeminiConfig `yaml:"gemini" json:"gemini"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills in missing/zero values so that partially-filled configs
// still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.Locale == "" {
		c.Locale = "ko"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.Path == "" {
		switch c.Storage.Backend {
		case "sqlite":
			c.Storage.Path = "./var/interviewpro.db"
		default:
			c.Storage.Path = "./var/interviewpro.json"
		}
	}

	c.Calendar.Provider = strings.ToLower(strings.TrimSpace(c.Calendar.Provider))
	switch c.Calendar.Provider {
	case ProviderGoogle, ProviderICS:
	default:
		// Unknown or empty; Google is what the board was built around.
		c.Calendar.Provider = ProviderGoogle
	}
	if c.Calendar.CalendarID == "" {
		c.Calendar.CalendarID = "primary"
	}
	if c.Calendar.CredentialsFile == "" {
		c.Calendar.CredentialsFile = "./credentials.json"
	}
	if c.Calendar.TokenFile == "" {
		c.Calendar.TokenFile = "./var/token.json"
	}
	if c.Calendar.RedirectURL == "" {
		c.Calendar.RedirectURL = "http://" + c.Listen + "/auth/callback"
	}
	if c.Calendar.WindowDays <= 0 {
		c.Calendar.WindowDays = defaultWindowDays
	}
	if c.Calendar.CacheDir == "" {
		c.Calendar.CacheDir = "./var/ics-cache"
	}
	if c.Calendar.ICS == nil {
		c.Calendar.ICS = []ics.Feed{}
	}

	if c.Keywords == nil {
		c.Keywords = append([]string(nil), intake.DefaultKeywords...)
	}
	if c.LegacyIDs == nil {
		c.LegacyIDs = append([]string(nil), roster.DefaultLegacyIDs...)
	}
	if c.Gemini.APIKeyEnv == "" {
		c.Gemini.APIKeyEnv = defaultAPIKeyEnv
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports settings that Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	switch c.Storage.Backend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if c.Calendar.Provider == ProviderICS {
		for i, f := range c.Calendar.ICS {
			if strings.TrimSpace(f.URL) == "" {
				return fmt.Errorf("config: calendar.ics[%d] has no url", i)
			}
		}
	}
	if c.BasicAuth != nil && (c.BasicAuth.Username == "" || c.BasicAuth.Password == "") {
		return errors.New("config: basic_auth needs both username and password")
	}
	return nil
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.Local
}

// GeminiAPIKey reads the API key from the configured environment variable.
func (c *Config) GeminiAPIKey() string {
	return strings.TrimSpace(os.Getenv(c.Gemini.APIKeyEnv))
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there with 0600
// permissions and returned. Otherwise the YAML is decoded and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg anyway so the caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory with 0700.
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

	tmp, err := os.CreateTemp(dir, ".interviewpro-config-*.tmp")
	if err != nil {
		return err
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

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
