package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the persistent application configuration
type Config struct {
	// Upstream API credentials
	Sources SourceConfig `json:"sources"`

	// UI Preferences
	UI UIConfig `json:"ui"`

	// Remote account backend, optional
	Account AccountConfig `json:"account"`
}

// SourceConfig holds credentials for the three upstream services
type SourceConfig struct {
	Reddit  RedditCredentials  `json:"reddit"`
	Booru   BooruCredentials   `json:"booru"`
	YouTube YouTubeCredentials `json:"youtube"`
}

// RedditCredentials for the OAuth2 client-credentials grant
type RedditCredentials struct {
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// BooruCredentials for the dapi endpoint
type BooruCredentials struct {
	APIKey string `json:"api_key,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

// YouTubeCredentials for the data API
type YouTubeCredentials struct {
	APIKey string `json:"api_key,omitempty"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Theme       string `json:"theme"`
	DefaultSort string `json:"default_sort"` // hot, new, top, best, rising
	MediaFilter string `json:"media_filter"` // all, images, videos, galleries
	GridColumns int    `json:"grid_columns"`
}

// AccountConfig points at the remote sync backend
type AccountConfig struct {
	BaseURL string `json:"base_url,omitempty"`
	Token   string `json:"token,omitempty"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{
			Theme:       "dark",
			DefaultSort: "hot",
			MediaFilter: "all",
			GridColumns: 3,
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mosaic", "config.json")
}

// Load reads config from disk, or returns defaults
func Load() (*Config, error) {
	path := ConfigPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults and try to auto-populate from environment
			cfg := DefaultConfig()
			cfg.AutoPopulateFromEnv()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), nil
	}

	cfg.AutoPopulateFromEnv()
	return &cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path := ConfigPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600) // Restrictive permissions for API keys
}

// AutoPopulateFromEnv fills in missing credentials from environment
// variables. Values already in the config file win.
func (c *Config) AutoPopulateFromEnv() {
	setIfEmpty(&c.Sources.Reddit.ClientID, "REDDIT_CLIENT_ID")
	setIfEmpty(&c.Sources.Reddit.ClientSecret, "REDDIT_CLIENT_SECRET")
	setIfEmpty(&c.Sources.Booru.APIKey, "BOORU_API_KEY")
	setIfEmpty(&c.Sources.Booru.UserID, "BOORU_USER_ID")
	setIfEmpty(&c.Sources.YouTube.APIKey, "YOUTUBE_API_KEY")
	setIfEmpty(&c.Account.BaseURL, "MOSAIC_ACCOUNT_URL")
	setIfEmpty(&c.Account.Token, "MOSAIC_ACCOUNT_TOKEN")
}

// HasReddit reports whether reddit credentials are configured.
func (c *Config) HasReddit() bool {
	return c.Sources.Reddit.ClientID != "" && c.Sources.Reddit.ClientSecret != ""
}

// HasBooru reports whether booru credentials are configured.
func (c *Config) HasBooru() bool {
	return c.Sources.Booru.APIKey != "" && c.Sources.Booru.UserID != ""
}

// HasYouTube reports whether a youtube API key is configured.
func (c *Config) HasYouTube() bool {
	return c.Sources.YouTube.APIKey != ""
}

// HasAccount reports whether the remote backend is configured.
func (c *Config) HasAccount() bool {
	return c.Account.BaseURL != "" && c.Account.Token != ""
}

func setIfEmpty(dst *string, envKey string) {
	if *dst == "" {
		if v := os.Getenv(envKey); v != "" {
			*dst = v
		}
	}
}
