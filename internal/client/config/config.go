package config

import "time"

// Config holds runtime settings for the Impify CLI.
//
// BaseURL is the server root; API calls go to BaseURL + "/api".
// RequestTimeout applies to every API request. The remaining durations drive
// client-side timers.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	DatabasePath   string
	PollInterval   time.Duration

	RedirectDelay      time.Duration
	LevelUpDuration    time.Duration
	InactivityLimit    time.Duration
	TokenRefreshWindow time.Duration
	PreviewMaxBytes    int64
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:5000"
	c.RequestTimeout = 30 * time.Second
	c.DatabasePath = "impify.db"
	c.PollInterval = 60 * time.Second
	c.RedirectDelay = 2500 * time.Millisecond
	c.LevelUpDuration = 3 * time.Second
	c.InactivityLimit = 30 * time.Minute
	c.TokenRefreshWindow = 24 * time.Hour
	c.PreviewMaxBytes = 500 * 1024
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
