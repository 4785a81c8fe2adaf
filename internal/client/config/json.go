package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/impify/internal/flagx"
	"github.com/dmitrijs2005/impify/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept strings like "30s" or integer nanoseconds.
type JsonConfig struct {
	BaseURL            string         `json:"base_url"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	DatabasePath       string         `json:"database_path"`
	PollInterval       timex.Duration `json:"poll_interval"`
	RedirectDelay      timex.Duration `json:"redirect_delay"`
	LevelUpDuration    timex.Duration `json:"level_up_duration"`
	InactivityLimit    timex.Duration `json:"inactivity_limit"`
	TokenRefreshWindow timex.Duration `json:"token_refresh_window"`
	PreviewMaxBytes    int64          `json:"preview_max_bytes"`
}

// parseJson overlays Config with values loaded from the file named by -c or
// -config. Absent keys keep their current value. Read or decode errors
// panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.BaseURL, jc.BaseURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.PollInterval, jc.PollInterval)
	setDuration(&cfg.RedirectDelay, jc.RedirectDelay)
	setDuration(&cfg.LevelUpDuration, jc.LevelUpDuration)
	setDuration(&cfg.InactivityLimit, jc.InactivityLimit)
	setDuration(&cfg.TokenRefreshWindow, jc.TokenRefreshWindow)
	if jc.PreviewMaxBytes > 0 {
		cfg.PreviewMaxBytes = jc.PreviewMaxBytes
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}
