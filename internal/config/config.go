// Package config reads the bot settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	KEY_TOKEN                 = "TOKEN"
	KEY_CLIENT_ID             = "CLIENT_ID"
	KEY_GUILD_ID              = "GUILD_ID"
	KEY_BATTLEMETRICS_TOKEN   = "BATTLEMETRICS_TOKEN"
	KEY_BATTLEMETRICS_URL     = "BATTLEMETRICS_URL"
	KEY_REQUEST_TIMEOUT_MS    = "BM_REQUEST_TIMEOUT_MS"
	KEY_REQUEST_DELAY_MS      = "BM_REQUEST_DELAY_MS"
	KEY_INTERVAL_MINUTES      = "MONITOR_INTERVAL_MINUTES"
	KEY_INITIAL_DELAY_MS      = "MONITOR_INITIAL_DELAY_MS"
	KEY_DATA_PATH             = "DATA_PATH"
	KEY_EMBEDS_DATA_FILE      = "EMBEDS_DATA_FILE"
	KEY_MONITOR_DATA_FILE     = "MONITOR_DATA_FILE"
	KEY_DEFAULT_EMBED_ICON    = "DEFAULT_EMBED_ICON"
	KEY_LOG_LEVEL             = "LOG_LEVEL"
	KEY_LOG_FORMAT            = "LOG_FORMAT"
	KEY_HTTP_ADDRESS          = "HTTP_ADDRESS"
	DEFAULT_BATTLEMETRICS_URL = "https://api.battlemetrics.com"
	DEFAULT_EMBED_ICON        = "https://cdn-icons-png.flaticon.com/512/5968/5968842.png"
)

var defaults = map[string]any{
	KEY_BATTLEMETRICS_TOKEN: "",
	KEY_BATTLEMETRICS_URL:   DEFAULT_BATTLEMETRICS_URL,
	KEY_REQUEST_TIMEOUT_MS:  15000,
	KEY_REQUEST_DELAY_MS:    600,
	KEY_INTERVAL_MINUTES:    1,
	KEY_INITIAL_DELAY_MS:    10000,
	KEY_DATA_PATH:           "./data",
	KEY_EMBEDS_DATA_FILE:    "embedsData.json",
	KEY_MONITOR_DATA_FILE:   "monitors_combined_v1.json",
	KEY_DEFAULT_EMBED_ICON:  DEFAULT_EMBED_ICON,
	KEY_LOG_LEVEL:           "info",
	KEY_LOG_FORMAT:          "console",
	KEY_HTTP_ADDRESS:        "",
}

type Config struct {
	Token    string
	ClientID string
	GuildID  string

	BattleMetricsToken string
	BattleMetricsURL   string
	RequestTimeout     time.Duration
	RequestDelay       time.Duration

	Interval     time.Duration
	InitialDelay time.Duration

	DataPath        string
	EmbedsDataFile  string
	MonitorDataFile string

	DefaultEmbedIcon string
	LogLevel         string
	LogFormat        string
	HTTPAddress      string
}

// Load reads the configuration. Variables already in the environment win
// over the ones in envFile, which may be missing.
func Load(v *viper.Viper, envFile string) (*Config, error) {

	if envFile != "" {
		err := godotenv.Load(envFile)
		switch {
		case err == nil:
			log.Debug().Msg(fmt.Sprintf("Environment loaded from %s", envFile))
		case errors.Is(err, os.ErrNotExist):
			log.Debug().Msg(fmt.Sprintf("No environment file at %s", envFile))
		default:
			return nil, fmt.Errorf("could not read environment file %s: %w", envFile, err)
		}
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}
	for _, key := range []string{KEY_TOKEN, KEY_CLIENT_ID, KEY_GUILD_ID} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	config := &Config{
		Token:              v.GetString(KEY_TOKEN),
		ClientID:           v.GetString(KEY_CLIENT_ID),
		GuildID:            v.GetString(KEY_GUILD_ID),
		BattleMetricsToken: v.GetString(KEY_BATTLEMETRICS_TOKEN),
		BattleMetricsURL:   v.GetString(KEY_BATTLEMETRICS_URL),
		RequestTimeout:     time.Duration(v.GetInt(KEY_REQUEST_TIMEOUT_MS)) * time.Millisecond,
		RequestDelay:       time.Duration(v.GetInt(KEY_REQUEST_DELAY_MS)) * time.Millisecond,
		Interval:           time.Duration(v.GetInt(KEY_INTERVAL_MINUTES)) * time.Minute,
		InitialDelay:       time.Duration(v.GetInt(KEY_INITIAL_DELAY_MS)) * time.Millisecond,
		DataPath:           v.GetString(KEY_DATA_PATH),
		EmbedsDataFile:     v.GetString(KEY_EMBEDS_DATA_FILE),
		MonitorDataFile:    v.GetString(KEY_MONITOR_DATA_FILE),
		DefaultEmbedIcon:   v.GetString(KEY_DEFAULT_EMBED_ICON),
		LogLevel:           v.GetString(KEY_LOG_LEVEL),
		LogFormat:          v.GetString(KEY_LOG_FORMAT),
		HTTPAddress:        v.GetString(KEY_HTTP_ADDRESS),
	}
	return config, nil
}

// Validate reports every problem at once
func (c *Config) Validate() error {
	var errs []error
	required := map[string]string{KEY_TOKEN: c.Token, KEY_CLIENT_ID: c.ClientID, KEY_GUILD_ID: c.GuildID}
	for _, key := range []string{KEY_TOKEN, KEY_CLIENT_ID, KEY_GUILD_ID} {
		if required[key] == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}
	positive := []struct {
		key   string
		value time.Duration
	}{
		{KEY_REQUEST_TIMEOUT_MS, c.RequestTimeout},
		{KEY_INTERVAL_MINUTES, c.Interval},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", p.key))
		}
	}
	nonNegative := []struct {
		key   string
		value time.Duration
	}{
		{KEY_REQUEST_DELAY_MS, c.RequestDelay},
		{KEY_INITIAL_DELAY_MS, c.InitialDelay},
	}
	for _, p := range nonNegative {
		if p.value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", p.key))
		}
	}
	if c.DataPath == "" {
		errs = append(errs, fmt.Errorf("%s is required", KEY_DATA_PATH))
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("%s must be console or json, got %q", KEY_LOG_FORMAT, c.LogFormat))
	}
	return errors.Join(errs...)
}

// MonitoringEnabled reports whether a BattleMetrics credential is configured
func (c *Config) MonitoringEnabled() bool {
	return c.BattleMetricsToken != ""
}

func (c *Config) MonitorDataPath() string {
	return filepath.Join(c.DataPath, c.MonitorDataFile)
}

func (c *Config) EmbedsDataPath() string {
	return filepath.Join(c.DataPath, c.EmbedsDataFile)
}
