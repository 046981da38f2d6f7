package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unset clears keys for the test and again once it finishes, since
// godotenv writes straight into the process environment
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		require.NoError(t, os.Unsetenv(key))
	}
	t.Cleanup(func() {
		for _, key := range keys {
			os.Unsetenv(key)
		}
	})
}

func allKeys() []string {
	keys := []string{KEY_TOKEN, KEY_CLIENT_ID, KEY_GUILD_ID}
	for key := range defaults {
		keys = append(keys, key)
	}
	return keys
}

func TestDefaults(t *testing.T) {
	unset(t, allKeys()...)
	t.Setenv(KEY_TOKEN, "token")
	t.Setenv(KEY_CLIENT_ID, "client")
	t.Setenv(KEY_GUILD_ID, "guild")

	config, err := Load(viper.New(), "")
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, &Config{
		Token:            "token",
		ClientID:         "client",
		GuildID:          "guild",
		BattleMetricsURL: DEFAULT_BATTLEMETRICS_URL,
		RequestTimeout:   15 * time.Second,
		RequestDelay:     600 * time.Millisecond,
		Interval:         time.Minute,
		InitialDelay:     10 * time.Second,
		DataPath:         "./data",
		EmbedsDataFile:   "embedsData.json",
		MonitorDataFile:  "monitors_combined_v1.json",
		DefaultEmbedIcon: DEFAULT_EMBED_ICON,
		LogLevel:         "info",
		LogFormat:        "console",
	}, config)
	assert.False(t, config.MonitoringEnabled())
	assert.Equal(t, filepath.Join("data", "monitors_combined_v1.json"), config.MonitorDataPath())
	assert.Equal(t, filepath.Join("data", "embedsData.json"), config.EmbedsDataPath())
}

func TestEnvironmentFile(t *testing.T) {
	unset(t, allKeys()...)
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "TOKEN=from-file\nCLIENT_ID=client\nGUILD_ID=guild\nBATTLEMETRICS_TOKEN=bm\nMONITOR_INTERVAL_MINUTES=5\nBM_REQUEST_DELAY_MS=250\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0600))
	// The environment wins over the file
	t.Setenv(KEY_TOKEN, "from-env")

	config, err := Load(viper.New(), envFile)
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, "from-env", config.Token)
	assert.Equal(t, "bm", config.BattleMetricsToken)
	assert.True(t, config.MonitoringEnabled())
	assert.Equal(t, 5*time.Minute, config.Interval)
	assert.Equal(t, 250*time.Millisecond, config.RequestDelay)
}

func TestMissingEnvironmentFile(t *testing.T) {
	unset(t, allKeys()...)

	config, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Empty(t, config.Token)
}

func TestValidate(t *testing.T) {
	unset(t, allKeys()...)
	t.Setenv(KEY_INTERVAL_MINUTES, "0")
	t.Setenv(KEY_INITIAL_DELAY_MS, "-1")
	t.Setenv(KEY_LOG_FORMAT, "xml")

	config, err := Load(viper.New(), "")
	require.NoError(t, err)

	err = config.Validate()
	require.Error(t, err)
	for _, expected := range []string{
		"TOKEN is required",
		"CLIENT_ID is required",
		"GUILD_ID is required",
		"MONITOR_INTERVAL_MINUTES must be positive",
		"MONITOR_INITIAL_DELAY_MS must not be negative",
		`LOG_FORMAT must be console or json, got "xml"`,
	} {
		assert.Contains(t, err.Error(), expected)
	}
}
