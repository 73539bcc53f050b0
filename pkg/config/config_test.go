package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Behavior.UnfollowNonMutual)
	assert.True(t, cfg.Behavior.UnfollowPrivateAccounts)
	assert.Equal(t, 14, cfg.Behavior.DaysUntilUnfollow)
	assert.Equal(t, 20, cfg.Quota.MaxFollowsPerHour)
	assert.Equal(t, 150, cfg.Quota.MaxFollowsPerDay)
	assert.Equal(t, 8, cfg.Quota.ShiftHours)
	assert.Equal(t, 10*time.Minute, cfg.Timing.GatePollInterval)
	assert.Equal(t, 3*time.Hour, cfg.Timing.BlockCooldown)

	// Filters are disabled by default
	assert.Nil(t, cfg.Policy.FollowRatioMin)
	assert.Nil(t, cfg.Policy.FollowMinFollowers)
}

func TestValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.Account.Username = "grampa"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing username", func(c *Config) { c.Account.Username = "" }},
		{"zero hourly quota", func(c *Config) { c.Quota.MaxFollowsPerHour = 0 }},
		{"zero daily quota", func(c *Config) { c.Quota.MaxFollowsPerDay = 0 }},
		{"shift too long", func(c *Config) { c.Quota.ShiftHours = 25 }},
		{"negative cooldown days", func(c *Config) { c.Behavior.DaysUntilUnfollow = -1 }},
		{"inverted ratio bounds", func(c *Config) {
			lo, hi := 5.0, 0.2
			c.Policy.FollowRatioMin = &lo
			c.Policy.FollowRatioMax = &hi
		}},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Account.Username = "grampa"
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
account:
  username: grampa
quota:
  max_follows_per_hour: 5
  max_follows_per_day: 40
  shift_hours: 6
policy:
  follow_ratio_min: 0.2
  follow_ratio_max: 5.0
targets:
  accounts_to_scrape:
    - somebody
  protected_accounts:
    - bestfriend
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "grampa", cfg.Account.Username)
	assert.Equal(t, 5, cfg.Quota.MaxFollowsPerHour)
	assert.Equal(t, 6, cfg.Quota.ShiftHours)
	require.NotNil(t, cfg.Policy.FollowRatioMin)
	assert.Equal(t, 0.2, *cfg.Policy.FollowRatioMin)
	assert.Equal(t, []string{"somebody"}, cfg.Targets.AccountsToScrape)
	assert.True(t, cfg.IsProtected("bestfriend"))
	assert.False(t, cfg.IsProtected("stranger"))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("INSTAGRAMPA_USERNAME", "envuser")
	t.Setenv("INSTAGRAMPA_MAX_FOLLOWS_PER_HOUR", "7")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "envuser", cfg.Account.Username)
	assert.Equal(t, 7, cfg.Quota.MaxFollowsPerHour)
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"username": "flaguser",
		"headless": true,
	})

	assert.Equal(t, "flaguser", cfg.Account.Username)
	assert.True(t, cfg.Browser.Headless)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")

	cfg := DefaultConfig()
	cfg.Account.Username = "grampa"
	min := 100
	cfg.Policy.FollowMinFollowers = &min
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, "grampa", loaded.Account.Username)
	require.NotNil(t, loaded.Policy.FollowMinFollowers)
	assert.Equal(t, 100, *loaded.Policy.FollowMinFollowers)
}
