package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the bot
type Config struct {
	// Account credentials
	Account AccountConfig `yaml:"account" json:"account"`

	// Which phases run and how they behave
	Behavior BehaviorConfig `yaml:"behavior" json:"behavior"`

	// Numeric follow filters; nil disables a filter
	Policy PolicyConfig `yaml:"policy" json:"policy"`

	// Rate/quota limits and the active shift window
	Quota QuotaConfig `yaml:"quota" json:"quota"`

	// Account lists
	Targets TargetsConfig `yaml:"targets" json:"targets"`

	// Browser settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Pacing and retry timing
	Timing TimingConfig `yaml:"timing" json:"timing"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Root directory for profiles (ledgers, cookies)
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

// AccountConfig holds the operating account's credentials
type AccountConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// BehaviorConfig selects phases and per-candidate behavior
type BehaviorConfig struct {
	UnfollowNonMutual          bool `yaml:"unfollow_non_mutual" json:"unfollow_non_mutual"`
	UnfollowPreviouslyFollowed bool `yaml:"unfollow_previously_followed" json:"unfollow_previously_followed"`
	SkipManuallyFollowed       bool `yaml:"skip_manually_followed" json:"skip_manually_followed"`
	SkipPrivateAccounts        bool `yaml:"skip_private_accounts" json:"skip_private_accounts"`
	SkipEmptyAccounts          bool `yaml:"skip_empty_accounts" json:"skip_empty_accounts"`
	// UnfollowPrivateAccounts controls the divergent private-account policy:
	// when true a private account is unfollowed without a mutual-follow check,
	// when false it is skipped entirely.
	UnfollowPrivateAccounts bool `yaml:"unfollow_private_accounts" json:"unfollow_private_accounts"`
	DaysUntilUnfollow       int  `yaml:"days_until_unfollow" json:"days_until_unfollow"`
}

// PolicyConfig holds the numeric follow filters. A nil value disables the filter.
type PolicyConfig struct {
	FollowRatioMin     *float64 `yaml:"follow_ratio_min" json:"follow_ratio_min"`
	FollowRatioMax     *float64 `yaml:"follow_ratio_max" json:"follow_ratio_max"`
	FollowMinFollowers *int     `yaml:"follow_min_followers" json:"follow_min_followers"`
	FollowMinFollowing *int     `yaml:"follow_min_following" json:"follow_min_following"`
	FollowMaxFollowers *int     `yaml:"follow_max_followers" json:"follow_max_followers"`
	FollowMaxFollowing *int     `yaml:"follow_max_following" json:"follow_max_following"`
}

// QuotaConfig bounds the action rate
type QuotaConfig struct {
	MaxFollowsPerHour int `yaml:"max_follows_per_hour" json:"max_follows_per_hour"`
	MaxFollowsPerDay  int `yaml:"max_follows_per_day" json:"max_follows_per_day"`
	ShiftHours        int `yaml:"shift_hours" json:"shift_hours"`
}

// TargetsConfig holds the account lists
type TargetsConfig struct {
	AccountsToScrape    []string `yaml:"accounts_to_scrape" json:"accounts_to_scrape"`
	ProtectedAccounts   []string `yaml:"protected_accounts" json:"protected_accounts"`
	DoNotFollowAccounts []string `yaml:"do_not_follow_accounts" json:"do_not_follow_accounts"`
	SkipIfBioContains   []string `yaml:"skip_if_bio_contains" json:"skip_if_bio_contains"`
}

// BrowserConfig holds browser settings
type BrowserConfig struct {
	Headless           bool `yaml:"headless" json:"headless"`
	RandomizeUserAgent bool `yaml:"randomize_user_agent" json:"randomize_user_agent"`
}

// TimingConfig holds pacing and retry timing
type TimingConfig struct {
	// GatePollInterval is how long to sleep between quota re-checks
	GatePollInterval time.Duration `yaml:"gate_poll_interval" json:"gate_poll_interval"`
	// SleepDeviation is the multiplicative jitter applied to pacing sleeps
	SleepDeviation float64 `yaml:"sleep_deviation" json:"sleep_deviation"`
	// BlockCooldown is how long to wait after an anti-abuse block
	BlockCooldown time.Duration `yaml:"block_cooldown" json:"block_cooldown"`
	// LoginAttempts bounds the poll for the login submit control
	LoginAttempts int `yaml:"login_attempts" json:"login_attempts"`
	// NavigationRetries bounds page-load verification retries
	NavigationRetries int `yaml:"navigation_retries" json:"navigation_retries"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Behavior: BehaviorConfig{
			UnfollowNonMutual:          true,
			UnfollowPreviouslyFollowed: false,
			SkipManuallyFollowed:       true,
			SkipPrivateAccounts:        true,
			SkipEmptyAccounts:          true,
			UnfollowPrivateAccounts:    true,
			DaysUntilUnfollow:          14,
		},
		Quota: QuotaConfig{
			MaxFollowsPerHour: 20,
			MaxFollowsPerDay:  150,
			ShiftHours:        8,
		},
		Browser: BrowserConfig{
			Headless:           false,
			RandomizeUserAgent: true,
		},
		Timing: TimingConfig{
			GatePollInterval:  10 * time.Minute,
			SleepDeviation:    0.2,
			BlockCooldown:     3 * time.Hour,
			LoginAttempts:     10,
			NavigationRetries: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		DataDir: "./profiles",
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if username := os.Getenv("INSTAGRAMPA_USERNAME"); username != "" {
		c.Account.Username = username
	}
	if password := os.Getenv("INSTAGRAMPA_PASSWORD"); password != "" {
		c.Account.Password = password
	}
	if dataDir := os.Getenv("INSTAGRAMPA_DATA_DIR"); dataDir != "" {
		c.DataDir = dataDir
	}
	if logLevel := os.Getenv("INSTAGRAMPA_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if headless := os.Getenv("INSTAGRAMPA_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if perHour := os.Getenv("INSTAGRAMPA_MAX_FOLLOWS_PER_HOUR"); perHour != "" {
		var val int
		fmt.Sscanf(perHour, "%d", &val)
		if val > 0 {
			c.Quota.MaxFollowsPerHour = val
		}
	}
	if perDay := os.Getenv("INSTAGRAMPA_MAX_FOLLOWS_PER_DAY"); perDay != "" {
		var val int
		fmt.Sscanf(perDay, "%d", &val)
		if val > 0 {
			c.Quota.MaxFollowsPerDay = val
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".instagrampa.yaml",
		".instagrampa.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "instagrampa", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "instagrampa", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".instagrampa.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Account.Username == "" {
		errs = append(errs, errors.New("account username is required"))
	}

	if c.Quota.MaxFollowsPerHour <= 0 {
		errs = append(errs, errors.New("max follows per hour must be positive"))
	}
	if c.Quota.MaxFollowsPerDay <= 0 {
		errs = append(errs, errors.New("max follows per day must be positive"))
	}
	if c.Quota.ShiftHours <= 0 || c.Quota.ShiftHours > 24 {
		errs = append(errs, errors.New("shift hours must be between 1 and 24"))
	}

	if c.Behavior.DaysUntilUnfollow < 0 {
		errs = append(errs, errors.New("days until unfollow cannot be negative"))
	}

	if c.Policy.FollowRatioMin != nil && c.Policy.FollowRatioMax != nil &&
		*c.Policy.FollowRatioMin > *c.Policy.FollowRatioMax {
		errs = append(errs, errors.New("follow ratio min cannot exceed max"))
	}
	if c.Policy.FollowMinFollowers != nil && *c.Policy.FollowMinFollowers < 0 {
		errs = append(errs, errors.New("follow min followers cannot be negative"))
	}

	if c.Timing.SleepDeviation < 0 {
		errs = append(errs, errors.New("sleep deviation cannot be negative"))
	}
	if c.Timing.LoginAttempts <= 0 {
		errs = append(errs, errors.New("login attempts must be positive"))
	}

	if c.DataDir == "" {
		errs = append(errs, errors.New("data directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// IsProtected reports whether an account is in the protected list
func (c *Config) IsProtected(account string) bool {
	return contains(c.Targets.ProtectedAccounts, account)
}

// IsIgnored reports whether an account is in the do-not-follow list
func (c *Config) IsIgnored(account string) bool {
	return contains(c.Targets.DoNotFollowAccounts, account)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if username, ok := flags["username"].(string); ok && username != "" {
		c.Account.Username = username
	}
	if dataDir, ok := flags["data-dir"].(string); ok && dataDir != "" {
		c.DataDir = dataDir
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".instagrampa.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
