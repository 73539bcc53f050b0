package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"instagrampa/pkg/config"
	"instagrampa/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Instagrampa configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (INSTAGRAMPA_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.instagrampa.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources.

The account password is masked for security.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".instagrampa.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# Instagrampa Configuration File
#
# You can also use environment variables prefixed with INSTAGRAMPA_
# For example: INSTAGRAMPA_USERNAME, INSTAGRAMPA_PASSWORD

# The account the bot runs as. Leave the password empty to use stored
# credentials ('instagrampa auth login') or environment variables.
account:
  username: "your_username"
  password: ""

# Which phases run and how each candidate is treated
behavior:
  # Unfollow accounts that do not follow back
  unfollow_non_mutual: true

  # Unfollow accounts this bot followed after the cooldown, mutual or not
  unfollow_previously_followed: false

  # Never unfollow accounts that were followed manually, outside the bot
  skip_manually_followed: true

  # Do not follow private accounts
  skip_private_accounts: true

  # Do not follow accounts with no posts
  skip_empty_accounts: true

  # Unfollow private accounts without the follows-back check (the check
  # is impossible on a private profile)
  unfollow_private_accounts: true

  # Days a followed account is left alone before it can be unfollowed
  days_until_unfollow: 14

# Numeric candidate filters. Remove a line to disable that filter.
policy:
  # Follower/following ratio bounds
  follow_ratio_min: 0.2
  follow_ratio_max: 5.0

  # Follower count bounds
  follow_min_followers: 50
  follow_max_followers: 10000

  # Following count bounds
  follow_min_following: 50
  follow_max_following: 5000

# Action budgets
quota:
  max_follows_per_hour: 20
  max_follows_per_day: 150

  # Hours per day the bot is active before clocking out
  shift_hours: 8

# Account lists
targets:
  # Audiences whose followers are scraped for candidates
  accounts_to_scrape:
    - "some_popular_account"

  # Never unfollowed
  protected_accounts: []

  # Never followed
  do_not_follow_accounts: []

  # Skip candidates whose bio contains any of these words
  skip_if_bio_contains: []

# Browser settings
browser:
  headless: false
  randomize_user_agent: true

# Pacing and retry timing
timing:
  gate_poll_interval: 10m
  sleep_deviation: 0.2
  block_cooldown: 3h
  login_attempts: 10
  navigation_retries: 10

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional, stdout only when empty)
  file: ""

# Directory for per-account ledgers and browser sessions
data_dir: "./profiles"
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file and set your account and targets")
	fmt.Println("2. Run 'instagrampa config validate' to check the configuration")
	fmt.Println("3. Store credentials with 'instagrampa auth login'")
	fmt.Println("4. Start the bot with 'instagrampa run'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	displayCfg := *cfg
	if displayCfg.Account.Password != "" {
		displayCfg.Account.Password = "********"
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (INSTAGRAMPA_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		possiblePaths := []string{
			".instagrampa.yaml",
			".instagrampa.yml",
			filepath.Join(os.Getenv("HOME"), ".instagrampa.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "instagrampa", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	warnings := []string{}
	errors := []string{}

	if cfg.Account.Password == "" {
		warnings = append(warnings, "no password in config, stored credentials or INSTAGRAMPA_PASSWORD will be used")
	}
	if len(cfg.Targets.AccountsToScrape) == 0 {
		warnings = append(warnings, "no accounts_to_scrape configured, the follow phase will be idle")
	}

	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create data directory: %v", err))
		}
	}
	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Account: %s\n", cfg.Account.Username)
	fmt.Printf("  Targets: %d account(s) to scrape\n", len(cfg.Targets.AccountsToScrape))
	fmt.Printf("  Quota: %d/hour, %d/day over a %dh shift\n",
		cfg.Quota.MaxFollowsPerHour, cfg.Quota.MaxFollowsPerDay, cfg.Quota.ShiftHours)
	fmt.Printf("  Data directory: %s\n", cfg.DataDir)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
