package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"instagrampa/pkg/auth"
	"instagrampa/pkg/bot"
	"instagrampa/pkg/breaker"
	"instagrampa/pkg/config"
	"instagrampa/pkg/instagram"
	"instagrampa/pkg/ledger"
	"instagrampa/pkg/logger"
	"instagrampa/pkg/quota"
	"instagrampa/pkg/sampler"
	"instagrampa/pkg/session"
	"instagrampa/pkg/ui"
)

var (
	// Run command flags
	runUsername string
	maxPerHour  int
	maxPerDay   int
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the follow/unfollow loop",
	Long: `Start the bot: establish a browser session, unfollow accounts that do
not follow back, then scrape the configured target audiences and follow
new candidates. The loop runs until interrupted.

Credentials come from, in order:
  - The configuration file or INSTAGRAMPA_USERNAME / INSTAGRAMPA_PASSWORD
  - Stored credentials (use 'instagrampa auth login' to store)`,
	Example: `  # Run with the config file in the current directory
  instagrampa run

  # Run headless with a specific stored account
  instagrampa run --headless --username myaccount

  # Override the hourly budget
  instagrampa run --max-per-hour 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runBot()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runUsername, "username", "u", "", "account to run as (default: from config)")
	runCmd.Flags().IntVar(&maxPerHour, "max-per-hour", 0, "override max follows per hour")
	runCmd.Flags().IntVar(&maxPerDay, "max-per-day", 0, "override max follows per day")
}

func runBot() {
	cfg, err := loadRunConfig(runFlags())
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if maxPerHour > 0 {
		cfg.Quota.MaxFollowsPerHour = maxPerHour
	}
	if maxPerDay > 0 {
		cfg.Quota.MaxFollowsPerDay = maxPerDay
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logging", err.Error())
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("Instagrampa starting")

	ui.PrintInfo("Account", cfg.Account.Username)

	store, err := ledger.OpenStore(cfg.DataDir, cfg.Account.Username)
	if err != nil {
		ui.PrintError("Failed to open ledgers", err.Error())
		os.Exit(1)
	}

	sessions := session.NewStore(cfg.DataDir, cfg.Account.Username)

	browser, err := instagram.NewBrowser(instagram.BrowserOptions{
		Headless:           cfg.Browser.Headless,
		RandomizeUserAgent: cfg.Browser.RandomizeUserAgent,
		Logger:             log,
	})
	if err != nil {
		ui.PrintError("Failed to launch browser", err.Error())
		os.Exit(1)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		ui.PrintError("Failed to open page", err.Error())
		os.Exit(1)
	}
	page.SetLoadRetries(cfg.Timing.NavigationRetries)

	tracker := quota.New(cfg.Quota.MaxFollowsPerHour, cfg.Quota.MaxFollowsPerDay, cfg.Quota.ShiftHours)
	tracker.SetPollInterval(cfg.Timing.GatePollInterval)
	defer tracker.Close()

	b := bot.New(cfg, bot.Deps{
		Page:      bot.NewDriverPage(page),
		Harvester: sampler.New(log),
		Quota:     tracker,
		Ledgers:   store,
		Sessions:  sessions,
		Guard:     breaker.New(sessions, cfg.Timing.BlockCooldown, log),
		Logger:    log,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ui.PrintHighlight("[STARTING RUN]")

	if err := b.Run(ctx); err != nil {
		if ctx.Err() != nil {
			log.Info("Run interrupted, shutting down")
			ui.PrintWarning("Run interrupted")
			return
		}
		log.WithError(err).Error("Run failed")
		ui.PrintError("RUN FAILED", err.Error())
		os.Exit(1)
	}
}

// runFlags builds the flag overlay for the config merge. Only flags that
// differ from their defaults are included, so an unset flag never clobbers
// a value from the config file or the environment.
func runFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if runUsername != "" {
		flags["username"] = runUsername
	}
	if dataDir != "" {
		flags["data-dir"] = dataDir
	}
	if headless {
		flags["headless"] = true
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}
	return flags
}

// loadRunConfig layers the configuration sources, filling in credentials
// from the secure store before validation so a config file never needs to
// carry a password.
func loadRunConfig(flags map[string]interface{}) (*config.Config, error) {
	_ = godotenv.Load(".env")

	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	cfg.MergeCommandLineFlags(flags)

	if cfg.Account.Password == "" {
		if manager, err := auth.NewManager(); err == nil {
			account, err := manager.Retrieve(cfg.Account.Username)
			if err != nil {
				account, err = manager.RetrieveDefault()
			}
			if err == nil && account != nil {
				if cfg.Account.Username == "" || strings.EqualFold(cfg.Account.Username, account.Username) {
					cfg.Account.Username = account.Username
					cfg.Account.Password = account.Password
				}
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
