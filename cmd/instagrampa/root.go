package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"instagrampa/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	dataDir    string
	headless   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "instagrampa",
	Short: "An Instagram follow management bot",
	Long: `Instagrampa grows an Instagram account by scraping the followers of
target audiences, following the ones that pass your filters, and
unfollowing accounts that never follow back.

Features:
  - Real browser sessions that survive restarts
  - Hourly, daily and shift-based action budgets with human pacing
  - Follower-ratio and bio-keyword candidate filters
  - Per-account ledgers so nobody is ever followed twice
  - Automatic stand-down when Instagram blocks an action
  - Secure credential storage using the system keychain`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Name() != "version" && cmd.Name() != "help" && cmd.Name() != "completion" {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .instagrampa.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for per-account ledgers and sessions")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", false, "run the browser without a window")

	rootCmd.SetVersionTemplate(`Instagrampa {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
