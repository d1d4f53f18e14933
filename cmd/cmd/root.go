package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"xscout/cmd/handlers"
	"xscout/internal/config"
	"xscout/internal/logger"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "xscout",
	Short: "xscout turns raw X/Twitter search results into Telegram reply digests",
	Long: `xscout processes candidate tweets collected by a search job: it
classifies them, filters out noise and already-handled authors, scores and
ranks the survivors, drafts two reply variants per selection, and delivers an
approval digest to Telegram.

Examples:
  xscout process data/fire-patrol-candidates.json
  xscout process --preview data/brand-building-candidates.json
  xscout calibrate data/raw-search-results.json
  xscout report --days 7 --send`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.xscout.yaml)")

	rootCmd.AddCommand(handlers.NewProcessCmd())
	rootCmd.AddCommand(handlers.NewReportCmd())
	rootCmd.AddCommand(handlers.NewCalibrateCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	cobra.CheckErr(err)
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
}
