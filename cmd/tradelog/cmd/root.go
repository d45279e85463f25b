package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradelog/config"
	"github.com/rustyeddy/tradelog/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "tradelog",
	Short: "Turn trading terminal logs into a trading journal",
	Long: `Tradelog reads the text log written by a trading terminal and rebuilds a
trading journal from it.

It provides tools for:
  - Classifying terminal log lines into order and balance events
  - Building a journal of placed, opened, closed and deleted orders
  - Attributing realised P/L to closes from balance updates
  - Exporting journals to CSV or an SQLite run store
  - Org-mode run reports

Complete documentation is available at https://github.com/rustyeddy/tradelog`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var (
	cfgFile  string
	logLevel string

	cfg *config.Config
	log = zerolog.Nop()
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// loadConfig builds cfg from the config file, the environment and flags, in
// that order, then sets up the logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.Default()
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log = logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Out:    cmd.ErrOrStderr(),
	})
	return nil
}
