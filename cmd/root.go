package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thesrcielos/PadelTracker/pkg/config"
	"github.com/thesrcielos/PadelTracker/pkg/logger"
)

var (
	configPath string
	cfg        *config.Config
	log        *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "padeltracker",
	Short: "Padel player tracking dashboard backend",
	Long: `PadelTracker serves the player dashboard: accounts and sessions, match
history with statistics, monthly performance and skill ratings.

  $ padeltracker migrate    # create or update the database tables
  $ padeltracker serve      # REST API, dashboard websocket and refresh sweep`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		log, err = logger.New(logger.Config{
			Level:       cfg.LogLevel,
			Environment: cfg.Environment,
			ServiceName: cfg.ServiceName,
		})
		if err != nil {
			return fmt.Errorf("error creating logger: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if log != nil {
			_ = log.Sync()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (yaml, json or toml)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}
