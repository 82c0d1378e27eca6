package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mlthieu/linkstats/internal/config"
	"github.com/mlthieu/linkstats/internal/logger"
)

// Cfg holds the loaded configuration, available to every subcommand.
var Cfg *config.Config

// RootCmd is the base command. Subcommands (run-server, create, stats,
// migrate) register themselves via their own init() functions, which keeps
// the packages decoupled and avoids import cycles.
var RootCmd = &cobra.Command{
	Use:   "linkstats",
	Short: "A URL shortener with click analytics",
	Long: `linkstats shortens URLs and tracks click analytics per link:
device, browser, country and date breakdowns for every short code.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig sets up logging and loads the configuration before any
// subcommand runs.
func initConfig() {
	logger.Initialize()

	var err error
	Cfg, err = config.LoadConfig()
	if err != nil {
		log.Warn().Err(err).Msg("problem loading configuration, using defaults")
	}
}
