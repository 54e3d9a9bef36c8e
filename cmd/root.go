// Package cmd contains CLI command definitions
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/velotools/velocheck/internal/config"
)

var (
	// Logger is the shared logger instance for all commands
	Logger *logrus.Logger

	rootCmd = &cobra.Command{
		Use:   "velocheck",
		Short: "Velocheck - VeloCloud Orchestrator contract checker",
		Long: `Velocheck probes a VeloCloud Orchestrator and validates every payload
against the schema its API consumers rely on.

Run without arguments to launch interactive mode, or use subcommands for direct operations.`,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Load .env file if it exists
	_ = godotenv.Load()

	InitLogger()
}

// InitLogger builds the shared logger from the environment. Main calls it
// again after loading a custom --env file so LOG_LEVEL from that file takes
// effect.
func InitLogger() {
	Logger = logrus.New()

	logLevel := os.Getenv(config.EnvLogLevel)
	if logLevel == "" {
		logLevel = config.DefaultLogLevel
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		// Can't use Logger here since it might not be set up yet
		fmt.Printf("Invalid LOG_LEVEL '%s', defaulting to 'info'\n", logLevel)
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)
}
