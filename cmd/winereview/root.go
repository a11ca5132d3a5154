package main

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "winereview",
	Short: "Persona-tailored wine reviews backed by a prompt cache",
	Long: `winereview generates wine reviews for a newcomer, novice or connoisseur
audience. Prompts are cached in a relational store: a repeated request is
answered from the store, a new one is generated and persisted.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "optional YAML config file (environment variables take precedence)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn, error (default: $LOG_LEVEL or info)",
	)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(promptCmd)
}
