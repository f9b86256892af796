package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/intake/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "intake",
	Short: "intake is a conversational form agent",
	Long: `intake guides chat users through a configurable questionnaire, lets them
go back and correct answers, and delivers every confirmed request to an
operator notification and an append-only ledger.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringSlice("env-file", []string{".env"}, "Dotenv files to load before reading the environment")
	rootCmd.PersistentFlags().String("form", "", "Form definition YAML (overrides FORM_FILE)")
	rootCmd.PersistentFlags().String("ledger", "", "Ledger backend: sheets, sqlite, redis or memory (overrides LEDGER_BACKEND)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides LOG_LEVEL)")
}

// loadConfig reads the environment and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("form") {
		cfg.FormFile, _ = cmd.Flags().GetString("form")
	}
	if cmd.Flags().Changed("ledger") {
		cfg.LedgerBackend, _ = cmd.Flags().GetString("ledger")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	return cfg, nil
}
