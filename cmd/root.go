package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"invoicing/internal/config"
	"invoicing/internal/logger"
)

var version = "1.0.0"

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "invoicing",
	Short: "Invoicing CLI - invoices, payments and receipts",
	Long: `Invoicing CLI prices invoices, applies payments to them and issues
receipts that attribute every payment to the invoice's line items.

Amounts are rounded to cents at every step. Reference numbers have the form
PREFIX-YYYYMMDD-NNNN and come from an in-memory or Redis-backed sequence
(SEQUENCE_BACKEND).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Invoicing CLI executed")

		fmt.Println("Welcome to Invoicing CLI!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
