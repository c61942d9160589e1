// =============================================================================
// eBay Order Export - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (order-export)
//   ├── processCmd (order-export process)
//   ├── validateCmd (order-export validate)
//   └── versionCmd (order-export version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables verbose logging when set to true.
var verbose bool

// log is the application logger, shared by all commands.
var log = logrus.New()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "order-export",

	Short: "eBay Order Export - Append recent marketplace orders to the merchant ledger",

	Long: `eBay Order Export fetches a merchant's recent eBay orders through the
Sell Fulfillment API, reshapes each order's line items according to the
merchant's SKU composition rules, and appends the resulting rows to the
Excel order ledger.

Orders already present in the ledger are skipped, canceled orders are
dropped, and new rows are written oldest first.

Example Usage:
  order-export process                      # Export using config.yaml settings
  order-export process --days 7 --limit 50  # Override the fetch window
  order-export validate                     # Check configuration and ledger access`,

	// PersistentPreRun configures logging before any subcommand runs.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging()
	},

	// If no subcommand is provided, print the help message.
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// Persistent flags are available to this command and all subcommands.

	// --config flag: Allows the user to specify a custom configuration file.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (default is config.yaml)",
	)

	// --verbose flag: Enables verbose/debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// configureLogging sets up the shared logrus logger. Status output stays
// plain text on the console; --verbose turns on per-stage debug detail.
func configureLogging() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:          true,
		DisableLevelTruncation: true,
	})

	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}
