// =============================================================================
// eBay Order Export - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration,
// the credential, and the ledger workbook without contacting the API or
// writing anything. Useful before a first run or after moving the ledger.
//
// COMMAND USAGE:
//   order-export validate [flags]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ebaytools/order-export/internal/config"
	"github.com/ebaytools/order-export/internal/ledger"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and ledger access without processing",
	Long: `The validate command runs every pre-flight check of the process command
and then stops: configuration completeness, access token presence, ledger
file and worksheet existence, and a scan of the recorded order identifiers.

No API call is made and the ledger is not modified.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

// init registers the validate command and reuses the ledger/token flags of
// the process command so both can be checked the same way they would run.
func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&excelPath, "excel", "",
		"Path to the ledger workbook (overrides config)")
	validateCmd.Flags().StringVar(&sheetName, "sheet", "",
		"Worksheet name inside the workbook (overrides config)")
	validateCmd.Flags().StringVar(&tokenFile, "token-file", "",
		"File holding the OAuth access token (otherwise EBAY_ACCESS_TOKEN)")
}

// runValidate performs the pre-flight checks.
func runValidate(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	mergeFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Println("Configuration:    OK")

	// The token is required for a real run; report but keep checking so the
	// user sees every problem at once.
	if _, err := config.ResolveToken(tokenFile); err != nil {
		fmt.Printf("Access token:     MISSING (%v)\n", err)
	} else {
		fmt.Println("Access token:     OK")
	}

	led, err := ledger.Open(cfg.LedgerPath, cfg.WorksheetName)
	if err != nil {
		return err
	}
	defer led.Close()
	fmt.Println("Ledger workbook:  OK")

	ids, err := led.OrderIDs()
	if err != nil {
		return err
	}
	fmt.Printf("Recorded orders:  %d\n", len(ids))

	return nil
}
