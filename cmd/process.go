// =============================================================================
// eBay Order Export - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the full export: fetch
// recent orders, reshape them, and append the new rows to the ledger.
//
// COMMAND USAGE:
//   order-export process [flags]
//
// FLAGS:
//   --days        : How many days back the order window reaches
//   --limit       : Maximum number of orders to list
//   --excel       : Path to the ledger workbook
//   --sheet       : Worksheet name inside the workbook
//   --token-file  : File holding the OAuth access token
//   --dry-run     : Run everything except the ledger write
//
// PROCESSING PIPELINE:
//   1. Load configuration and merge command-line flags
//   2. Resolve the access token
//   3. Open the ledger workbook (file and worksheet must exist)
//   4. Back up the workbook
//   5. Run the pipeline: fetch -> normalize -> filter -> sort -> transform
//      -> dedup -> write
//   6. Print the run summary and optionally write a run log
//
// =============================================================================

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ebaytools/order-export/internal/config"
	"github.com/ebaytools/order-export/internal/ebay"
	"github.com/ebaytools/order-export/internal/ledger"
	"github.com/ebaytools/order-export/internal/pipeline"
	"github.com/ebaytools/order-export/internal/sku"
	"github.com/ebaytools/order-export/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// days is how many days back the order window reaches.
var days int

// limit is the maximum number of orders the bulk listing may return.
var limit int

// excelPath is the path to the ledger workbook.
var excelPath string

// sheetName is the worksheet name inside the workbook.
var sheetName string

// tokenFile is an optional file holding the OAuth access token.
var tokenFile string

// dryRun runs every stage except the ledger write.
var dryRun bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Fetch recent orders and append them to the ledger",
	Long: `The process command fetches the merchant's eBay orders created in the last
N days, drops canceled orders, sorts the rest oldest first, applies the SKU
composition rules, and appends the rows of not-yet-recorded orders to the
Excel ledger.

The ledger file is fully rewritten on save. A backup copy is taken first
unless disabled in the configuration.

On error:
  - Invalid parameters and an unreadable ledger stop the run before any
    order is fetched.
  - A failed order list fetch is reported; the run finds nothing to write.
  - A failed single-order fetch skips just that order.
  - An unparseable price aborts the run.`,

	// RunE is preferred for commands that can fail, as it allows Cobra to
	// handle the error gracefully.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the process command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().IntVar(&days, "days", 0,
		"Fetch orders created in the last N days (overrides config)")
	processCmd.Flags().IntVar(&limit, "limit", 0,
		"Maximum number of orders to list (overrides config)")
	processCmd.Flags().StringVar(&excelPath, "excel", "",
		"Path to the ledger workbook (overrides config)")
	processCmd.Flags().StringVar(&sheetName, "sheet", "",
		"Worksheet name inside the workbook (overrides config)")
	processCmd.Flags().StringVar(&tokenFile, "token-file", "",
		"File holding the OAuth access token (otherwise EBAY_ACCESS_TOKEN)")
	processCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Run everything except the ledger write")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess orchestrates one export run.
func runProcess(cmd *cobra.Command) error {
	startTime := time.Now()
	runID := utils.ShortID()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION AND MERGE FLAGS
	// =========================================================================

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	mergeFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: RESOLVE THE ACCESS TOKEN
	// =========================================================================

	token, err := config.ResolveToken(tokenFile)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 3: OPEN THE LEDGER
	// =========================================================================
	// File and worksheet existence are checked before anything is fetched.

	led, err := ledger.Open(cfg.LedgerPath, cfg.WorksheetName)
	if err != nil {
		return err
	}
	defer led.Close()

	// =========================================================================
	// STEP 4: BACK UP THE WORKBOOK
	// =========================================================================

	if !dryRun && !cfg.DisableBackup {
		backupPath, err := utils.BackupFile(cfg.LedgerPath)
		if err != nil {
			return err
		}
		log.Infof("Ledger backed up to %s", backupPath)
	}

	// =========================================================================
	// STEP 5: RUN THE PIPELINE
	// =========================================================================

	log.Infof("Processing orders of the last %d day(s) (run %s)", cfg.Days, runID)

	now := time.Now().UTC().Truncate(time.Second)
	from := now.Add(-time.Duration(cfg.Days) * 24 * time.Hour)

	client := ebay.NewClient(cfg.APIBaseURL, token,
		time.Duration(cfg.HTTPTimeoutSeconds)*time.Second)
	transformer := sku.NewTransformer(sku.DefaultRuleSet())

	p := pipeline.New(client, led, transformer, log, dryRun)
	result := p.Run(from, now, cfg.Limit)

	// =========================================================================
	// STEP 6: SUMMARY AND RUN LOG
	// =========================================================================

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Orders listed:     %d\n", result.Stats.OrdersListed)
	fmt.Printf("Detail errors:     %d\n", result.Stats.DetailErrors)
	fmt.Printf("Line items:        %d\n", result.Stats.LineItems)
	fmt.Printf("Canceled removed:  %d\n", result.Stats.Canceled)
	fmt.Printf("Rows transformed:  %d\n", result.Stats.RowsTransformed)
	fmt.Printf("Duplicates:        %d\n", result.Stats.Duplicates)
	fmt.Printf("Rows written:      %d\n", result.Stats.RowsWritten)
	fmt.Printf("Time elapsed:      %s\n", time.Since(startTime))

	if cfg.RunLogDir != "" {
		summary := utils.RunSummary{
			RunID:           runID,
			StartedAt:       startTime,
			FinishedAt:      time.Now(),
			DryRun:          dryRun,
			Success:         result.Success,
			OrdersListed:    result.Stats.OrdersListed,
			DetailErrors:    result.Stats.DetailErrors,
			LineItems:       result.Stats.LineItems,
			Canceled:        result.Stats.Canceled,
			RowsTransformed: result.Stats.RowsTransformed,
			Duplicates:      result.Stats.Duplicates,
			RowsWritten:     result.Stats.RowsWritten,
		}
		if result.Error != nil {
			summary.Error = result.Error.Error()
		}
		if logPath, err := utils.WriteRunLog(cfg.RunLogDir, summary); err != nil {
			log.Warnf("Could not write run log: %v", err)
		} else {
			log.Debugf("Run log written to %s", logPath)
		}
	}

	return result.Error
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// mergeFlags overlays command-line flags onto the loaded configuration.
// Only flags the user actually set override the file values.
func mergeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("days") {
		cfg.Days = days
	}
	if cmd.Flags().Changed("limit") {
		cfg.Limit = limit
	}
	if cmd.Flags().Changed("excel") {
		cfg.LedgerPath = excelPath
	}
	if cmd.Flags().Changed("sheet") {
		cfg.WorksheetName = sheetName
	}
}
