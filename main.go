// =============================================================================
// eBay Order Export - Main Entry Point
// =============================================================================
//
// This is the main entry point for the eBay Order Export CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   order-export process       - Fetch recent orders and append them to the ledger
//   order-export validate      - Validate configuration and ledger access
//   order-export version       - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/ebaytools/order-export/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
