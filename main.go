// =============================================================================
// Offer Document Generator - Main Entry Point
// =============================================================================
//
// This is the main entry point of the offer document generator. It reads
// candidate data from a workbook and writes, per candidate, an offer letter
// and an interview-approval form from two Word templates.
//
// USAGE:
//   offer-docgen              - Generate documents (same as "generate")
//   offer-docgen generate     - Generate documents
//   offer-docgen version      - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra) and console output
//   - internal/      : Table loading, binding, joining, rendering, batch driver
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/offer-docgen/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
