// =============================================================================
// TORG12 Parser - Main Entry Point
// =============================================================================
//
// This is the main entry point for the TORG12 Parser CLI application. It
// delegates command execution to the cmd package.
//
// USAGE:
//   torg12 parse FILE       - Recognize one workbook and print the report
//   torg12 batch            - Process all workbooks in the input directory
//   torg12 serve            - Start the HTTP upload endpoint
//   torg12 vocabulary       - Print the effective header vocabulary
//   torg12 version          - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Recognition, configuration, reports and the HTTP API
//   - pkg/           : Shared file management utilities
//   - profiles/      : Supplier-specific YAML profiles
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/torg12/cmd"
)

func main() {
	cmd.Execute()
}
