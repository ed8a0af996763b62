// =============================================================================
// TORG12 Parser - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version and build information.
//
// COMMAND USAGE:
//   torg12 version
//
// OUTPUT:
//   TORG12 Parser
//   Version:    0.1.0
//   Build Date: unknown
//   Go Version: go1.22.0
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version and BuildDate are overridden by release builds with
// -ldflags "-X .../cmd.Version=... -X .../cmd.BuildDate=...".
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

// =============================================================================
// VERSION COMMAND DEFINITION
// =============================================================================

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the parser version",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "TORG12 Parser")
		fmt.Fprintf(w, "Version:    %s\n", Version)
		fmt.Fprintf(w, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(w, "Go Version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
