// =============================================================================
// TORG12 Parser - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (torg12)
//   ├── parseCmd      (torg12 parse FILE)
//   ├── batchCmd      (torg12 batch)
//   ├── serveCmd      (torg12 serve)
//   ├── vocabularyCmd (torg12 vocabulary)
//   └── versionCmd    (torg12 version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the main configuration and supplier profiles
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/torg12/internal/config"
	"github.com/ginjaninja78/torg12/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose switches logging to the debug level.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "torg12",
	Short: "TORG12 Parser - Recognize Russian TORG-12 waybills in spreadsheets",

	Long: `TORG12 Parser reads TORG-12 consignment notes exported to .xls or .xlsx
by arbitrary accounting software and extracts the document number, date and
line items without relying on fixed cell positions.

Key Features:
  - Header and column recognition by wording, not by position
  - Tax rate reconciliation against a configurable whitelist
  - Per-row and per-document error reporting
  - Supplier profiles for non-standard layouts
  - JSON, XML and XLSX reports
  - Concurrent batch processing and an HTTP upload endpoint

Example Usage:
  torg12 parse invoice.xls              # Print the recognized invoice as JSON
  torg12 batch                          # Process all workbooks in the input directory
  torg12 serve                          # Start the HTTP upload endpoint
  torg12 vocabulary --config ./my.yaml  # Show the effective header vocabulary`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"torg12.yaml",
		"Path to the main configuration file; built-in defaults apply when it does not exist",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// environment is what every processing command needs.
type environment struct {
	cfg      *config.MainConfig
	profiles []*config.SupplierProfile
	logger   *zap.Logger
}

// loadEnvironment loads the configuration, the supplier profiles and builds
// the logger. The caller must Sync the logger.
func loadEnvironment() (*environment, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	profiles, err := config.LoadProfiles(cfg.ProfilesDir)
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("failed to load supplier profiles: %w", err)
	}

	logger.Debug("configuration loaded",
		zap.String("config", cfgFile),
		zap.Int("profiles", len(profiles)),
		zap.Ints("tax_rates", cfg.Parser.TaxRates),
	)

	return &environment{cfg: cfg, profiles: profiles, logger: logger}, nil
}
