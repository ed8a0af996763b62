// =============================================================================
// TORG12 Parser - Parse Command
// =============================================================================
//
// This file defines the 'parse' command, which recognizes a single workbook
// and prints or saves the report.
//
// COMMAND USAGE:
//   torg12 parse FILE [flags]
//
// FLAGS:
//   --format   : Report format: json (default), xml or xlsx
//   --out      : Write the report to this file instead of stdout
//   --profile  : Force a supplier profile by code
//   --strict   : Exit with an error when the invoice has recorded errors
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/torg12/internal/config"
	"github.com/ginjaninja78/torg12/internal/converter"
	"github.com/ginjaninja78/torg12/internal/report"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	parseFormat  string
	parseOut     string
	parseProfile string
	parseStrict  bool
)

// errInvalidInvoice is returned by --strict runs.
var errInvalidInvoice = errors.New("invoice has recorded errors")

// =============================================================================
// PARSE COMMAND DEFINITION
// =============================================================================

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Recognize one invoice workbook",
	Long: `The parse command recognizes the TORG-12 invoice in FILE and writes the
report to stdout or to the file given by --out.

Problems found in the invoice (missing number, unknown tax rate, price
mismatch) are part of the report and do not make the command fail unless
--strict is set. A workbook without a recognizable item table is an error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "json", "Report format: json, xml or xlsx")
	parseCmd.Flags().StringVarP(&parseOut, "out", "o", "", "Write the report to this file instead of stdout")
	parseCmd.Flags().StringVar(&parseProfile, "profile", "", "Force a supplier profile by code")
	parseCmd.Flags().BoolVar(&parseStrict, "strict", false, "Fail when the invoice has recorded errors")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runParse(path string, stdout io.Writer) error {
	format, err := report.ParseFormat(parseFormat)
	if err != nil {
		return err
	}
	if format == report.FormatXLSX && parseOut == "" {
		return fmt.Errorf("the xlsx format needs --out")
	}

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.logger.Sync()

	profile, err := pickProfile(env.profiles, parseProfile, path)
	if err != nil {
		return err
	}
	if profile != nil {
		env.logger.Debug("using supplier profile", zap.String("profile", profile.Code))
	}

	parser, err := converter.NewParser(env.cfg.Parser, profile, env.logger.Sugar())
	if err != nil {
		return err
	}

	invoice, err := parser.ParseFile(path)
	if err != nil {
		return err
	}

	out := stdout
	if parseOut != "" {
		file, err := os.Create(parseOut)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer file.Close()
		out = file
	}

	if err := report.Write(out, invoice, format); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if parseStrict && !invoice.Clean() {
		return errInvalidInvoice
	}
	return nil
}

// pickProfile returns the profile with the given code, or the one matching
// the file name when code is empty.
func pickProfile(profiles []*config.SupplierProfile, code, path string) (*config.SupplierProfile, error) {
	if code == "" {
		return config.SelectProfile(profiles, path), nil
	}
	if p := config.ProfileByCode(profiles, code); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("unknown supplier profile %q", code)
}
