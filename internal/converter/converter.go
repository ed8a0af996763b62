// =============================================================================
// TORG12 Parser - Converter Module
// =============================================================================
//
// This module orchestrates the processing of a single invoice workbook, from
// profile selection to report generation.
//
// PROCESSING PIPELINE:
//   1. Select the supplier profile matching the file name
//   2. Build a recognizer with the profile applied
//   3. Recognize the invoice in the workbook
//   4. Write the report in the configured format
//   5. Archive the processed files
//
// CONCURRENCY:
//   A Converter handles exactly one file. Batch runs create one Converter
//   per file and run them in parallel; nothing is shared between them except
//   the read-only configuration and the logger.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/torg12/internal/config"
	"github.com/ginjaninja78/torg12/internal/report"
	"github.com/ginjaninja78/torg12/internal/torg12"
	"github.com/ginjaninja78/torg12/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input workbook.
	FilePath string

	// OutputFile is the path to the generated report.
	// This is empty if processing failed or on a dry run.
	OutputFile string

	// ArchivePath is where the input was moved, if it was archived.
	ArchivePath string

	// Profile is the code of the supplier profile that was applied.
	Profile string

	// Invoice is the recognized invoice. It is nil if recognition failed.
	Invoice *torg12.Invoice

	// Success indicates that an invoice was recognized and its report written.
	// An invoice with recorded errors still counts as a success; see
	// Stats.Valid.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Sheet is the name of the sheet the invoice was taken from.
	Sheet string

	// Rows is the number of accepted item rows.
	Rows int

	// Errors counts invoice-level and row-level errors.
	Errors int

	// Warnings counts invoice-level and row-level warnings.
	Warnings int

	// Valid is true when neither the invoice nor any row has errors.
	Valid bool

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// ErrorType classifies a failure for logs and summaries.
func (r Result) ErrorType() string {
	switch {
	case r.Error == nil:
		return ""
	case errors.Is(r.Error, torg12.ErrStructure):
		return "structure"
	case errors.Is(r.Error, torg12.ErrUnreadable):
		return "unreadable"
	default:
		return "output"
	}
}

// Issues flattens the recorded errors and warnings into log entries. A failed
// file yields a single entry describing the failure.
func (r Result) Issues() []utils.ErrorLogEntry {
	now := time.Now()
	name := filepath.Base(r.FilePath)

	if r.Invoice == nil {
		if r.Error == nil {
			return nil
		}
		return []utils.ErrorLogEntry{{
			Timestamp: now,
			FileName:  name,
			Level:     "failure",
			Code:      r.ErrorType(),
			Message:   r.Error.Error(),
		}}
	}

	var entries []utils.ErrorLogEntry
	add := func(level string, row int, issues map[string]string) {
		for _, issue := range sortedIssues(issues) {
			entries = append(entries, utils.ErrorLogEntry{
				Timestamp: now,
				FileName:  name,
				Level:     level,
				Code:      issue[0],
				Message:   issue[1],
				RowNumber: row,
			})
		}
	}

	add("error", 0, r.Invoice.Errors)
	add("warning", 0, r.Invoice.Warnings)
	for _, row := range r.Invoice.Rows {
		add("error", row.Num, row.Errors)
		add("warning", row.Num, row.Warnings)
	}
	return entries
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the processing of a single invoice workbook.
type Converter struct {
	// inputPath is the path to the input workbook.
	inputPath string

	// mainConfig is the main application configuration.
	mainConfig *config.MainConfig

	// profiles are the loaded supplier profiles.
	profiles []*config.SupplierProfile

	// fileManager archives processed files.
	fileManager *utils.FileManager

	// dryRun stops the pipeline after recognition.
	dryRun bool

	logger *zap.SugaredLogger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Converter) { c.logger = logger }
}

// WithFileManager sets the file manager used for archival. The default is
// built from the directories in the main configuration.
func WithFileManager(fm *utils.FileManager) Option {
	return func(c *Converter) { c.fileManager = fm }
}

// WithDryRun recognizes the invoice without writing or archiving anything.
func WithDryRun(dryRun bool) Option {
	return func(c *Converter) { c.dryRun = dryRun }
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - inputPath: The path to the input workbook.
//   - mainConfig: The main application configuration.
//   - profiles: The supplier profiles; may be empty.
//   - opts: Optional settings.
//
// RETURNS:
//   - A new Converter instance.
func New(inputPath string, mainConfig *config.MainConfig, profiles []*config.SupplierProfile, opts ...Option) *Converter {
	c := &Converter{
		inputPath:  inputPath,
		mainConfig: mainConfig,
		profiles:   profiles,
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fileManager == nil {
		c.fileManager = NewFileManager(mainConfig)
	}
	return c
}

// NewFileManager builds the file manager described by the main configuration.
func NewFileManager(mainConfig *config.MainConfig) *utils.FileManager {
	fm := utils.NewFileManager(
		mainConfig.InputDir,
		mainConfig.OutputDir,
		mainConfig.InputArchiveDir,
		mainConfig.OutputArchiveDir,
	)
	fm.ArchiveOnSuccess = mainConfig.ArchiveOnSuccess
	fm.UseTimestampSubdirs = mainConfig.ArchiveByDate
	return fm
}

// NewParser builds a recognizer for the global settings with profile applied.
// A nil profile leaves the settings unchanged.
func NewParser(base torg12.Config, profile *config.SupplierProfile, logger *zap.SugaredLogger) (*torg12.Parser, error) {
	cfg := base
	if profile != nil {
		cfg = profile.Apply(base)
	}
	return torg12.New(cfg, torg12.WithLogger(logger))
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the processing pipeline for the file.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
//
// PROCESSING STEPS:
//   1. Select the supplier profile
//   2. Build the recognizer
//   3. Recognize the invoice
//   4. Write the report
//   5. Archive the processed files
func (c *Converter) Run() Result {
	startTime := time.Now()
	result := Result{
		FilePath: c.inputPath,
		Success:  false,
	}
	log := c.logger.With("file", filepath.Base(c.inputPath))

	// =========================================================================
	// STEP 1: SELECT SUPPLIER PROFILE
	// =========================================================================
	// The first profile (ordered by code) whose patterns match the file name
	// wins. Files without a matching profile use the global settings.

	log.Infow("processing file")

	profile := config.SelectProfile(c.profiles, c.inputPath)
	if profile != nil {
		result.Profile = profile.Code
		log = log.With("profile", profile.Code)
		log.Debugw("using supplier profile", "name", profile.Name)
	}

	// =========================================================================
	// STEP 2: BUILD RECOGNIZER
	// =========================================================================

	parser, err := NewParser(c.mainConfig.Parser, profile, log)
	if err != nil {
		result.Error = fmt.Errorf("failed to build recognizer: %w", err)
		return c.finish(result, startTime)
	}

	// =========================================================================
	// STEP 3: RECOGNIZE INVOICE
	// =========================================================================
	// Structural and read errors abort the file. Everything else is recorded
	// on the invoice and its rows.

	invoice, err := parser.ParseFile(c.inputPath)
	if err != nil {
		result.Error = err
		log.Warnw("recognition failed", "error", err)
		return c.finish(result, startTime)
	}

	result.Invoice = invoice
	result.Stats = collectStats(invoice)
	log.Infow("invoice recognized",
		"sheet", invoice.Sheet,
		"number", invoice.Number,
		"rows", result.Stats.Rows,
		"errors", result.Stats.Errors,
		"warnings", result.Stats.Warnings,
	)

	if c.dryRun {
		result.Success = true
		return c.finish(result, startTime)
	}

	// =========================================================================
	// STEP 4: WRITE REPORT
	// =========================================================================

	outputPath, err := c.writeReport(invoice)
	if err != nil {
		result.Error = fmt.Errorf("failed to write report: %w", err)
		return c.finish(result, startTime)
	}

	result.OutputFile = outputPath
	result.Success = true

	// =========================================================================
	// STEP 5: ARCHIVE FILES
	// =========================================================================
	// Invoices with recorded errors stay in the input directory unless
	// archive_invalid is set. Archival problems are logged but do not fail
	// the file: the report already exists.

	if result.Stats.Valid || c.mainConfig.ArchiveInvalid {
		c.archiveFiles(&result, log)
	}

	return c.finish(result, startTime)
}

func (c *Converter) finish(result Result, startTime time.Time) Result {
	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}

// collectStats counts rows and issues on the invoice.
func collectStats(inv *torg12.Invoice) ProcessingStats {
	stats := ProcessingStats{
		Sheet:    inv.Sheet,
		Rows:     len(inv.Rows),
		Errors:   len(inv.Errors),
		Warnings: len(inv.Warnings),
	}
	for _, row := range inv.Rows {
		stats.Errors += len(row.Errors)
		stats.Warnings += len(row.Warnings)
	}
	stats.Valid = stats.Errors == 0
	return stats
}

// writeReport writes the invoice report into the output directory.
func (c *Converter) writeReport(inv *torg12.Invoice) (string, error) {
	format, err := report.ParseFormat(c.mainConfig.OutputFormat)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(c.mainConfig.OutputDir, 0755); err != nil {
		return "", err
	}

	number := inv.Number
	if number == "" {
		number = "unknown"
	}
	name := utils.GenerateOutputFileName(c.mainConfig.OutputNameFormat, format.Extension(), map[string]string{
		"original": strings.TrimSuffix(filepath.Base(c.inputPath), filepath.Ext(c.inputPath)),
		"number":   number,
	})
	outputPath := filepath.Join(c.mainConfig.OutputDir, name)

	file, err := os.Create(outputPath)
	if err != nil {
		return "", err
	}

	if err := report.Write(file, inv, format); err != nil {
		file.Close()
		os.Remove(outputPath)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}

	return outputPath, nil
}

// archiveFiles moves the input and copies the report to the archives.
func (c *Converter) archiveFiles(result *Result, log *zap.SugaredLogger) {
	archived, err := c.fileManager.ArchiveInputFile(result.FilePath)
	if err != nil {
		log.Warnw("failed to archive input", "error", err)
	} else if archived != result.FilePath {
		result.ArchivePath = archived
	}

	if _, err := c.fileManager.ArchiveOutputFile(result.OutputFile); err != nil {
		log.Warnw("failed to archive report", "error", err)
	}
}

// sortedIssues returns code/message pairs ordered by code.
func sortedIssues(m map[string]string) [][2]string {
	out := make([][2]string, 0, len(m))
	for code, msg := range m {
		out = append(out, [2]string{code, msg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
