// =============================================================================
// TORG12 Parser - Batch Command
// =============================================================================
//
// This file defines the 'batch' command, which processes every workbook in
// the input directory.
//
// COMMAND USAGE:
//   torg12 batch [flags]
//
// FLAGS:
//   --dry-run         : Recognize invoices without writing or archiving
//   --recursive       : Also scan subdirectories of the input directory
//   --clean-archives  : Remove archived files older than this age first
//   --no-progress     : Disable the progress bar
//
// PROCESSING PIPELINE:
//   1. Load configuration and supplier profiles
//   2. Discover workbooks in the input directory
//   3. Process workbooks concurrently (at most max_concurrency at once):
//      a. Select the supplier profile
//      b. Recognize the invoice
//      c. Write the report
//      d. Archive the processed files
//   4. Collect results
//   5. Write the issue log and the run summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/torg12/internal/converter"
	"github.com/ginjaninja78/torg12/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun recognizes invoices without writing reports or moving files.
var dryRun bool

// recursive scans subdirectories of the input directory too.
var recursive bool

// cleanArchivesAge removes archived files older than this before the run.
var cleanArchivesAge time.Duration

// noProgress disables the progress bar.
var noProgress bool

// =============================================================================
// BATCH COMMAND DEFINITION
// =============================================================================

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process all invoice workbooks in the input directory",
	Long: `The batch command scans the input directory for .xls and .xlsx workbooks
and recognizes each of them concurrently.

For every recognized invoice:
  - A report is written to the output directory
  - The workbook is moved to the input archive, unless the invoice has
    errors and archive_invalid is off
  - Recorded errors and warnings go to the issue log

Workbooks without a recognizable item table, or that cannot be read, stay
in the input directory and are listed as failed in the run summary.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Recognize invoices without writing reports or archiving",
	)

	batchCmd.Flags().BoolVar(
		&recursive,
		"recursive",
		false,
		"Also scan subdirectories of the input directory",
	)

	batchCmd.Flags().DurationVar(
		&cleanArchivesAge,
		"clean-archives",
		0,
		"Remove archived files older than this age before processing (e.g. 720h)",
	)

	batchCmd.Flags().BoolVar(
		&noProgress,
		"no-progress",
		false,
		"Disable the progress bar",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runBatch orchestrates one batch run.
func runBatch(stdout io.Writer) error {
	startTime := time.Now()
	runID := uuid.NewString()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.logger.Sync()

	logger := env.logger.With(zap.String("run_id", runID))
	logger.Info("batch started",
		zap.String("input_dir", env.cfg.InputDir),
		zap.Int("profiles", len(env.profiles)),
		zap.Bool("dry_run", dryRun),
	)

	fm := converter.NewFileManager(env.cfg)
	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	if cleanArchivesAge > 0 && !dryRun {
		for _, dir := range []string{env.cfg.InputArchiveDir, env.cfg.OutputArchiveDir} {
			removed, err := utils.CleanOldArchives(dir, cleanArchivesAge)
			if err != nil {
				return err
			}
			logger.Info("archives cleaned", zap.String("dir", dir), zap.Int("removed", removed))
		}
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	inputFiles, err := fm.DiscoverWorkbooks(recursive)
	if err != nil {
		return err
	}

	if len(inputFiles) == 0 {
		fmt.Fprintln(stdout, "No workbooks found in the input directory.")
		return nil
	}

	logger.Info("workbooks discovered", zap.Int("count", len(inputFiles)))

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================
	// One goroutine per file; a semaphore keeps at most max_concurrency of
	// them recognizing at the same time. With continue_on_error off, files
	// that have not started when the first failure arrives are skipped.

	bar := newProgressBar(len(inputFiles), stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	results := make(chan converter.Result, len(inputFiles))
	sem := make(chan struct{}, env.cfg.MaxConcurrency)

	for _, file := range inputFiles {
		wg.Add(1)

		go func(filePath string) {
			defer wg.Done()
			defer bar.Add(1)

			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			conv := converter.New(filePath, env.cfg, env.profiles,
				converter.WithLogger(logger.Sugar()),
				converter.WithFileManager(fm),
				converter.WithDryRun(dryRun),
			)
			result := conv.Run()
			if !result.Success && !env.cfg.ContinueOnError {
				cancel()
			}
			results <- result
		}(file)
	}

	wg.Wait()
	close(results)
	bar.Finish()

	// =========================================================================
	// STEP 4: COLLECT RESULTS
	// =========================================================================

	summary := utils.ProcessingSummary{
		RunID:      runID,
		StartTime:  startTime,
		TotalFiles: len(inputFiles),
	}
	var issues []utils.ErrorLogEntry

	for result := range results {
		issues = append(issues, result.Issues()...)

		if !result.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
				ErrorType:    result.ErrorType(),
			})
			logger.Error("workbook failed", zap.String("file", result.FilePath), zap.Error(result.Error))
			continue
		}

		if result.Stats.Valid {
			summary.SuccessfulFiles++
		} else {
			summary.InvalidFiles++
		}
		summary.TotalRows += result.Stats.Rows
		summary.TotalErrors += result.Stats.Errors
		summary.TotalWarnings += result.Stats.Warnings
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:     result.FilePath,
			OutputFile:    result.OutputFile,
			ArchivePath:   result.ArchivePath,
			InvoiceNumber: result.Invoice.Number,
			Profile:       result.Profile,
			Valid:         result.Stats.Valid,
			Rows:          result.Stats.Rows,
			Errors:        result.Stats.Errors,
			Warnings:      result.Stats.Warnings,
			ProcessTime:   result.Stats.ProcessingTime,
		})
	}
	summary.EndTime = time.Now()
	summary.SkippedFiles = summary.TotalFiles - summary.SuccessfulFiles - summary.InvalidFiles - summary.FailedFiles

	sort.Slice(summary.ProcessedFiles, func(i, j int) bool {
		return summary.ProcessedFiles[i].InputFile < summary.ProcessedFiles[j].InputFile
	})
	sort.Slice(summary.FailedFilesList, func(i, j int) bool {
		return summary.FailedFilesList[i].InputFile < summary.FailedFilesList[j].InputFile
	})
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].FileName < issues[j].FileName })

	// =========================================================================
	// STEP 5: WRITE LOGS AND PRINT SUMMARY
	// =========================================================================

	if !dryRun {
		if path, err := utils.WriteErrorLog(issues, env.cfg.OutputDir); err != nil {
			logger.Warn("failed to write issue log", zap.Error(err))
		} else if path != "" {
			logger.Info("issue log written", zap.String("path", path))
		}

		if path, err := utils.WriteSummaryLog(summary, env.cfg.OutputDir); err != nil {
			logger.Warn("failed to write summary", zap.Error(err))
		} else {
			logger.Info("summary written", zap.String("path", path))
		}
	}

	printSummary(stdout, summary)

	if summary.FailedFiles > 0 && !env.cfg.ContinueOnError {
		return fmt.Errorf("%d of %d workbooks failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// newProgressBar renders progress on stdout, or nowhere with --no-progress.
func newProgressBar(total int, stdout io.Writer) *progressbar.ProgressBar {
	if noProgress {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(stdout),
		progressbar.OptionSetDescription("Processing invoices"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
	)
}

func printSummary(w io.Writer, summary utils.ProcessingSummary) {
	fmt.Fprintln(w)
	for _, pf := range summary.ProcessedFiles {
		mark := "✓"
		if !pf.Valid {
			mark = "!"
		}
		target := pf.OutputFile
		if target == "" {
			target = "(dry run)"
		}
		fmt.Fprintf(w, "  %s %s -> %s\n", mark, filepath.Base(pf.InputFile), target)
	}
	for _, ff := range summary.FailedFilesList {
		fmt.Fprintf(w, "  ✗ %s: %s\n", filepath.Base(ff.InputFile), ff.ErrorMessage)
	}

	fmt.Fprintln(w, "\n=== Processing Complete ===")
	fmt.Fprintf(w, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(w, "Valid:           %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(w, "With errors:     %d\n", summary.InvalidFiles)
	fmt.Fprintf(w, "Failed:          %d\n", summary.FailedFiles)
	if summary.SkippedFiles > 0 {
		fmt.Fprintf(w, "Skipped:         %d\n", summary.SkippedFiles)
	}
	fmt.Fprintf(w, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))
}
