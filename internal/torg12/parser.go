// =============================================================================
// TORG12 Parser - Invoice Assembler
// =============================================================================
//
// Entry point of the recognizer. A Parser is built once from a Config and
// can be used for any number of workbooks, also concurrently: all per-parse
// state lives in the Invoice being assembled.
//
// WORKSHEET LOOP:
//   For each sheet in workbook order a fresh Invoice is assembled:
//     1. locate document number and date
//     2. map the item table columns (missing required column => fatal)
//     3. select line item rows between headers and footer
//     4. process each row, reconcile tax
//   The first sheet that yields rows wins and gets the row count check.
//   Sheets without rows are skipped. When no sheet yields rows, the invoice
//   of the last sheet is returned.
//
// STRUCTURAL FAILURES:
//   A missing required column aborts the whole parse by default, even when
//   later sheets might be fine. Config.ContinueOnStructuralError changes
//   this to skipping the sheet.
//
// =============================================================================

package torg12

import (
	"errors"
	"fmt"
	"io"

	"github.com/ginjaninja78/torg12/internal/grid"
)

// Logger is the logging interface used by the parser.
// *zap.SugaredLogger satisfies it.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugw(string, ...interface{}) {}
func (nopLogger) Infow(string, ...interface{})  {}
func (nopLogger) Warnw(string, ...interface{})  {}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// Parser recognizes TORG-12 invoices in workbooks.
type Parser struct {
	cfg    Config
	vocab  *vocabulary
	logger Logger
}

// New compiles cfg into a Parser.
func New(cfg Config, opts ...Option) (*Parser, error) {
	if len(cfg.TaxRates) == 0 {
		return nil, errors.New("at least one allowed tax rate is required")
	}
	vocab, err := compileVocabulary(cfg.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("failed to compile vocabulary: %w", err)
	}

	p := &Parser{cfg: cfg, vocab: vocab, logger: nopLogger{}}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ParseFile opens the workbook at path and parses it.
func (p *Parser) ParseFile(path string) (*Invoice, error) {
	book, err := grid.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return p.Parse(book)
}

// ParseReader reads a workbook from r. name is used for format detection
// and error messages.
func (p *Parser) ParseReader(r io.Reader, name string) (*Invoice, error) {
	book, err := grid.OpenReader(r, name)
	if err != nil {
		return nil, &ReadError{Path: name, Err: err}
	}
	return p.Parse(book)
}

// Parse runs the worksheet loop over wb.
//
// RETURNS:
//   - the invoice of the first sheet with line items, or of the last sheet
//     tried when none has any
//   - *StructuralError when a sheet lacks a required column
func (p *Parser) Parse(wb grid.Workbook) (*Invoice, error) {
	var (
		last          *Invoice
		lastStructErr error
	)

	for _, sheet := range wb.Sheets() {
		inv, err := p.parseSheet(sheet)
		if err != nil {
			var structErr *StructuralError
			if errors.As(err, &structErr) && p.cfg.ContinueOnStructuralError {
				p.logger.Warnw("skipping sheet", "sheet", sheet.Name(), "error", err)
				lastStructErr = err
				continue
			}
			return nil, err
		}

		last = inv
		if len(inv.Rows) == 0 {
			p.logger.Debugw("no line items on sheet", "sheet", sheet.Name())
			continue
		}

		checkRowCount(inv)
		p.logger.Infow("invoice recognized",
			"sheet", inv.Sheet,
			"number", inv.Number,
			"rows", len(inv.Rows),
			"valid", inv.IsValid(),
		)
		return inv, nil
	}

	if last != nil {
		return last, nil
	}
	if lastStructErr != nil {
		return nil, lastStructErr
	}

	inv := newInvoice("")
	inv.AddError(CodeInvoiceNumber, "document number not found")
	inv.AddError(CodeInvoiceDate, "document date not found")
	return inv, nil
}

func (p *Parser) parseSheet(sheet grid.Sheet) (*Invoice, error) {
	inv := newInvoice(sheet.Name())

	header := locateHeader(sheet, p.vocab)
	if header.foundNumber {
		inv.Number = header.number
	} else {
		inv.AddError(CodeInvoiceNumber, "document number not found")
	}
	if header.foundDate {
		inv.Date = header.date
	} else {
		inv.AddError(CodeInvoiceDate, "document date not found")
	}

	cols, dataStart, err := mapColumns(sheet, header.startRow, p.vocab)
	if err != nil {
		return nil, err
	}
	p.logger.Debugw("columns mapped", "sheet", sheet.Name(), "header_row", header.startRow, "data_start", dataStart)

	rows := extractRowRange(sheet, cols, dataStart, p.vocab)
	for _, row := range rows {
		p.processRow(sheet, row, cols, inv)
	}
	return inv, nil
}

// checkRowCount flags invoices whose last ordinal differs from the number
// of rows, which points to skipped or misnumbered lines.
func checkRowCount(inv *Invoice) {
	lastRow := inv.Rows[len(inv.Rows)-1]
	if lastRow.Num != len(inv.Rows) {
		inv.AddError(CodeCountRows, fmt.Sprintf("last row number %d does not match row count %d",
			lastRow.Num, len(inv.Rows)))
	}
}
