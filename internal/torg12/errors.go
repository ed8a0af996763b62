// =============================================================================
// TORG12 Parser - Errors
// =============================================================================
//
// Two kinds of problems come out of a parse:
//
//   FATAL (returned as error, parse stops):
//     - *ReadError       : the workbook could not be opened or decoded
//     - *StructuralError : a required column header is missing on a sheet
//
//   RECORDED (collected in an ErrorBag, parse continues):
//     - invoice level    : missing number/date, tax problems, row count
//     - row level        : missing code/price, tax rate substitution, mismatch
//
// Callers distinguish fatal errors with errors.Is(err, ErrStructure) and
// errors.Is(err, ErrUnreadable), or errors.As for the details.
//
// =============================================================================

package torg12

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the two fatal outcomes.
var (
	ErrStructure  = errors.New("invoice structure not recognized")
	ErrUnreadable = errors.New("workbook unreadable")
)

// Codes recorded in ErrorBag maps.
const (
	CodeInvoiceNumber    = "invoice_number"
	CodeInvoiceDate      = "invoice_date"
	CodeTaxRate          = "tax_rate"
	CodeDiffPriceWithTax = "diff_price_with_tax"
	CodeCountRows        = "count_rows"
	CodeCode             = "code"
	CodePriceWithTax     = "price_with_tax"
)

// =============================================================================
// ERROR BAG
// =============================================================================

// ErrorBag collects non-fatal problems keyed by code. The first message
// recorded for a code is kept. A record is valid when Errors is empty;
// warnings never affect validity.
type ErrorBag struct {
	Errors   map[string]string `json:"errors,omitempty"`
	Warnings map[string]string `json:"warnings,omitempty"`
}

// AddError records an error unless one with the same code exists.
func (b *ErrorBag) AddError(code, message string) {
	if b.Errors == nil {
		b.Errors = make(map[string]string)
	}
	if _, ok := b.Errors[code]; !ok {
		b.Errors[code] = message
	}
}

// AddWarning records a warning unless one with the same code exists.
func (b *ErrorBag) AddWarning(code, message string) {
	if b.Warnings == nil {
		b.Warnings = make(map[string]string)
	}
	if _, ok := b.Warnings[code]; !ok {
		b.Warnings[code] = message
	}
}

// HasError reports whether code was recorded as an error.
func (b *ErrorBag) HasError(code string) bool {
	_, ok := b.Errors[code]
	return ok
}

// IsValid reports whether no errors were recorded.
func (b *ErrorBag) IsValid() bool {
	return len(b.Errors) == 0
}

// ErrorCodes returns the recorded error codes in sorted order.
func (b *ErrorBag) ErrorCodes() []string {
	codes := make([]string, 0, len(b.Errors))
	for code := range b.Errors {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// =============================================================================
// FATAL ERRORS
// =============================================================================

// StructuralError reports a required column that was not found on a sheet.
type StructuralError struct {
	// Sheet is the worksheet title.
	Sheet string

	// Attribute names the missing column, e.g. "code" or "cnt|cnt_place".
	Attribute string

	// Accepted lists the header texts (or patterns) that would have matched.
	Accepted []string

	// Suggestion is the header text on the sheet closest to what was
	// expected, empty when nothing resembles it.
	Suggestion string
}

func (e *StructuralError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sheet %q: required column %s not found; expected a header like %s",
		e.Sheet, e.Attribute, quoteList(e.Accepted))
	if e.Suggestion != "" {
		fmt.Fprintf(&b, " (closest header on sheet: %q)", e.Suggestion)
	}
	return b.String()
}

// Unwrap makes errors.Is(err, ErrStructure) hold.
func (e *StructuralError) Unwrap() error { return ErrStructure }

// ReadError reports a workbook that could not be opened or decoded.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read workbook %s: %v", e.Path, e.Err)
}

// Unwrap exposes both ErrUnreadable and the underlying cause.
func (e *ReadError) Unwrap() []error { return []error{ErrUnreadable, e.Err} }

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}
