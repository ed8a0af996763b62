// =============================================================================
// TORG12 Parser - Report Writers
// =============================================================================
//
// Renders a recognized invoice for downstream systems. All formats carry the
// same content: document fields, totals, validity, line items, and the error
// and warning trail at invoice and row level.
//
// FORMATS:
//   - json : machine-readable, default for the CLI and HTTP API
//   - xml  : for accounting systems that import XML
//   - xlsx : for people reviewing rejected invoices
//
// =============================================================================

package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/torg12/internal/torg12"
)

// Format is a report encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatXML, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unknown report format %q (want json, xml or xlsx)", s)
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type used when serving the report.
func (f Format) ContentType() string {
	switch f {
	case FormatXML:
		return "application/xml; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json; charset=utf-8"
}

// Write renders inv to w in the given format.
func Write(w io.Writer, inv *torg12.Invoice, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, inv)
	case FormatXML:
		return WriteXML(w, inv)
	case FormatXLSX:
		return WriteXLSX(w, inv)
	}
	return fmt.Errorf("unknown report format %q", f)
}

// =============================================================================
// SHARED VIEW
// =============================================================================

// Issue is one recorded error or warning.
type Issue struct {
	Code    string `json:"code" xml:"code,attr"`
	Message string `json:"message" xml:",chardata"`
}

// RowView is the rendered form of a line item.
type RowView struct {
	Num             int             `json:"num"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Cnt             int             `json:"cnt"`
	PriceWithoutTax decimal.Decimal `json:"price_without_tax"`
	PriceWithTax    decimal.Decimal `json:"price_with_tax"`
	TaxRate         int             `json:"tax_rate"`
	Valid           bool            `json:"valid"`
	Errors          []Issue         `json:"errors,omitempty"`
	Warnings        []Issue         `json:"warnings,omitempty"`
}

// InvoiceView is the rendered form of an invoice. Dates are ISO 8601 and
// issue lists are sorted by code so output is stable.
type InvoiceView struct {
	Sheet              string          `json:"sheet"`
	Number             string          `json:"number"`
	Date               string          `json:"date,omitempty"`
	Valid              bool            `json:"valid"`
	PriceWithoutTaxSum decimal.Decimal `json:"price_without_tax_sum"`
	PriceWithTaxSum    decimal.Decimal `json:"price_with_tax_sum"`
	Rows               []RowView       `json:"rows"`
	Errors             []Issue         `json:"errors,omitempty"`
	Warnings           []Issue         `json:"warnings,omitempty"`
}

// NewView converts an invoice into its rendered form.
func NewView(inv *torg12.Invoice) InvoiceView {
	v := InvoiceView{
		Sheet:              inv.Sheet,
		Number:             inv.Number,
		Valid:              inv.IsValid(),
		PriceWithoutTaxSum: inv.PriceWithoutTaxSum,
		PriceWithTaxSum:    inv.PriceWithTaxSum,
		Rows:               make([]RowView, 0, len(inv.Rows)),
		Errors:             issues(inv.Errors),
		Warnings:           issues(inv.Warnings),
	}
	if inv.Date != nil {
		v.Date = inv.Date.Format("2006-01-02")
	}
	for _, r := range inv.Rows {
		v.Rows = append(v.Rows, RowView{
			Num:             r.Num,
			Code:            r.Code,
			Name:            r.Name,
			Cnt:             r.Cnt,
			PriceWithoutTax: r.PriceWithoutTax,
			PriceWithTax:    r.PriceWithTax,
			TaxRate:         r.TaxRate,
			Valid:           r.IsValid(),
			Errors:          issues(r.Errors),
			Warnings:        issues(r.Warnings),
		})
	}
	return v
}

func issues(m map[string]string) []Issue {
	if len(m) == 0 {
		return nil
	}
	out := make([]Issue, 0, len(m))
	for code, msg := range m {
		out = append(out, Issue{Code: code, Message: msg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
