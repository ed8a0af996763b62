package torg12

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the document extracted from one worksheet.
type Invoice struct {
	// Sheet is the title of the worksheet the invoice was read from.
	Sheet string `json:"sheet"`

	Number string     `json:"number,omitempty"`
	Date   *time.Time `json:"date,omitempty"`

	PriceWithoutTaxSum decimal.Decimal `json:"price_without_tax_sum"`
	PriceWithTaxSum    decimal.Decimal `json:"price_with_tax_sum"`

	// Rows holds line items in first-seen order of their printed ordinal.
	Rows []*InvoiceRow `json:"rows"`

	ErrorBag

	byNum map[int]int
}

func newInvoice(sheet string) *Invoice {
	return &Invoice{
		Sheet:              sheet,
		PriceWithoutTaxSum: decimal.Zero,
		PriceWithTaxSum:    decimal.Zero,
		Rows:               []*InvoiceRow{},
		byNum:              make(map[int]int),
	}
}

// Row returns the line item printed with ordinal num.
func (inv *Invoice) Row(num int) (*InvoiceRow, bool) {
	i, ok := inv.byNum[num]
	if !ok {
		return nil, false
	}
	return inv.Rows[i], true
}

// Clean reports whether neither the invoice nor any of its rows has errors.
func (inv *Invoice) Clean() bool {
	if !inv.IsValid() {
		return false
	}
	for _, r := range inv.Rows {
		if !r.IsValid() {
			return false
		}
	}
	return true
}

// putRow stores r under its ordinal. A repeated ordinal replaces the earlier
// row and keeps its position.
func (inv *Invoice) putRow(r *InvoiceRow) {
	if i, ok := inv.byNum[r.Num]; ok {
		inv.Rows[i] = r
		return
	}
	inv.byNum[r.Num] = len(inv.Rows)
	inv.Rows = append(inv.Rows, r)
}

// InvoiceRow is one line item.
type InvoiceRow struct {
	Num             int             `json:"num"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Cnt             int             `json:"cnt"`
	PriceWithoutTax decimal.Decimal `json:"price_without_tax"`
	PriceWithTax    decimal.Decimal `json:"price_with_tax"`
	TaxRate         int             `json:"tax_rate"`

	ErrorBag
}
