// =============================================================================
// TORG12 Parser - Row Processor and Tax Reconciler
// =============================================================================
//
// Turns an accepted sheet row into an InvoiceRow and adds its amounts to the
// invoice totals.
//
// QUANTITY:
//   Read from the quantity column; when that is missing or zero, from the
//   "мест, штук" column.
//
// TAX-INCLUSIVE PRICE:
//   Read directly when a price-with-tax column exists. Otherwise derived from
//   the line total: round(total / cnt, 4).
//
// TAX RATE:
//   "%" is stripped and "без НДС" reads as 0. Rates outside the whitelist
//   are replaced by the default rate with a warning, or flagged as errors
//   and read as 0 when no default is configured. The stated tax-inclusive
//   price must always match price_without_tax * (1 + rate/100) within one
//   currency unit.
//
// =============================================================================

package torg12

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/torg12/internal/grid"
	"github.com/ginjaninja78/torg12/internal/normalize"
)

var (
	hundred      = decimal.NewFromInt(100)
	taxTolerance = decimal.NewFromInt(1)
)

// processRow extracts the line item at row and records it on inv.
func (p *Parser) processRow(sheet grid.Sheet, row int, cols *ColumnMap, inv *Invoice) *InvoiceRow {
	r := &InvoiceRow{
		Num:  normalize.Int(normalize.Value(cellText(sheet, cols.Num, row), true)),
		Code: normalize.Value(cellText(sheet, cols.Code, row), false),
		Name: normalize.Value(cellText(sheet, cols.Name, row), false),
	}
	if r.Code == "" {
		r.AddError(CodeCode, fmt.Sprintf("row %d: product code is empty", r.Num))
	}

	if cols.Cnt != nil {
		r.Cnt = normalize.Int(cellText(sheet, cols.Cnt, row))
	}
	if r.Cnt == 0 && cols.CntPlace != nil {
		r.Cnt = normalize.Int(cellText(sheet, cols.CntPlace, row))
	}
	cnt := decimal.NewFromInt(int64(r.Cnt))

	r.PriceWithoutTax = normalize.Decimal(cellText(sheet, cols.PriceWithoutTax, row))
	if !r.PriceWithoutTax.IsZero() {
		inv.PriceWithoutTaxSum = inv.PriceWithoutTaxSum.Add(r.PriceWithoutTax.Mul(cnt))
	}

	r.PriceWithTax = decimal.Zero
	switch {
	case cols.PriceWithTax != nil:
		r.PriceWithTax = normalize.Decimal(cellText(sheet, cols.PriceWithTax, row))
		inv.PriceWithTaxSum = inv.PriceWithTaxSum.Add(r.PriceWithTax.Mul(cnt))
	case cols.SumWithTax != nil:
		total := normalize.Decimal(cellText(sheet, cols.SumWithTax, row))
		if r.Cnt > 0 {
			r.PriceWithTax = total.DivRound(cnt, 4)
		}
		inv.PriceWithTaxSum = inv.PriceWithTaxSum.Add(total)
	}
	if r.PriceWithTax.IsZero() {
		r.AddError(CodePriceWithTax, fmt.Sprintf("row %d: price with tax is missing", r.Num))
	}

	p.reconcileTaxRate(r, cellText(sheet, cols.TaxRate, row), inv)
	p.checkPriceWithTax(r, inv)

	inv.putRow(r)
	return r
}

// reconcileTaxRate sets r.TaxRate to an allowed rate or the default. Without
// a default, a disallowed rate leaves it at 0.
func (p *Parser) reconcileTaxRate(r *InvoiceRow, raw string, inv *Invoice) {
	rate := p.parseTaxRate(raw)
	if slices.Contains(p.cfg.TaxRates, rate) {
		r.TaxRate = rate
		return
	}

	if p.cfg.DefaultTaxRate != nil {
		r.TaxRate = *p.cfg.DefaultTaxRate
		r.AddWarning(CodeTaxRate, fmt.Sprintf("row %d: tax rate %q is not allowed, default %d%% applied",
			r.Num, normalize.Value(raw, false), r.TaxRate))
		return
	}

	r.TaxRate = 0
	r.AddError(CodeTaxRate, fmt.Sprintf("row %d: tax rate %q is not allowed", r.Num, normalize.Value(raw, false)))
	inv.AddError(CodeTaxRate, "invoice has rows with a tax rate that is not allowed")
}

func (p *Parser) parseTaxRate(raw string) int {
	text := normalize.Header(strings.ReplaceAll(raw, "%", ""))
	for _, token := range p.vocab.noTax {
		text = strings.ReplaceAll(text, token, "0")
	}
	return normalize.Int(text)
}

// checkPriceWithTax compares the stated tax-inclusive price with the one
// computed from the net price and rate. A difference above one unit is an
// error.
func (p *Parser) checkPriceWithTax(r *InvoiceRow, inv *Invoice) {
	factor := decimal.NewFromInt(1).Add(decimal.NewFromInt(int64(r.TaxRate)).Div(hundred))
	computed := r.PriceWithoutTax.Mul(factor).Round(2)
	stated := r.PriceWithTax.Round(2)

	if computed.Sub(stated).Abs().GreaterThan(taxTolerance) {
		r.AddError(CodeDiffPriceWithTax, fmt.Sprintf("row %d: price with tax %s differs from computed %s",
			r.Num, stated.StringFixed(2), computed.StringFixed(2)))
		inv.AddError(CodeDiffPriceWithTax, "invoice has rows where price with tax does not match the tax rate")
	}
}
