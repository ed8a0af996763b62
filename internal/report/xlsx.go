package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/torg12/internal/torg12"
)

const (
	invoiceSheet = "Invoice"
	issuesSheet  = "Issues"
)

var rowHeaders = []string{"№", "Code", "Name", "Quantity", "Price without tax", "Price with tax", "Tax rate, %", "Status"}

// WriteXLSX writes the invoice as a workbook with an "Invoice" sheet holding
// the document fields and line items, and an "Issues" sheet listing every
// recorded error and warning.
func WriteXLSX(w io.Writer, inv *torg12.Invoice) error {
	v := NewView(inv)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(issuesSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	red, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "9A0511"}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	status := "OK"
	if !v.Valid {
		status = "INVALID"
	}
	summary := [][2]interface{}{
		{"Sheet", v.Sheet},
		{"Number", v.Number},
		{"Date", v.Date},
		{"Sum without tax", v.PriceWithoutTaxSum.InexactFloat64()},
		{"Sum with tax", v.PriceWithTaxSum.InexactFloat64()},
		{"Status", status},
	}
	for i, kv := range summary {
		row := i + 1
		if err := setRow(f, invoiceSheet, row, kv[0], kv[1]); err != nil {
			return err
		}
		if err := f.SetCellStyle(invoiceSheet, cellName(1, row), cellName(1, row), bold); err != nil {
			return fmt.Errorf("failed to style cell: %w", err)
		}
	}

	headerRow := len(summary) + 2
	header := make([]interface{}, len(rowHeaders))
	for i, h := range rowHeaders {
		header[i] = h
	}
	if err := setRow(f, invoiceSheet, headerRow, header...); err != nil {
		return err
	}
	if err := f.SetCellStyle(invoiceSheet, cellName(1, headerRow), cellName(len(rowHeaders), headerRow), bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range v.Rows {
		row := headerRow + 1 + i
		rowStatus := "OK"
		if !r.Valid {
			rowStatus = "INVALID"
		}
		if err := setRow(f, invoiceSheet, row,
			r.Num, r.Code, r.Name, r.Cnt,
			r.PriceWithoutTax.InexactFloat64(), r.PriceWithTax.InexactFloat64(),
			r.TaxRate, rowStatus,
		); err != nil {
			return err
		}
		if !r.Valid {
			if err := f.SetCellStyle(invoiceSheet, cellName(len(rowHeaders), row), cellName(len(rowHeaders), row), red); err != nil {
				return fmt.Errorf("failed to style cell: %w", err)
			}
		}
	}
	if err := f.SetColWidth(invoiceSheet, "C", "C", 40); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := writeIssues(f, v, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeIssues(f *excelize.File, v InvoiceView, bold int) error {
	if err := setRow(f, issuesSheet, 1, "Level", "Row", "Kind", "Code", "Message"); err != nil {
		return err
	}
	if err := f.SetCellStyle(issuesSheet, "A1", "E1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	row := 2
	add := func(level, rowNum, kind string, list []Issue) error {
		for _, issue := range list {
			if err := setRow(f, issuesSheet, row, level, rowNum, kind, issue.Code, issue.Message); err != nil {
				return err
			}
			row++
		}
		return nil
	}

	if err := add("invoice", "", "error", v.Errors); err != nil {
		return err
	}
	if err := add("invoice", "", "warning", v.Warnings); err != nil {
		return err
	}
	for _, r := range v.Rows {
		num := strconv.Itoa(r.Num)
		if err := add("row", num, "error", r.Errors); err != nil {
			return err
		}
		if err := add("row", num, "warning", r.Warnings); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	for i, value := range values {
		if err := f.SetCellValue(sheet, cellName(i+1, row), value); err != nil {
			return fmt.Errorf("failed to set cell: %w", err)
		}
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
