// Package testutil builds invoice workbooks for tests in other packages.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Header is a column header row accepted by the default vocabulary.
var Header = []string{"№", "Наименование", "Код", "Кол-во", "Цена", "Цена с НДС, руб.", "Ставка НДС"}

// Item builds one item row in Header order.
func Item(num, name, code, cnt, price, priceWithTax, rate string) []string {
	return []string{num, name, code, cnt, price, priceWithTax, rate}
}

// InvoiceRows lays out a complete invoice sheet with the given items.
func InvoiceRows(number, date string, items ...[]string) [][]string {
	rows := [][]string{
		{"ТОВАРНАЯ НАКЛАДНАЯ", "", "Номер документа", "Дата составления"},
		{"", "", number, date},
		{},
		Header,
		{"1", "2", "3", "4", "5", "6", "7"},
	}
	rows = append(rows, items...)
	return append(rows, []string{"", "Всего по накладной"})
}

// XLSX encodes rows as a single-sheet workbook.
func XLSX(t testing.TB, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue("Sheet1", cell, value); err != nil {
				t.Fatal(err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// WriteXLSX writes rows as a workbook at dir/name and returns the path.
func WriteXLSX(t testing.TB, dir, name string, rows [][]string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, XLSX(t, rows), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
