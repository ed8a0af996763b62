package torg12

import (
	"testing"

	"github.com/ginjaninja78/torg12/internal/grid"
)

var tableHeader = []string{"№", "Наименование", "Код", "Кол-во", "Цена", "Цена с НДС, руб.", "Ставка НДС"}

var footerRow = []string{"", "Всего по накладной", "", "", "", "", ""}

// invoiceRows lays out a typical invoice: header labels on row 0, their
// values on row 1, column headers on row 3, the column index row on row 4
// and items from row 5, closed by the footer.
func invoiceRows(number, date string, header []string, items ...[]string) [][]string {
	rows := [][]string{
		{"ТОВАРНАЯ НАКЛАДНАЯ", "", "Номер документа", "Дата составления"},
		{"", "", number, date},
		{},
		header,
		{"1", "2", "3", "4", "5", "6", "7"},
	}
	rows = append(rows, items...)
	return append(rows, footerRow)
}

func invoiceSheet(name string, items ...[]string) *grid.Matrix {
	return grid.NewMatrix(name, invoiceRows("123", "15.03.2017", tableHeader, items...))
}

func item(num, name, code, cnt, price, priceWithTax, rate string) []string {
	return []string{num, name, code, cnt, price, priceWithTax, rate}
}

func newParser(t *testing.T, cfg Config) *Parser {
	t.Helper()
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func parseSheets(t *testing.T, cfg Config, sheets ...grid.Sheet) *Invoice {
	t.Helper()
	inv, err := newParser(t, cfg).Parse(grid.NewBook(sheets...))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return inv
}

func parseItems(t *testing.T, cfg Config, items ...[]string) *Invoice {
	t.Helper()
	return parseSheets(t, cfg, invoiceSheet("ТОРГ-12", items...))
}

func mustVocabulary(t *testing.T) *vocabulary {
	t.Helper()
	v, err := compileVocabulary(DefaultVocabulary())
	if err != nil {
		t.Fatalf("compileVocabulary() error = %v", err)
	}
	return v
}
