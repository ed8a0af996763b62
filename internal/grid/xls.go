package grid

import (
	"fmt"
	"io"

	"github.com/shakinm/xlsReader/xls"
)

// ReadXLS loads every worksheet of a legacy BIFF (.xls) workbook.
func ReadXLS(r io.ReadSeeker) (*Book, error) {
	workbook, err := xls.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xls workbook: %w", err)
	}

	count := len(workbook.GetSheets())
	sheets := make([]Sheet, 0, count)
	for i := 0; i < count; i++ {
		sheet, err := workbook.GetSheet(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %d: %w", i, err)
		}

		var rows [][]string
		for _, row := range sheet.GetRows() {
			var values []string
			for _, cell := range row.GetCols() {
				values = append(values, cell.GetString())
			}
			rows = append(rows, values)
		}
		sheets = append(sheets, NewMatrix(sheet.GetName(), rows))
	}
	return NewBook(sheets...), nil
}
