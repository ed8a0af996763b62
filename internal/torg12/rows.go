package torg12

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/torg12/internal/grid"
	"github.com/ginjaninja78/torg12/internal/normalize"
)

// extractRowRange returns the rows between the column headers and the footer
// that look like line items. Scanning starts one row below dataStart, which
// skips the column index row printed under the headers.
func extractRowRange(sheet grid.Sheet, cols *ColumnMap, dataStart int, v *vocabulary) []int {
	var rows []int

	lastRow := sheet.HighestRow()
	for row := dataStart + 1; row <= lastRow; row++ {
		if isFooter(sheet, row, v) {
			break
		}
		if acceptRow(sheet, row, cols, v) {
			rows = append(rows, row)
		}
	}
	return rows
}

func isFooter(sheet grid.Sheet, row int, v *vocabulary) bool {
	for col := 0; col <= sheet.HighestColumn(); col++ {
		if v.footer.has(normalize.Header(sheet.CellValue(col, row))) {
			return true
		}
	}
	return false
}

// acceptRow decides whether row holds a line item. Rejected are the column
// index row (first three filled cells read 1, 2, 3), rows without a positive
// ordinal and repeated header rows.
func acceptRow(sheet grid.Sheet, row int, cols *ColumnMap, v *vocabulary) bool {
	if isIndexRow(sheet, row) {
		return false
	}

	num := cellText(sheet, cols.Num, row)
	if normalize.Int(normalize.Value(num, true)) <= 0 {
		return false
	}

	if v.decoyNum.has(normalize.Header(num)) {
		return false
	}
	return !v.decoyCod.has(normalize.Header(cellText(sheet, cols.Code, row)))
}

// isIndexRow reports whether the first three filled cells of row are the
// numbers 1, 2 and 3, in any numeric rendering ("1", "1.0", "1,00").
func isIndexRow(sheet grid.Sheet, row int) bool {
	const want = 3
	i := 0
	for col := 0; col <= sheet.HighestColumn() && i < want; col++ {
		value := normalize.Value(sheet.CellValue(col, row), true)
		if value == "" {
			continue
		}
		n, err := decimal.NewFromString(value)
		if err != nil || !n.Equal(decimal.NewFromInt(int64(i+1))) {
			return false
		}
		i++
	}
	return i == want
}

// cellText reads the column at pos on the given row; "" when pos is nil.
func cellText(sheet grid.Sheet, pos *Position, row int) string {
	if pos == nil {
		return ""
	}
	return sheet.CellValue(pos.Col, row)
}
