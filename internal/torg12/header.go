package torg12

import (
	"time"

	"github.com/ginjaninja78/torg12/internal/grid"
	"github.com/ginjaninja78/torg12/internal/normalize"
)

// headerResult is what the header locator found on one sheet.
type headerResult struct {
	number      string
	date        *time.Time
	foundNumber bool
	foundDate   bool

	// startRow is the row of the last matched label, 0 when none matched.
	startRow int
}

// locateHeader scans the sheet row by row for the document number and date
// labels. A label is either a single cell or its two words printed in two
// vertically adjacent cells. Empty values and unparseable dates do not count
// as found and scanning goes on.
func locateHeader(sheet grid.Sheet, v *vocabulary) headerResult {
	var res headerResult

	lastRow, lastCol := sheet.HighestRow(), sheet.HighestColumn()
	for row := 0; row <= lastRow; row++ {
		for col := 0; col <= lastCol; col++ {
			text := normalize.Header(sheet.CellValue(col, row))
			if text == "" {
				continue
			}

			if !res.foundNumber {
				if value, ok := labelValue(sheet, col, row, text, v.number); ok {
					res.number = value
					res.foundNumber = true
					res.startRow = row
				}
			}
			if !res.foundDate {
				if value, ok := labelValue(sheet, col, row, text, v.date); ok {
					if d, ok := normalize.Date(value); ok {
						res.date = &d
						res.foundDate = true
						res.startRow = row
					}
				}
			}

			if res.foundNumber && res.foundDate {
				return res
			}
		}
	}
	return res
}

// labelValue returns the non-empty value belonging to a label at (col, row).
func labelValue(sheet grid.Sheet, col, row int, text string, l compiledLabel) (string, bool) {
	for _, label := range l.labels {
		if text == label {
			return nonEmpty(normalize.Value(sheet.CellValue(col, row+l.offset), false))
		}
	}
	for _, words := range l.split {
		if text == words[0] && normalize.Header(sheet.CellValue(col, row+1)) == words[1] {
			return nonEmpty(normalize.Value(sheet.CellValue(col, row+l.offset+1), false))
		}
	}
	return "", false
}

func nonEmpty(s string) (string, bool) {
	return s, s != ""
}
