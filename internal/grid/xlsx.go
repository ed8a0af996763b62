package grid

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX loads every worksheet of an Office Open XML workbook.
//
// Cell values are read through excelize's formatted rendering so numbers and
// dates come back as the spreadsheet displays them. Each sheet is copied into
// a Matrix and the underlying file is closed before returning.
func ReadXLSX(r io.Reader) (*Book, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx workbook: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		sheets = append(sheets, NewMatrix(name, rows))
	}
	return NewBook(sheets...), nil
}
