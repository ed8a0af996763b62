// =============================================================================
// TORG12 Parser - Cell Grid
// =============================================================================
//
// This module defines the read-only view of a workbook that the recognizer
// works against. A workbook is an ordered list of worksheets, and a worksheet
// is a rectangular grid of cells addressed by zero-based (column, row).
//
// Cell values are exposed as display strings, the same text a user sees in
// the spreadsheet application. Cells outside the used range read as "".
//
// IMPLEMENTATIONS:
//   - Matrix : in-memory grid, also used as the target of the file readers
//   - xlsx   : Office Open XML workbooks via excelize
//   - xls    : legacy BIFF8 workbooks via xlsReader
//
// =============================================================================

package grid

// =============================================================================
// INTERFACES
// =============================================================================

// Sheet is a single worksheet.
//
// HighestRow and HighestColumn return the last used zero-based index, or -1
// for an empty sheet.
type Sheet interface {
	Name() string
	CellValue(col, row int) string
	HighestRow() int
	HighestColumn() int
}

// Workbook is an ordered collection of worksheets.
type Workbook interface {
	Sheets() []Sheet
}

// =============================================================================
// IN-MEMORY IMPLEMENTATION
// =============================================================================

// Matrix is a Sheet backed by a slice of rows. Rows may be ragged.
type Matrix struct {
	name    string
	rows    [][]string
	maxCols int
}

// NewMatrix builds a sheet from row-major cell values.
// Trailing empty rows are dropped so HighestRow reflects the used range.
func NewMatrix(name string, rows [][]string) *Matrix {
	m := &Matrix{name: name}

	last := -1
	for i, row := range rows {
		for _, v := range row {
			if v != "" {
				last = i
				break
			}
		}
	}
	m.rows = rows[:last+1]

	for _, row := range m.rows {
		width := len(row)
		for width > 0 && row[width-1] == "" {
			width--
		}
		if width > m.maxCols {
			m.maxCols = width
		}
	}
	return m
}

// Name returns the sheet title.
func (m *Matrix) Name() string { return m.name }

// CellValue returns the display string at (col, row), or "" when out of range.
func (m *Matrix) CellValue(col, row int) string {
	if row < 0 || row >= len(m.rows) || col < 0 {
		return ""
	}
	r := m.rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// HighestRow returns the last used row index.
func (m *Matrix) HighestRow() int { return len(m.rows) - 1 }

// HighestColumn returns the last used column index.
func (m *Matrix) HighestColumn() int { return m.maxCols - 1 }

// Book is a Workbook holding already loaded sheets.
type Book struct {
	sheets []Sheet
}

// NewBook wraps sheets in a Workbook, keeping their order.
func NewBook(sheets ...Sheet) *Book {
	return &Book{sheets: sheets}
}

// Sheets returns the worksheets in workbook order.
func (b *Book) Sheets() []Sheet { return b.sheets }
