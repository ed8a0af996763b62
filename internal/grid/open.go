package grid

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when the content is neither xlsx nor xls.
var ErrUnsupportedFormat = errors.New("unsupported workbook format")

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Open reads the workbook at path.
func Open(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return OpenReader(f, filepath.Base(path))
}

// OpenReader reads a workbook from r. The file name extension selects the
// reader; unknown or mismatched extensions fall back to content sniffing.
func OpenReader(r io.Reader, name string) (*Book, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		if bytes.HasPrefix(data, zipMagic) {
			return ReadXLSX(bytes.NewReader(data))
		}
	case ".xls":
		if bytes.HasPrefix(data, oleMagic) {
			return ReadXLS(bytes.NewReader(data))
		}
	}

	switch {
	case bytes.HasPrefix(data, zipMagic):
		return ReadXLSX(bytes.NewReader(data))
	case bytes.HasPrefix(data, oleMagic):
		return ReadXLS(bytes.NewReader(data))
	}
	return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
}

// IsWorkbookFile reports whether name carries a supported extension.
func IsWorkbookFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xls", ".xlsx", ".xlsm":
		return true
	}
	return false
}
