// Package parser reads personnel sheets from workbooks and CSV files into
// rows of typed cells. It does not interpret headers or values; that is
// left to the sniffer and normalizer packages.
package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/normalizer"
)

// ErrUnsupportedFormat is returned for files that are neither workbooks nor
// CSV.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format identifies the layout of an input file.
type Format string

const (
	FormatWorkbook Format = "xlsx"
	FormatCSV      Format = "csv"
)

// Sheet is the grid of one worksheet.
type Sheet struct {
	Name  string
	Rows  [][]normalizer.Cell
	Epoch time.Time // day zero for numeric date serials
}

// DetectFormat picks the reader for filename from its extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatWorkbook, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// Read parses r according to the extension of filename.
func Read(filename string, r io.Reader) (*Sheet, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatWorkbook:
		return ReadWorkbook(r)
	default:
		return ReadCSV(r)
	}
}

// Open reads the sheet stored at path.
func Open(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Read(path, f)
}
