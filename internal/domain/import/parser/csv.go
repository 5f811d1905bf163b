package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/normalizer"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/sniffer"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads a delimited text export. The separator is detected from the
// first line and files that are not valid UTF-8 are decoded as
// Windows-1252, the encoding spreadsheet tools use on Brazilian Windows.
// Every non-empty field becomes a text cell. Rows are indexed by physical
// line, so skipped blank lines come back as empty rows.
func ReadCSV(r io.Reader) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode CSV: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffer.DetectDelimiter(data)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	sheet := &Sheet{Name: "csv", Epoch: normalizer.Epoch1900}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}

		line, _ := reader.FieldPos(0)
		for len(sheet.Rows) < line-1 {
			sheet.Rows = append(sheet.Rows, nil)
		}

		row := make([]normalizer.Cell, len(record))
		for i, field := range record {
			if field == "" {
				row[i] = normalizer.Empty()
				continue
			}
			row[i] = normalizer.Text(field)
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet, nil
}
