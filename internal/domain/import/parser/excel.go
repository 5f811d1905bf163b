package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/normalizer"
)

// ReadWorkbook reads the active worksheet of an XLSX workbook. Cells keep
// their stored type: text, number, or date when the number carries a date
// format. Formula cells yield their cached value.
func ReadWorkbook(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(f.GetActiveSheetIndex())
	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheetName = sheets[0]
	}

	sheet := &Sheet{Name: sheetName, Epoch: normalizer.Epoch1900}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil && *props.Date1904 {
		sheet.Epoch = normalizer.Epoch1904
	}

	raw, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}

	dateStyles := make(map[int]bool)
	sheet.Rows = make([][]normalizer.Cell, len(raw))
	for i, values := range raw {
		row := make([]normalizer.Cell, len(values))
		for j, v := range values {
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, fmt.Errorf("failed to address cell: %w", err)
			}
			row[j] = readCell(f, sheet, axis, v, dateStyles)
		}
		sheet.Rows[i] = row
	}

	return sheet, nil
}

func readCell(f *excelize.File, sheet *Sheet, axis, value string, dateStyles map[int]bool) normalizer.Cell {
	if value == "" {
		return normalizer.Empty()
	}

	cellType, err := f.GetCellType(sheet.Name, axis)
	if err != nil {
		return normalizer.Text(value)
	}

	switch cellType {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return normalizer.Text(value)
		}
		if isDateCell(f, sheet.Name, axis, dateStyles) {
			if t, ok := normalizer.FromSerial(n, sheet.Epoch); ok {
				return normalizer.Time(t)
			}
		}
		return normalizer.Number(n)
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return normalizer.Time(t)
		}
		return normalizer.Text(value)
	case excelize.CellTypeBool:
		if value == "1" {
			return normalizer.Text("TRUE")
		}
		return normalizer.Text("FALSE")
	default:
		return normalizer.Text(value)
	}
}

// isDateCell reports whether the cell's number format renders a date.
// Results are cached per style id.
func isDateCell(f *excelize.File, sheetName, axis string, cache map[int]bool) bool {
	styleID, err := f.GetCellStyle(sheetName, axis)
	if err != nil || styleID == 0 {
		return false
	}
	if isDate, ok := cache[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := f.GetStyle(styleID); err == nil {
		switch {
		case style.CustomNumFmt != nil:
			isDate = isDateFormatCode(*style.CustomNumFmt)
		default:
			isDate = isBuiltinDateFormat(style.NumFmt)
		}
	}
	cache[styleID] = isDate
	return isDate
}

func isBuiltinDateFormat(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47) || (id >= 27 && id <= 36) || (id >= 50 && id <= 58)
}

// isDateFormatCode looks for day or year tokens outside quoted literals
// and bracketed sections of a custom number format.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	plain := b.String()
	return strings.ContainsAny(plain, "dy")
}
