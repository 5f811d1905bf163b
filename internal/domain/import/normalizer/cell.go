// Package normalizer turns raw spreadsheet values into the canonical field
// representations stored for a personnel record.
//
// Every function here is total: malformed input maps to a documented
// neutral value ("" or "0") instead of an error.
package normalizer

import (
	"strconv"
	"strings"
	"time"
)

// CellKind identifies what a spreadsheet cell held.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindText
	KindNumber
	KindTime
)

// Cell is a raw spreadsheet value as read from a workbook or CSV file.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

// Empty returns the absent value.
func Empty() Cell { return Cell{} }

// Text wraps a string cell.
func Text(s string) Cell { return Cell{Kind: KindText, Text: s} }

// Number wraps a numeric cell.
func Number(v float64) Cell { return Cell{Kind: KindNumber, Number: v} }

// Time wraps a date-time cell.
func Time(t time.Time) Cell { return Cell{Kind: KindTime, Time: t} }

// String returns the textual form of the cell. Integral numbers print
// without a fractional part so numeric identifiers keep their digits.
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindTime:
		return c.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// IsBlank reports whether the cell is absent or whitespace only.
func (c Cell) IsBlank() bool {
	return strings.TrimSpace(c.String()) == ""
}

// IsEmpty reports whether the cell is absent or the empty string. Unlike
// IsBlank, a cell holding only spaces is not empty.
func (c Cell) IsEmpty() bool {
	return c.Kind == KindEmpty || (c.Kind == KindText && c.Text == "")
}

// Clean returns the trimmed textual form of the cell.
func Clean(c Cell) string {
	return strings.TrimSpace(c.String())
}

// BlankRow reports whether every cell of the row is blank.
func BlankRow(row []Cell) bool {
	for _, c := range row {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}
