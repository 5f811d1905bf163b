package export

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/normalizer"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/rank"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
)

// RosterSheetName is the worksheet written by WriteRoster.
const RosterSheetName = "Relação"

// RosterHeaders are the roster columns.
var RosterHeaders = []string{"NR ORDEM", "PREC-CP", "P/G", "NOME COMPLETO", "CPF"}

var rosterWidths = []float64{12, 16, 16, 54, 16}

// Built-in number format 49 is "@" (text).
const textFormat = 49

type rosterStyles struct {
	header, order, center, left, text int
}

func newRosterStyles(f *excelize.File) (rosterStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	body := &excelize.Font{Size: 11, Color: "000000"}

	specs := []*excelize.Style{
		{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
			Font:      &excelize.Font{Bold: true, Size: 11, Color: "000000"},
			Alignment: center,
			Border:    border,
		},
		{Font: &excelize.Font{Size: 11, Color: "808080"}, Alignment: center, Border: border},
		{Font: body, Alignment: center, Border: border},
		{Font: body, Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"}, Border: border},
		{Font: body, Alignment: center, Border: border, NumFmt: textFormat},
	}

	ids := make([]int, len(specs))
	for i, spec := range specs {
		id, err := f.NewStyle(spec)
		if err != nil {
			return rosterStyles{}, fmt.Errorf("failed to create roster style: %w", err)
		}
		ids[i] = id
	}
	return rosterStyles{header: ids[0], order: ids[1], center: ids[2], left: ids[3], text: ids[4]}, nil
}

// WriteRoster writes the personnel roster: seniority then name order,
// names in upper case, ranks abbreviated and identifiers as digit-only
// text. The header is grey and stays frozen.
func WriteRoster(w io.Writer, records []repository.Record) error {
	sorted := slices.Clone(records)
	rank.Sort(sorted)

	f := excelize.NewFile()
	defer f.Close()

	sheet := RosterSheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newRosterStyles(f)
	if err != nil {
		return err
	}

	header := make([]any, len(RosterHeaders))
	for i, h := range RosterHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "E1", styles.header); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range sorted {
		n := i + 2
		cell := func(col int) string {
			name, _ := excelize.CoordinatesToCellName(col, n)
			return name
		}

		if err := f.SetCellInt(sheet, cell(1), int64(i+1)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", n, err)
		}
		values := []string{
			normalizer.DigitsOnly(normalizer.Text(r.PrecedenceCode)),
			rank.Upper(r.Rank),
			strings.ToUpper(strings.TrimSpace(r.FullName)),
			normalizer.DigitsOnly(normalizer.Text(r.NationalID)),
		}
		for j, v := range values {
			if err := f.SetCellStr(sheet, cell(j+2), v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", n, err)
			}
		}

		for col, style := range []int{styles.order, styles.text, styles.center, styles.left, styles.text} {
			if err := f.SetCellStyle(sheet, cell(col+1), cell(col+1), style); err != nil {
				return fmt.Errorf("failed to style row %d: %w", n, err)
			}
		}
	}

	for i, width := range rosterWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to size columns: %w", err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
