// Package export writes the registry to workbooks and CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
)

// SheetName is the worksheet written by WriteWorkbook.
const SheetName = "Militares"

// WriteWorkbook writes every record, in the given order, to a one-sheet
// workbook with the export headers. The result imports back with every
// field mapped.
func WriteWorkbook(w io.Writer, records []repository.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(repository.Headers))
	for i, h := range repository.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range records {
		row := make([]any, 0, len(header))
		row = append(row, r.ID)
		row = append(row, r.Values()...)

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteCSV writes the records as semicolon separated UTF-8 text with a
// byte order mark, the layout spreadsheet programs open without asking.
func WriteCSV(w io.Writer, records []repository.Record) error {
	if _, err := w.Write([]byte("\ufeff")); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := gocsv.MarshalCSV(&records, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
