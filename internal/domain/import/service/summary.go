package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/sniffer"
)

// ColumnReport tells where one field was read from.
type ColumnReport struct {
	Key    sniffer.FieldKey
	Label  string
	Index  int // 0-based column, -1 when no column matched
	Header string
}

// Found reports whether the field had a column.
func (c ColumnReport) Found() bool {
	return c.Index >= 0
}

// Summary is the outcome of one import run.
type Summary struct {
	RunID       uuid.UUID
	Sheet       string
	HeaderRow   int
	Fingerprint string
	DryRun      bool

	Inserted  int
	Updated   int
	Unchanged int // matched rows whose merge changed nothing; not written
	Ignored   int // rows without a full name

	Columns []ColumnReport
}

func newSummary(runID uuid.UUID, sheetName string, header *sniffer.Header, cm sniffer.ColumnMap) *Summary {
	s := &Summary{
		RunID:       runID,
		Sheet:       sheetName,
		HeaderRow:   header.Row,
		Fingerprint: sniffer.Fingerprint(header.Names),
		Columns:     make([]ColumnReport, 0, len(sniffer.Fields)),
	}
	for _, f := range sniffer.Fields {
		report := ColumnReport{Key: f.Key, Label: f.Label, Index: -1}
		if idx, ok := cm.Index(f.Key); ok {
			report.Index = idx
			report.Header = cm.Header(f.Key)
		}
		s.Columns = append(s.Columns, report)
	}
	return s
}

// Column returns the report of key.
func (s *Summary) Column(key sniffer.FieldKey) (ColumnReport, bool) {
	for _, c := range s.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return ColumnReport{}, false
}

// String renders the summary shown to the operator after an import.
func (s *Summary) String() string {
	var b strings.Builder
	if s.DryRun {
		b.WriteString("Simulação: nenhuma alteração foi gravada.\n\n")
	}
	fmt.Fprintf(&b, "Inseridos: %d\n", s.Inserted)
	fmt.Fprintf(&b, "Atualizados: %d\n", s.Updated)
	if s.Unchanged > 0 {
		fmt.Fprintf(&b, "Sem alteração: %d\n", s.Unchanged)
	}
	fmt.Fprintf(&b, "Ignorados: %d\n", s.Ignored)
	b.WriteString("\nMapeamento de colunas:\n")

	lines := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if !c.Found() {
			lines = append(lines, fmt.Sprintf("– %s: NÃO ENCONTRADO", c.Label))
			continue
		}
		lines = append(lines, fmt.Sprintf("– %s: coluna %d (%s)", c.Label, c.Index+1, c.Header))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
