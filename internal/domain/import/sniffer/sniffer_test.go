package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/normalizer"
)

func blankRows(n int) [][]normalizer.Cell {
	rows := make([][]normalizer.Cell, n)
	for i := range rows {
		rows[i] = []normalizer.Cell{normalizer.Empty(), normalizer.Empty()}
	}
	return rows
}

func TestFindHeader(t *testing.T) {
	t.Run("header on the tenth row", func(t *testing.T) {
		rows := blankRows(9)
		rows = append(rows, []normalizer.Cell{normalizer.Empty(), normalizer.Text(" NOME ")})

		h, err := FindHeader(rows)
		require.NoError(t, err)
		assert.Equal(t, 10, h.Row)
		assert.Equal(t, []string{"", "NOME"}, h.Names)
	})

	t.Run("first ten rows blank", func(t *testing.T) {
		rows := blankRows(10)
		rows = append(rows, []normalizer.Cell{normalizer.Text("NOME")})

		_, err := FindHeader(rows)
		assert.ErrorIs(t, err, ErrNoHeaderFound)
	})

	t.Run("empty sheet", func(t *testing.T) {
		_, err := FindHeader(nil)
		assert.ErrorIs(t, err, ErrNoHeaderFound)
	})

	t.Run("numeric header cell", func(t *testing.T) {
		h, err := FindHeader([][]normalizer.Cell{{normalizer.Number(2024)}})
		require.NoError(t, err)
		assert.Equal(t, []string{"2024"}, h.Names)
	})
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"P/G", "P G"},
		{"  Data de Praça ", "DATA DE PRACA"},
		{"AGÊNCIA", "AGENCIA"},
		{"Aux. Transporte (R$)", "AUX TRANSPORTE R"},
		{"PREC-CP", "PREC CP"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.in))
		})
	}
}

func TestResolve(t *testing.T) {
	t.Run("typical roster layout", func(t *testing.T) {
		cm := Resolve([]string{"P/G", "NOME COMPLETO", "CPF", "PREC-CP", "NASCIMENTO"})

		for key, want := range map[FieldKey]int{
			FieldRank:          0,
			FieldFullName:      1,
			FieldNationalID:    2,
			FieldPrecedence:    3,
			FieldBirthDate:     4,
		} {
			got, ok := cm.Index(key)
			assert.True(t, ok, "field %s", key)
			assert.Equal(t, want, got, "field %s", key)
		}

		for _, key := range []FieldKey{FieldMilitaryID, FieldBank, FieldWarName, FieldFormationYear} {
			_, ok := cm.Index(key)
			assert.False(t, ok, "field %s", key)
		}
		assert.Equal(t, 5, cm.Mapped())
	})

	t.Run("earlier field claims the column first", func(t *testing.T) {
		cm := Resolve([]string{"NOME DE GUERRA"})

		idx, ok := cm.Index(FieldFullName)
		require.True(t, ok)
		assert.Equal(t, 0, idx)

		_, ok = cm.Index(FieldWarName)
		assert.False(t, ok)
	})

	t.Run("exact match beats an earlier substring match", func(t *testing.T) {
		cm := Resolve([]string{"NOME DE GUERRA", "NOME"})

		idx, _ := cm.Index(FieldFullName)
		assert.Equal(t, 1, idx)
		idx, _ = cm.Index(FieldWarName)
		assert.Equal(t, 0, idx)
	})

	t.Run("short aliases need a topic word", func(t *testing.T) {
		cm := Resolve([]string{"PREVISAO", "DATA", "CONTATO"})

		for _, key := range []FieldKey{FieldPreschoolValue, FieldPreschoolFlag, FieldTransportValue, FieldTransportFlag, FieldAccount} {
			_, ok := cm.Index(key)
			assert.False(t, ok, "field %s", key)
		}
	})

	t.Run("benefit columns", func(t *testing.T) {
		cm := Resolve([]string{"Valor Pré-Escolar", "Pré Escolar (S/N)", "Valor Aux. Transporte", "Aux. Transporte", "PNR"})

		want := map[FieldKey]int{
			FieldPreschoolValue: 0,
			FieldPreschoolFlag:  1,
			FieldTransportValue: 2,
			FieldTransportFlag:  3,
			FieldHousing:        4,
		}
		for key, col := range want {
			got, ok := cm.Index(key)
			assert.True(t, ok, "field %s", key)
			assert.Equal(t, col, got, "field %s", key)
		}
	})

	t.Run("blank headers are never matched", func(t *testing.T) {
		cm := Resolve([]string{"", "  ", "NOME"})
		idx, ok := cm.Index(FieldFullName)
		require.True(t, ok)
		assert.Equal(t, 2, idx)
		assert.Equal(t, 1, cm.Mapped())
	})
}

func TestColumnMapCell(t *testing.T) {
	cm := Resolve([]string{"NOME", "CPF"})
	row := []normalizer.Cell{normalizer.Text("JOAO")}

	assert.Equal(t, "JOAO", cm.Cell(row, FieldFullName).Text)
	assert.True(t, cm.Cell(row, FieldNationalID).IsEmpty(), "short row")
	assert.True(t, cm.Cell(row, FieldBank).IsEmpty(), "unmapped")
	assert.Equal(t, "CPF", cm.Header(FieldNationalID))
	assert.Equal(t, "", cm.Header(FieldBank))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]string{"P/G", "Nome", ""})
	b := Fingerprint([]string{"p g", "NOME"})
	c := Fingerprint([]string{"NOME", "P/G"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   rune
	}{
		{"semicolon", "NOME;CPF;PREC\nA;1;2", ';'},
		{"comma", "NOME,CPF,PREC\n", ','},
		{"tab", "NOME\tCPF\tPREC", '\t'},
		{"commas after first line ignored", "NOME;CPF\n1,2,3,4,5", ';'},
		{"single column", "NOME", ';'},
		{"leading blank lines", "\n\r\nNOME,CPF\n", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter([]byte(tt.sample)))
		})
	}
}
