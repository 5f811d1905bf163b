package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/normalizer"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/parser"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/sniffer"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
	"github.com/FACorreiaa/cadastro-militares/pkg/db"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func textRow(values ...string) []normalizer.Cell {
	row := make([]normalizer.Cell, len(values))
	for i, v := range values {
		if v == "" {
			row[i] = normalizer.Empty()
			continue
		}
		row[i] = normalizer.Text(v)
	}
	return row
}

func newSheet(rows ...[]normalizer.Cell) *parser.Sheet {
	return &parser.Sheet{Name: "Plan1", Rows: rows, Epoch: normalizer.Epoch1900}
}

func newSQLiteRepo(t *testing.T) *repository.SQLiteRepository {
	t.Helper()

	sqlDB, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(sqlDB, db.DriverSQLite))

	repo := repository.NewSQLiteRepository(sqlDB)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// memGateway is an in-memory Gateway without transactions.
type memGateway struct {
	records   []repository.Record
	ranks     []string
	nextID    int64
	updates   int
	failAfter int // fail the Nth write when > 0
	writes    int
	rankErr   error
}

var errWrite = errors.New("disk full")

func (g *memGateway) FetchAll(context.Context) ([]repository.Record, error) {
	out := make([]repository.Record, len(g.records))
	copy(out, g.records)
	return out, nil
}

func (g *memGateway) write() error {
	g.writes++
	if g.failAfter > 0 && g.writes >= g.failAfter {
		return errWrite
	}
	return nil
}

func (g *memGateway) Insert(_ context.Context, r repository.Record) (int64, error) {
	if err := g.write(); err != nil {
		return 0, err
	}
	g.nextID++
	r.ID = g.nextID
	g.records = append(g.records, r)
	return r.ID, nil
}

func (g *memGateway) Update(_ context.Context, id int64, r repository.Record) error {
	if err := g.write(); err != nil {
		return err
	}
	for i := range g.records {
		if g.records[i].ID == id {
			r.ID = id
			g.records[i] = r
			g.updates++
			return nil
		}
	}
	return repository.ErrNotFound
}

func (g *memGateway) EnsureRank(_ context.Context, name string) (bool, error) {
	if g.rankErr != nil {
		return false, g.rankErr
	}
	for _, r := range g.ranks {
		if r == name {
			return false, nil
		}
	}
	g.ranks = append(g.ranks, name)
	return true, nil
}

func TestImport_EndToEndInsert(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	svc := NewImportService(repo, testLogger())

	sheet := newSheet(
		textRow("P/G", "NOME COMPLETO", "CPF"),
		textRow("CAP", "JOAO DA SILVA", "123.456.789-09"),
	)

	summary, err := svc.Import(ctx, sheet, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Ignored)
	assert.Equal(t, 1, summary.HeaderRow)

	all, err := repo.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	got := all[0]
	assert.Equal(t, "Capitão", got.Rank)
	assert.Equal(t, "JOAO DA SILVA", got.FullName)
	assert.Equal(t, "Joao", got.WarName)
	assert.Equal(t, "12345678909", got.NationalID)
	assert.Equal(t, "", got.PrecedenceCode)
	assert.Equal(t, normalizer.No, got.PreschoolFlag)
	assert.Equal(t, "0", got.PreschoolValue)
	assert.Equal(t, normalizer.No, got.TransportFlag)
	assert.Equal(t, "0", got.TransportValue)
	assert.Equal(t, normalizer.No, got.HousingFlag)
}

func TestImport_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	svc := NewImportService(repo, testLogger())

	sheet := newSheet(
		textRow("P/G", "NOME COMPLETO", "CPF", "PREC-CP", "NASCIMENTO", "VALOR AT"),
		textRow("1º SGT", "MARIA SOUZA", "111.222.333-44", "123456789", "05 JUN 25", "286,66"),
		textRow("CB EF PROFL", "PEDRO ALVES", "55566677788", "987654321", "31/12/1999", ""),
	)

	first, err := svc.Import(ctx, sheet, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Inserted)

	before, err := repo.FetchAll(ctx)
	require.NoError(t, err)

	second, err := svc.Import(ctx, sheet, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 2, second.Unchanged)

	after, err := repo.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, "05/06/2025", after[0].BirthDate)
	assert.Equal(t, normalizer.Yes, after[0].TransportFlag)
	assert.Equal(t, "286.66", after[0].TransportValue)
}

func TestImport_PrecedenceCodeWinsOverNationalID(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{
		records: []repository.Record{
			{ID: 1, Rank: "Capitão", FullName: "ANA", PrecedenceCode: "111111111", NationalID: "00000000001", HousingFlag: normalizer.No},
			{ID: 2, Rank: "Capitão", FullName: "BRUNO", PrecedenceCode: "222222222", NationalID: "00000000002", HousingFlag: normalizer.No},
		},
		nextID: 2,
	}
	svc := NewImportService(gw, testLogger())

	// PREC-CP points at record 1, CPF at record 2.
	sheet := newSheet(
		textRow("NOME", "PREC-CP", "CPF", "ENDERECO"),
		textRow("ANA LIMA", "111111111", "00000000002", "Rua A"),
	)

	summary, err := svc.Import(ctx, sheet, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, summary.Inserted)

	assert.Equal(t, "ANA LIMA", gw.records[0].FullName)
	assert.Equal(t, "Rua A", gw.records[0].Address)
	assert.Equal(t, "BRUNO", gw.records[1].FullName)
}

func TestImport_NationalIDFallback(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{
		records: []repository.Record{
			{ID: 5, Rank: "Subtenente", FullName: "CARLOS", NationalID: "12345678909", Bank: "341 - Itaú Unibanco S.A", HousingFlag: normalizer.Yes, PreschoolFlag: normalizer.Yes, PreschoolValue: "321.00"},
		},
		nextID: 5,
	}
	svc := NewImportService(gw, testLogger())

	sheet := newSheet(
		textRow("NOME", "CPF", "PREC CP"),
		textRow("CARLOS MENDES", "123.456.789-09", "999888777"),
	)

	summary, err := svc.Import(ctx, sheet, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	got := gw.records[0]
	assert.Equal(t, int64(5), got.ID)
	assert.Equal(t, "CARLOS MENDES", got.FullName)
	assert.Equal(t, "999888777", got.PrecedenceCode)
	// Blank cells keep stored values.
	assert.Equal(t, "Subtenente", got.Rank)
	assert.Equal(t, "341 - Itaú Unibanco S.A", got.Bank)
	assert.Equal(t, normalizer.Yes, got.HousingFlag)
	// Preschool is derived from the (absent) value in the row.
	assert.Equal(t, normalizer.No, got.PreschoolFlag)
	assert.Equal(t, "0", got.PreschoolValue)
}

func TestImport_TransportCancelledByX(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	svc := NewImportService(repo, testLogger())

	sheet := newSheet(
		textRow("NOME", "CPF", "RECEBE AT", "VALOR AT"),
		textRow("JOSE", "12345678909", "X", "150,00"),
		textRow("MARIO", "98765432100", "", "150,00"),
	)

	_, err := svc.Import(ctx, sheet, Options{})
	require.NoError(t, err)

	all, err := repo.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, normalizer.No, all[0].TransportFlag)
	assert.Equal(t, "0", all[0].TransportValue)
	assert.Equal(t, normalizer.Yes, all[1].TransportFlag)
	assert.Equal(t, "150.00", all[1].TransportValue)
}

func TestImport_PreschoolRules(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		flag      string
		wantFlag  string
		wantValue string
	}{
		{name: "explicit no zeroes the value", value: "100,00", flag: "Não", wantFlag: normalizer.No, wantValue: "0"},
		{name: "explicit yes without amount", value: "", flag: "Sim", wantFlag: normalizer.Yes, wantValue: "0"},
		{name: "flag derived from value", value: "200", flag: "", wantFlag: normalizer.Yes, wantValue: "200.00"},
		{name: "unreadable value and flag", value: "abc", flag: "talvez", wantFlag: normalizer.No, wantValue: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := newSQLiteRepo(t)
			_, err := repo.Insert(ctx, repository.Record{
				Rank:           "Capitão",
				FullName:       "ANA",
				PrecedenceCode: "111111111",
				PreschoolFlag:  normalizer.Yes,
				PreschoolValue: "9.00",
				TransportFlag:  normalizer.No,
				TransportValue: "0",
				HousingFlag:    normalizer.No,
			})
			require.NoError(t, err)

			svc := NewImportService(repo, testLogger())
			sheet := newSheet(
				textRow("NOME", "PREC-CP", "VALOR PRE ESCOLAR", "RECEBE PRE ESCOLAR"),
				textRow("ANA", "111111111", tt.value, tt.flag),
				textRow("BETO", "222222222", tt.value, tt.flag),
			)

			_, err = svc.Import(ctx, sheet, Options{})
			require.NoError(t, err)

			all, err := repo.FetchAll(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			for _, rec := range all {
				assert.Equal(t, tt.wantFlag, rec.PreschoolFlag, rec.FullName)
				assert.Equal(t, tt.wantValue, rec.PreschoolValue, rec.FullName)
			}
			assert.Equal(t, "Capitão", all[0].Rank)
		})
	}
}

func TestImport_BlankAndIgnoredRows(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{}
	svc := NewImportService(gw, testLogger())

	sheet := newSheet(
		textRow("", ""),
		textRow("NOME", "CPF"),
		textRow("", ""),
		textRow("   ", "12345678909"),
		textRow("LUCAS", "11111111111"),
		nil,
	)

	summary, err := svc.Import(ctx, sheet, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.HeaderRow)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Ignored)
	require.Len(t, gw.records, 1)
	assert.Equal(t, "Lucas", gw.records[0].WarName)
}

func TestImport_RowsDoNotMatchEachOther(t *testing.T) {
	ctx := context.Background()
	gw := &memGateway{}
	svc := NewImportService(gw, testLogger())

	sheet := newSheet(
		textRow("NOME", "CPF"),
		textRow("A", "11111111111"),
		textRow("B", "11111111111"),
	)

	summary, err := svc.Import(ctx, sheet, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Inserted)
}

func TestImport_EnsuresRanks(t *testing.T) {
	ctx := context.Background()

	t.Run("new rank registered", func(t *testing.T) {
		repo := newSQLiteRepo(t)
		svc := NewImportService(repo, testLogger())

		sheet := newSheet(
			textRow("POSTO", "NOME"),
			textRow("MAJOR", "FULANO"),
			textRow("CAP", "BELTRANO"),
		)
		_, err := svc.Import(ctx, sheet, Options{})
		require.NoError(t, err)

		ranks, err := repo.ListRanks(ctx)
		require.NoError(t, err)
		assert.Contains(t, ranks, "Major")
		assert.Len(t, ranks, 11)
	})

	t.Run("rank failure does not abort", func(t *testing.T) {
		gw := &memGateway{rankErr: errors.New("catalog locked")}
		svc := NewImportService(gw, testLogger())

		sheet := newSheet(textRow("PG", "NOME"), textRow("CAP", "FULANO"))
		summary, err := svc.Import(ctx, sheet, Options{})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Inserted)
	})
}

func TestImport_HeaderNotFound(t *testing.T) {
	gw := &memGateway{}
	svc := NewImportService(gw, testLogger())

	sheet := newSheet(textRow("", ""), textRow(""))
	summary, err := svc.Import(context.Background(), sheet, Options{})
	assert.ErrorIs(t, err, sniffer.ErrNoHeaderFound)
	assert.Nil(t, summary)
}

func TestImport_GatewayErrorAborts(t *testing.T) {
	t.Run("without transactions writes stay", func(t *testing.T) {
		gw := &memGateway{failAfter: 2}
		svc := NewImportService(gw, testLogger())

		sheet := newSheet(
			textRow("NOME"),
			textRow("A"),
			textRow("B"),
			textRow("C"),
		)
		summary, err := svc.Import(context.Background(), sheet, Options{})
		assert.ErrorIs(t, err, errWrite)
		assert.Nil(t, summary)
		assert.Len(t, gw.records, 1)
	})

	t.Run("transaction rolls back", func(t *testing.T) {
		ctx := context.Background()
		repo := newSQLiteRepo(t)
		_, err := repo.Insert(ctx, repository.Record{
			Rank: "Capitão", FullName: "EXISTENTE", NationalID: "22222222222",
			PreschoolFlag: normalizer.No, PreschoolValue: "0",
			TransportFlag: normalizer.No, TransportValue: "0", HousingFlag: normalizer.No,
		})
		require.NoError(t, err)

		svc := NewImportService(repo, testLogger())

		// Both rows carry the same IDT, so the second insert violates the
		// unique index after the first one was written.
		sheet := newSheet(
			textRow("NOME", "CPF", "IDT"),
			textRow("NOVO", "33333333333", "1234567890"),
			textRow("OUTRO", "44444444444", "1234567890"),
		)
		summary, err := svc.Import(ctx, sheet, Options{})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.Nil(t, summary)

		all, err := repo.FetchAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "EXISTENTE", all[0].FullName)
	})
}

func TestImport_DryRun(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	svc := NewImportService(repo, testLogger())

	sheet := newSheet(
		textRow("POSTO", "NOME"),
		textRow("MAJOR", "FULANO"),
	)

	summary, err := svc.Import(ctx, sheet, Options{DryRun: true})
	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.Inserted)
	assert.True(t, strings.HasPrefix(summary.String(), "Simulação"))

	all, err := repo.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	ranks, err := repo.ListRanks(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ranks, "Major")
}

func TestImport_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	svc := NewImportService(&memGateway{}, testLogger()).WithMetrics(metrics)

	sheet := newSheet(textRow("NOME"), textRow("A"), textRow(""), textRow("B"))
	_, err := svc.Import(context.Background(), sheet, Options{})
	require.NoError(t, err)

	_, err = svc.Import(context.Background(), newSheet(), Options{})
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Rows.WithLabelValues("inserted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("failed")))
}

func TestImportFile_CSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "efetivo.csv")
	content := "\n\nP/G;NOME COMPLETO;CPF;PREC-CP\nCAP;JOAO DA SILVA;123.456.789-09;123456789\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	gw := &memGateway{}
	svc := NewImportService(gw, testLogger())

	summary, err := svc.ImportFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.HeaderRow)
	assert.Equal(t, 1, summary.Inserted)
	require.Len(t, gw.records, 1)
	assert.Equal(t, "123456789", gw.records[0].PrecedenceCode)
	assert.Equal(t, "Capitão", gw.records[0].Rank)
}

func TestSummary_String(t *testing.T) {
	gw := &memGateway{}
	svc := NewImportService(gw, testLogger())

	sheet := newSheet(
		textRow("P/G", "NOME COMPLETO", "CPF", "PREC-CP", "NASCIMENTO"),
		textRow("CAP", "JOAO", "1", "2", ""),
	)
	summary, err := svc.Import(context.Background(), sheet, Options{})
	require.NoError(t, err)

	out := summary.String()
	assert.True(t, strings.HasPrefix(out, "Inseridos: 1\nAtualizados: 0\nIgnorados: 0\n\nMapeamento de colunas:\n"))
	assert.Contains(t, out, "– Posto/Graduação: coluna 1 (P/G)")
	assert.Contains(t, out, "– IDT: NÃO ENCONTRADO")
	assert.NotContains(t, out, "Sem alteração")

	col, ok := summary.Column(sniffer.FieldBirthDate)
	require.True(t, ok)
	assert.Equal(t, 4, col.Index)
	assert.Equal(t, "NASCIMENTO", col.Header)
	assert.Len(t, summary.Columns, len(sniffer.Fields))
}
