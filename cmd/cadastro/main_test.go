package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/allowance"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/export"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
)

// setupEnv points every configured path into a temporary directory.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "militares.db"))
	t.Setenv("PHOTOS_DIR", filepath.Join(dir, "fotos"))
	t.Setenv("TEMPLATES_FILE", filepath.Join(dir, "boletins.json"))
	t.Setenv("BACKUP_DIR", filepath.Join(dir, "backups"))
	t.Setenv("METRICS_TEXTFILE", filepath.Join(dir, "metrics.prom"))
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{}
	root := newRootCmd(a)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	a.close()
	return out.String(), err
}

func TestCLI_ImportListAndBulletins(t *testing.T) {
	dir := setupEnv(t)

	src := filepath.Join(dir, "planilha.csv")
	f, err := os.Create(src)
	require.NoError(t, err)
	require.NoError(t, export.WriteCSV(f, []repository.Record{{
		Rank: "3º Sargento", FullName: "ANA REIS", WarName: "Ana",
		NationalID: "12345678909", PrecedenceCode: "123456789",
		PreschoolFlag: repository.No, PreschoolValue: "0",
		TransportFlag: repository.Yes, TransportValue: "220.00",
		HousingFlag: repository.No,
	}}))
	require.NoError(t, f.Close())

	out, err := run(t, "import", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Inseridos: 1")

	metrics, err := os.ReadFile(filepath.Join(dir, "metrics.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `cadastro_import_runs_total{status="succeeded"} 1`)

	out, err = run(t, "import", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Sem alteração: 1")

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "3º SGT")
	assert.Contains(t, out, "ANA REIS")

	out, err = run(t, "transport", "cancel", "--days", "1:3:1")
	require.NoError(t, err)
	assert.Equal(t, "3º Sgt ANA REIS\nPrec-CP 123456789 CPF 123.456.789-09\nValor: R$ 20,00\n\n", out)

	out, err = run(t, "bulletin", "render", "Férias - Ordem de Saque", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "da 4ª Cia PE.\n\n3º Sgt ANA REIS\n\n")

	out, err = run(t, "backup")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "backups", "militares-"))
}

func TestCLI_AddAndShow(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "add", "--rank", "cap", "--name", "carla dias", "--cpf", "987.654.321-00")
	require.NoError(t, err)
	assert.Contains(t, out, "with id 1")

	out, err = run(t, "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Capitão")
	assert.Contains(t, out, "98765432100")

	_, err = run(t, "show", "2")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = run(t, "delete", "1")
	require.NoError(t, err)
	_, err = run(t, "show", "1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCLI_ExportKeepsStorageOrder(t *testing.T) {
	dir := setupEnv(t)

	_, err := run(t, "add", "--rank", "sd ef vrv", "--name", "beto lima", "--cpf", "123.456.789-09")
	require.NoError(t, err)
	_, err = run(t, "add", "--rank", "cap", "--name", "ana reis", "--cpf", "987.654.321-00")
	require.NoError(t, err)

	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Less(t, strings.Index(strings.ToUpper(out), "ANA REIS"), strings.Index(strings.ToUpper(out), "BETO LIMA"))

	path := filepath.Join(dir, "saida.csv")
	_, err = run(t, "export", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := strings.ToUpper(string(data))
	require.Contains(t, content, "ANA REIS")
	assert.Less(t, strings.Index(content, "BETO LIMA"), strings.Index(content, "ANA REIS"))
}

func TestParseDayCounts(t *testing.T) {
	days, err := parseDayCounts([]string{"3:2:0", " 7 : 0 : 1"})
	require.NoError(t, err)
	assert.Equal(t, map[int64]allowance.DayCount{3: {Black: 2}, 7: {Red: 1}}, days)

	for _, bad := range []string{"3:2", "x:1:1", "3:-1:0", "3:a:0"} {
		_, err := parseDayCounts([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1,2", "5", ""})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 5}, ids)

	_, err = parseIDs([]string{"0"})
	assert.Error(t, err)
}
