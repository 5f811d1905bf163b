package bulletin

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
)

func TestTemplates_MissingFile(t *testing.T) {
	tpl, err := LoadTemplates(filepath.Join(t.TempDir(), "boletins.json"))
	require.NoError(t, err)

	assert.Equal(t, []string{VacationOrder}, tpl.Names())
	text, err := tpl.Text(VacationOrder)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Seja sacado o adicional de férias"))
}

func TestTemplates_AddEditRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "boletins.json")
	tpl, err := LoadTemplates(path)
	require.NoError(t, err)

	require.NoError(t, tpl.Add("Dispensa", "Seja dispensado <do serviço> & da escala"))
	assert.ErrorIs(t, tpl.Add("Dispensa", "x"), ErrTemplateExists)
	assert.ErrorIs(t, tpl.Add(VacationOrder, "x"), ErrTemplateExists)
	assert.ErrorIs(t, tpl.Add("  ", "x"), ErrTemplateName)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<do serviço> & da escala")
	assert.Contains(t, string(data), "\n    \"Dispensa\"")
	assert.NotContains(t, string(data), VacationOrder)

	require.NoError(t, tpl.Edit("Dispensa", "Dispensa médica", "novo texto"))
	assert.Equal(t, []string{VacationOrder, "Dispensa médica"}, tpl.Names())
	_, err = tpl.Text("Dispensa")
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	assert.ErrorIs(t, tpl.Edit(VacationOrder, VacationOrder, "x"), ErrBuiltinTemplate)
	assert.ErrorIs(t, tpl.Remove(VacationOrder), ErrBuiltinTemplate)
	assert.ErrorIs(t, tpl.Remove("nope"), ErrTemplateNotFound)

	reloaded, err := LoadTemplates(path)
	require.NoError(t, err)
	text, err := reloaded.Text("Dispensa médica")
	require.NoError(t, err)
	assert.Equal(t, "novo texto", text)

	require.NoError(t, reloaded.Remove("Dispensa médica"))
	again, err := LoadTemplates(path)
	require.NoError(t, err)
	assert.Equal(t, []string{VacationOrder}, again.Names())
}

func TestTemplates_Render(t *testing.T) {
	tpl, err := LoadTemplates(filepath.Join(t.TempDir(), "boletins.json"))
	require.NoError(t, err)
	require.NoError(t, tpl.Add("Curto", "Texto."))

	got, err := tpl.Render("Curto", []repository.Record{
		{Rank: "Cabo Efetivo Profissional", FullName: "Eva Nunes"},
		{Rank: "Major", FullName: "Zeca"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Texto.\n\nCb EP EVA NUNES\n\nMajor ZECA\n\n", got)

	_, err = tpl.Render("Curto", nil)
	assert.ErrorIs(t, err, ErrNoPeople)
	_, err = tpl.Render("nope", []repository.Record{{FullName: "x"}})
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}
