package bulletin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/rank"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateExists   = errors.New("a template with this name already exists")
	ErrBuiltinTemplate  = errors.New("built-in templates cannot be changed")
	ErrTemplateName     = errors.New("template name is required")
)

// VacationOrder is the name of the built-in vacation bonus template.
const VacationOrder = "Férias - Ordem de Saque"

var builtins = map[string]string{
	VacationOrder: "Seja sacado o adicional de férias, relativo ao ano de 2024, " +
		"de acordo com o que prescreve a alínea “d” do inciso II do art. 2º da MP nº 2.215-10, " +
		"de 31 AGO 01, em favor dos militares abaixo relacionados, em virtude de estar previsto para gozar férias " +
		"(30 dias) no mês de SET 25, no 7º período (15 SE25 a 12 AGO 25), conforme publicado no BI Nr 219, " +
		"de 14 NOV 2024, da 4ª Cia PE.",
}

// Templates holds the bulletin templates: the built-in ones plus those the
// user saved, persisted as a JSON object of name to text. Only user
// templates are written to the file.
type Templates struct {
	mu   sync.RWMutex
	path string
	user map[string]string
}

// LoadTemplates reads the user templates of path. A missing file means no
// user templates.
func LoadTemplates(path string) (*Templates, error) {
	t := &Templates{path: path, user: map[string]string{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return t, nil
	}
	if err := json.Unmarshal(data, &t.user); err != nil {
		return nil, fmt.Errorf("failed to parse templates %s: %w", path, err)
	}
	for name := range builtins {
		delete(t.user, name)
	}
	return t, nil
}

// Names lists the built-in templates first, then the user ones, each
// group sorted.
func (t *Templates) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(builtins)+len(t.user))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)

	user := make([]string, 0, len(t.user))
	for name := range t.user {
		user = append(user, name)
	}
	slices.Sort(user)
	return append(names, user...)
}

// Text returns the text of template name.
func (t *Templates) Text(name string) (string, error) {
	if text, ok := builtins[name]; ok {
		return text, nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	text, ok := t.user[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return text, nil
}

// IsBuiltin reports whether name is a built-in template.
func (t *Templates) IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

func (t *Templates) exists(name string) bool {
	_, ok := t.user[name]
	return ok || t.IsBuiltin(name)
}

// Add saves a new template.
func (t *Templates) Add(name, text string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrTemplateName
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.exists(name) {
		return fmt.Errorf("%w: %q", ErrTemplateExists, name)
	}
	t.user[name] = text
	return t.save()
}

// Edit replaces the text of a user template and renames it when newName
// differs from name.
func (t *Templates) Edit(name, newName, text string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrTemplateName
	}
	if t.IsBuiltin(name) {
		return fmt.Errorf("%w: %q", ErrBuiltinTemplate, name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.user[name]; !ok {
		return fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	if newName != name && t.exists(newName) {
		return fmt.Errorf("%w: %q", ErrTemplateExists, newName)
	}

	delete(t.user, name)
	t.user[newName] = text
	return t.save()
}

// Remove deletes a user template.
func (t *Templates) Remove(name string) error {
	if t.IsBuiltin(name) {
		return fmt.Errorf("%w: %q", ErrBuiltinTemplate, name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.user[name]; !ok {
		return fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	delete(t.user, name)
	return t.save()
}

// save must be called with the write lock held.
func (t *Templates) save() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(t.user); err != nil {
		return fmt.Errorf("failed to encode templates: %w", err)
	}

	if dir := filepath.Dir(t.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create templates directory: %w", err)
		}
	}
	if err := os.WriteFile(t.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to save templates: %w", err)
	}
	return nil
}

// Render writes template name followed by one "{rank} {NAME}" paragraph
// per person, in the given order.
func (t *Templates) Render(name string, people []repository.Record) (string, error) {
	if len(people) == 0 {
		return "", ErrNoPeople
	}
	text, err := t.Text(name)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\n")
	for _, p := range people {
		fmt.Fprintf(&b, "%s %s\n\n", rank.Short(p.Rank), strings.ToUpper(p.FullName))
	}
	return b.String(), nil
}
