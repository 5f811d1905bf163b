package sniffer

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/normalizer"
)

// compiledField is a FieldSpec with its aliases folded and its substring
// automaton built.
type compiledField struct {
	spec     FieldSpec
	aliases  []string
	required map[string]bool
	matcher  *ahocorasick.Matcher
}

var compiled = compileFields(Fields)

func compileFields(specs []FieldSpec) []compiledField {
	out := make([]compiledField, 0, len(specs))
	for _, spec := range specs {
		cf := compiledField{spec: spec, required: make(map[string]bool)}

		seen := make(map[string]bool)
		patterns := make([][]byte, 0, len(spec.Aliases))
		for _, a := range spec.Aliases {
			n := NormalizeHeader(a)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			cf.aliases = append(cf.aliases, n)
			patterns = append(patterns, []byte(n))
		}
		for _, r := range spec.Required {
			cf.required[NormalizeHeader(r)] = true
		}
		cf.matcher = ahocorasick.NewMatcher(patterns)
		out = append(out, cf)
	}
	return out
}

// allowed applies the required-token gate to a normalized header. A header
// passes when one of its words is required, or when the header written
// without spaces is ("P/G" folds to "P G" and compacts to "PG").
func (f compiledField) allowed(header string) bool {
	if len(f.required) == 0 {
		return true
	}
	for _, tok := range strings.Fields(header) {
		if f.required[tok] {
			return true
		}
	}
	return f.required[strings.ReplaceAll(header, " ", "")]
}

func (f compiledField) exact(header string) bool {
	for _, a := range f.aliases {
		if a == header {
			return true
		}
	}
	return false
}

func (f compiledField) substring(header string) bool {
	if len(f.matcher.Match([]byte(header))) > 0 {
		return true
	}
	for _, a := range f.aliases {
		if strings.Contains(a, header) {
			return true
		}
	}
	return false
}

// ColumnMap is the outcome of resolving a header row: for each field key
// the column it reads from, if any.
type ColumnMap struct {
	headers []string
	index   map[FieldKey]int
}

// Resolve maps header names to field keys. Fields are visited in declared
// order and each claims at most one column; an exact alias match beats a
// substring one.
func Resolve(headers []string) ColumnMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	cm := ColumnMap{headers: headers, index: make(map[FieldKey]int, len(compiled))}
	claimed := make(map[int]bool)

	pick := func(f compiledField, match func(compiledField, string) bool) (int, bool) {
		for i, h := range normalized {
			if claimed[i] || h == "" {
				continue
			}
			if match(f, h) && f.allowed(h) {
				return i, true
			}
		}
		return 0, false
	}

	for _, f := range compiled {
		idx, ok := pick(f, compiledField.exact)
		if !ok {
			idx, ok = pick(f, compiledField.substring)
		}
		if ok {
			cm.index[f.spec.Key] = idx
			claimed[idx] = true
		}
	}
	return cm
}

// Index returns the 0-based column of key.
func (m ColumnMap) Index(key FieldKey) (int, bool) {
	i, ok := m.index[key]
	return i, ok
}

// Header returns the original header text of the column mapped to key.
func (m ColumnMap) Header(key FieldKey) string {
	i, ok := m.index[key]
	if !ok || i >= len(m.headers) {
		return ""
	}
	return m.headers[i]
}

// Cell returns the cell of row feeding key. Unmapped keys and short rows
// yield an empty cell.
func (m ColumnMap) Cell(row []normalizer.Cell, key FieldKey) normalizer.Cell {
	i, ok := m.index[key]
	if !ok || i >= len(row) {
		return normalizer.Empty()
	}
	return row[i]
}

// Mapped reports how many fields found a column.
func (m ColumnMap) Mapped() int {
	return len(m.index)
}
