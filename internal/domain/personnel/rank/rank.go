// Package rank knows the rank hierarchy and how ranks are abbreviated in
// rosters and bulletins.
package rank

import (
	"sort"
	"strings"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
)

// Hierarchy lists the ranks from most to least senior.
var Hierarchy = []string{
	"Capitão",
	"1º Tenente",
	"2º Tenente",
	"Subtenente",
	"1º Sargento",
	"2º Sargento",
	"3º Sargento",
	"Aspirante",
	"Cabo Efetivo Profissional",
	"Soldado Efetivo Profissional",
	"Soldado Efetivo Variável",
}

var position = func() map[string]int {
	m := make(map[string]int, len(Hierarchy))
	for i, r := range Hierarchy {
		m[r] = i
	}
	return m
}()

var upper = map[string]string{
	"Capitão":                      "CAP",
	"1º Tenente":                   "1º TEN",
	"2º Tenente":                   "2º TEN",
	"Subtenente":                   "ST",
	"1º Sargento":                  "1º SGT",
	"2º Sargento":                  "2º SGT",
	"3º Sargento":                  "3º SGT",
	"Aspirante":                    "ASP",
	"Cabo Efetivo Profissional":    "CB EF PROFL",
	"Soldado Efetivo Profissional": "SD EF PROFL",
	"Soldado Efetivo Variável":     "SD EF VRV",
}

var short = map[string]string{
	"Capitão":                      "Cap.",
	"1º Tenente":                   "1º Ten.",
	"2º Tenente":                   "2º Ten.",
	"Subtenente":                   "Sub Ten.",
	"1º Sargento":                  "1º Sgt",
	"2º Sargento":                  "2º Sgt",
	"3º Sargento":                  "3º Sgt",
	"Cabo Efetivo Profissional":    "Cb EP",
	"Soldado Efetivo Profissional": "Sd EP",
	"Soldado Efetivo Variável":     "Sd EV",
}

// Order returns the seniority position of name. Unknown ranks come after
// every known one.
func Order(name string) int {
	if i, ok := position[strings.TrimSpace(name)]; ok {
		return i
	}
	return len(Hierarchy)
}

// Upper returns the roster abbreviation ("1º SGT"). Unknown ranks are
// upper-cased.
func Upper(name string) string {
	name = strings.TrimSpace(name)
	if a, ok := upper[name]; ok {
		return a
	}
	return strings.ToUpper(name)
}

// Short returns the bulletin abbreviation ("1º Sgt"). Unknown ranks are
// returned as given.
func Short(name string) string {
	name = strings.TrimSpace(name)
	if a, ok := short[name]; ok {
		return a
	}
	return name
}

// Less orders records by rank seniority, then by full name.
func Less(a, b repository.Record) bool {
	oa, ob := Order(a.Rank), Order(b.Rank)
	if oa != ob {
		return oa < ob
	}
	return strings.ToUpper(a.FullName) < strings.ToUpper(b.FullName)
}

// Sort orders records in place by seniority then name.
func Sort(records []repository.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return Less(records[i], records[j])
	})
}
