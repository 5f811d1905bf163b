package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/cadastro-militares/pkg/money"
)

const (
	Yes = "Sim"
	No  = "Não"
)

var (
	nonDigit     = regexp.MustCompile(`\D+`)
	yearPattern  = regexp.MustCompile(`(19|20)\d{2}`)
	leadingWord  = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ]+`)
	noTokens     = map[string]bool{"X": true, "NAO": true, "NÃO": true, "N": true, "NAO TEM": true, "NADA": true, "N/T": true, "NA": true}
	yesTokens    = map[string]bool{"SIM": true, "S": true}
	rankByAbbrev = map[string]string{
		"CAP":         "Capitão",
		"1º TEN":      "1º Tenente",
		"1° TEN":      "1º Tenente",
		"2º TEN":      "2º Tenente",
		"2° TEN":      "2º Tenente",
		"ST":          "Subtenente",
		"1º SGT":      "1º Sargento",
		"1° SGT":      "1º Sargento",
		"2º SGT":      "2º Sargento",
		"2° SGT":      "2º Sargento",
		"3º SGT":      "3º Sargento",
		"3° SGT":      "3º Sargento",
		"ASP":         "Aspirante",
		"SD EF PROFL": "Soldado Efetivo Profissional",
		"SD EF VRV":   "Soldado Efetivo Variável",
		"CB EF PROFL": "Cabo Efetivo Profissional",
	}
)

// DigitsOnly keeps the decimal digits of the cell's textual form.
func DigitsOnly(c Cell) string {
	return nonDigit.ReplaceAllString(c.String(), "")
}

// Money returns the amount as a plain decimal string with two fraction
// digits, or "0" when the cell is absent, unparseable or not positive.
func Money(c Cell) string {
	if c.IsBlank() {
		return "0"
	}

	var (
		amount decimal.Decimal
		err    error
	)
	if c.Kind == KindNumber {
		amount = decimal.NewFromFloat(c.Number)
	} else {
		amount, err = money.ParseDecimal(c.String())
		if err != nil {
			return "0"
		}
	}

	if !amount.IsPositive() {
		return "0"
	}
	return amount.StringFixedBank(2)
}

// IsZeroMoney reports whether a normalized amount means "no value".
func IsZeroMoney(v string) bool {
	return v == "" || v == "0"
}

// Year extracts a formation year. Numbers yield their integer part; text
// yields the first 19xx/20xx run found anywhere in it.
func Year(c Cell) string {
	if c.IsBlank() {
		return ""
	}
	if c.Kind == KindNumber {
		return strconv.FormatInt(int64(c.Number), 10)
	}
	return yearPattern.FindString(c.String())
}

// YesNo maps the usual spreadsheet markers to "Sim" or "Não". Anything
// else is undetermined and yields "".
func YesNo(c Cell) string {
	s := strings.ToUpper(Clean(c))
	switch {
	case noTokens[s]:
		return No
	case yesTokens[s]:
		return Yes
	default:
		return ""
	}
}

// FirstGivenName returns the first word of a full name, capitalized.
func FirstGivenName(fullName string) string {
	s := strings.TrimSpace(fullName)
	if s == "" {
		return ""
	}
	if m := leadingWord.FindString(s); m != "" {
		return capitalize(m)
	}
	return capitalize(strings.Fields(s)[0])
}

// ExpandRank turns an abbreviated rank into its catalog name. Unknown
// values are title-cased and kept as a new rank name.
func ExpandRank(raw string) string {
	abbrev := strings.ToUpper(strings.TrimSpace(raw))
	if abbrev == "" {
		return ""
	}
	if full, ok := rankByAbbrev[abbrev]; ok {
		return full
	}
	return TitleCase(abbrev)
}

// TitleCase upper-cases the first cased letter of every word and
// lower-cases the rest. A word starts after any uncased character.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		if prevCased {
			r = unicode.ToLower(r)
		} else {
			r = unicode.ToTitle(r)
		}
		b.WriteRune(r)
		prevCased = isCased(r)
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToTitle(runes[0])
	return string(runes)
}

func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r) || unicode.Is(unicode.Other_Lowercase, r)
}
