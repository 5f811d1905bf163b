package bulletin

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	units    = []string{"zero", "um", "dois", "três", "quatro", "cinco", "seis", "sete", "oito", "nove"}
	teens    = []string{"dez", "onze", "doze", "treze", "catorze", "quinze", "dezesseis", "dezessete", "dezoito", "dezenove"}
	tens     = []string{"", "", "vinte", "trinta", "quarenta", "cinquenta", "sessenta", "setenta", "oitenta", "noventa"}
	hundreds = []string{"", "cento", "duzentos", "trezentos", "quatrocentos", "quinhentos", "seiscentos", "setecentos", "oitocentos", "novecentos"}
)

// belowThousand spells 1..999; 0 is empty.
func belowThousand(n int64) string {
	switch {
	case n <= 0:
		return ""
	case n == 100:
		return "cem"
	}

	var parts []string
	if c := n / 100; c > 0 {
		parts = append(parts, hundreds[c])
	}
	switch r := n % 100; {
	case r == 0:
	case r < 10:
		parts = append(parts, units[r])
	case r < 20:
		parts = append(parts, teens[r-10])
	case r%10 == 0:
		parts = append(parts, tens[r/10])
	default:
		parts = append(parts, tens[r/10]+" e "+units[r%10])
	}
	return strings.Join(parts, " e ")
}

// Cardinal spells a whole number in Portuguese ("nove", "mil duzentos e
// trinta e quatro"). Negative numbers are spelled as zero.
func Cardinal(n int64) string {
	if n <= 0 {
		return units[0]
	}

	millions := n / 1_000_000
	thousands := n % 1_000_000 / 1000
	rest := n % 1000

	var parts []string
	switch {
	case millions == 1:
		parts = append(parts, "um milhão")
	case millions > 1:
		parts = append(parts, belowThousand(millions)+" milhões")
	}
	switch {
	case thousands == 1:
		parts = append(parts, "mil")
	case thousands > 1:
		parts = append(parts, belowThousand(thousands)+" mil")
	}
	if rest > 0 {
		parts = append(parts, belowThousand(rest))
	}
	return strings.Join(parts, " ")
}

// Words spells an amount of reais, rounded to centavos: "um real",
// "duzentos e oitenta e seis reais e sessenta e seis centavos".
func Words(amount decimal.Decimal) string {
	amount = amount.Round(2)
	if amount.IsNegative() {
		amount = amount.Neg()
	}
	whole := amount.IntPart()
	cents := amount.Sub(decimal.NewFromInt(whole)).Shift(2).IntPart()

	currency := "reais"
	if whole == 1 {
		currency = "real"
	}
	s := Cardinal(whole) + " " + currency

	if cents > 0 {
		unit := "centavos"
		if cents == 1 {
			unit = "centavo"
		}
		s += " e " + belowThousand(cents) + " " + unit
	}
	return s
}
