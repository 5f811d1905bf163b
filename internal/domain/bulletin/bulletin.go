// Package bulletin writes the text of internal bulletins: the 2%
// representation bonus, transport allowance cancellations and free-form
// templates followed by a list of people.
package bulletin

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/allowance"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/normalizer"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/rank"
	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
	"github.com/FACorreiaa/cadastro-militares/pkg/money"
)

var (
	// ErrNoPeople is returned when a bulletin lists nobody.
	ErrNoPeople = errors.New("no people selected")
	// ErrNothingToCancel is returned when nobody has a discount to cancel.
	ErrNothingToCancel = errors.New("nenhum desconto a anular encontrado")
)

var months = []string{"JAN", "FEV", "MAR", "ABR", "MAI", "JUN", "JUL", "AGO", "SET", "OUT", "NOV", "DEZ"}

// AbbrevDate writes t the way bulletins do: "05 JUN 25".
func AbbrevDate(t time.Time) string {
	return fmt.Sprintf("%02d %s %02d", t.Day(), months[t.Month()-1], t.Year()%100)
}

// FormatCPF writes an 11 digit CPF as 123.456.789-09. Anything else is
// returned unchanged.
func FormatCPF(cpf string) string {
	d := normalizer.DigitsOnly(normalizer.Text(cpf))
	if len(d) != 11 {
		return cpf
	}
	return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
}

func personLines(b *strings.Builder, abbrev string, r repository.Record) {
	fmt.Fprintf(b, "%s %s\n", abbrev, strings.ToUpper(strings.TrimSpace(r.FullName)))
	fmt.Fprintf(b, "Prec-CP %s CPF %s\n", r.PrecedenceCode, FormatCPF(r.NationalID))
}

// BonusParams describe the trip a representation bonus pays for.
type BonusParams struct {
	Destination   string
	Purpose       string
	Authorization string
	Period        allowance.Period
}

// BonusBulletin writes the representation bonus order: a header paragraph
// about the trip, then one block per person in the given order.
func BonusBulletin(p BonusParams, lines []allowance.BonusLine) (string, error) {
	if len(lines) == 0 {
		return "", ErrNoPeople
	}

	from, to := AbbrevDate(p.Period.From), AbbrevDate(p.Period.To)

	var b strings.Builder
	fmt.Fprintf(&b, "Seja sacada a gratificação de representação normal (2%%), dos seguintes militares abaixo relacionados, "+
		"referente ao deslocamento a serviço, para a %s, em %s, com a finalidade de %s, tendo retornado em %s, "+
		"que teve seu deslocamento autorizado pelo %s.\n\n",
		strings.TrimSpace(p.Destination), from, strings.TrimSpace(p.Purpose), to, strings.TrimSpace(p.Authorization))

	for _, l := range lines {
		total := l.Bonus.Total.Round(2)
		personLines(&b, rank.Upper(l.Record.Rank), l.Record)
		fmt.Fprintf(&b, "Valor solicitado: %s (%s);\n", money.NewFromDecimal(total).Display(), Words(total))
		fmt.Fprintf(&b, "Período: %s a %s;\n", from, to)
		fmt.Fprintf(&b, "Quantidade de dias: %d (%s) dias\n\n", l.Bonus.Days, Cardinal(int64(l.Bonus.Days)))
	}
	return b.String(), nil
}

// CancellationBulletin lists the transport allowance to cancel for each
// person whose black days exceed the red ones.
func CancellationBulletin(items []allowance.Cancellation) (string, error) {
	var b strings.Builder
	for _, it := range items {
		discount := money.NewFromDecimal(it.Adjustment.Discount)
		if !discount.IsPositive() {
			continue
		}
		personLines(&b, rank.Short(it.Record.Rank), it.Record)
		fmt.Fprintf(&b, "Valor: %s\n\n", discount.Display())
	}
	if b.Len() == 0 {
		return "", ErrNothingToCancel
	}
	return b.String(), nil
}
