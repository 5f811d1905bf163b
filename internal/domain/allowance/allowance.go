// Package allowance computes the transportation allowance and the 2%
// representation bonus from a rank's base stipend.
package allowance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidPeriod is returned when a period date is not dd/mm/yyyy.
var ErrInvalidPeriod = errors.New("invalid period")

// WorkDays is the number of days the transport allowance is paid for.
const WorkDays = 22

var (
	quotaRate = decimal.RequireFromString("0.06")
	bonusRate = decimal.RequireFromString("0.02")
	workDays  = decimal.NewFromInt(WorkDays)
	monthDays = decimal.NewFromInt(30)
	two       = decimal.NewFromInt(2)
)

// Transport is the monthly transport allowance breakdown.
type Transport struct {
	// Daily is the gross daily value (fares × 2); zero when computed from a
	// monthly total.
	Daily decimal.Decimal
	// Total is the gross value for WorkDays days.
	Total decimal.Decimal
	// Quota is the share paid by the person: 6% of the stipend prorated to
	// WorkDays out of 30.
	Quota decimal.Decimal
	// Net is what is stored as the allowance, never negative.
	Net decimal.Decimal
}

// ByMonthlyTotal computes the allowance from the gross monthly total.
func ByMonthlyTotal(total, stipend decimal.Decimal) Transport {
	quota := stipend.Mul(quotaRate).Mul(workDays).Div(monthDays)
	net := total.Sub(quota)
	if net.IsNegative() {
		net = decimal.Zero
	}
	return Transport{Total: total, Quota: quota, Net: net}
}

// ByFares computes the allowance from the one-way fares of a commute. Each
// fare is paid twice a day.
func ByFares(fares []decimal.Decimal, stipend decimal.Decimal) Transport {
	sum := decimal.Sum(decimal.Zero, fares...)
	daily := sum.Mul(two)
	t := ByMonthlyTotal(daily.Mul(workDays), stipend)
	t.Daily = daily
	return t
}

// Adjustment is the effect of unworked (black) and extra (red) days on a
// net allowance.
type Adjustment struct {
	Daily    decimal.Decimal // net / WorkDays
	Amount   decimal.Decimal // (red - black) × daily, may be negative
	NewNet   decimal.Decimal
	Discount decimal.Decimal // amount to cancel when black days exceed red ones
}

// Adjust applies black and red day counts to a net allowance.
func Adjust(net decimal.Decimal, black, red int) Adjustment {
	daily := decimal.Zero
	if net.IsPositive() {
		daily = net.Div(workDays)
	}

	amount := decimal.NewFromInt(int64(red - black)).Mul(daily)
	newNet := net.Add(amount)
	if newNet.IsNegative() {
		newNet = decimal.Zero
	}
	discount := decimal.NewFromInt(int64(black - red)).Mul(daily)
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	return Adjustment{Daily: daily, Amount: amount, NewNet: newNet, Discount: discount}
}

// BonusResult is the 2% representation bonus for a trip.
type BonusResult struct {
	Daily decimal.Decimal
	Days  int
	Total decimal.Decimal
}

// Bonus computes the representation bonus: 2% of the stipend per day.
func Bonus(stipend decimal.Decimal, days int) BonusResult {
	daily := stipend.Mul(bonusRate)
	return BonusResult{Daily: daily, Days: days, Total: daily.Mul(decimal.NewFromInt(int64(days)))}
}

// Period is a closed range of calendar days.
type Period struct {
	From time.Time
	To   time.Time
}

// ParsePeriod reads two dd/mm/yyyy dates. Reversed dates are swapped.
func ParsePeriod(from, to string) (Period, error) {
	a, err := time.Parse("02/01/2006", strings.TrimSpace(from))
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, from)
	}
	b, err := time.Parse("02/01/2006", strings.TrimSpace(to))
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, to)
	}
	if b.Before(a) {
		a, b = b, a
	}
	return Period{From: a, To: b}, nil
}

// Days counts the days of the period, both ends included.
func (p Period) Days() int {
	return int(p.To.Sub(p.From).Hours()/24) + 1
}

// DaysInclusive counts the days between two dd/mm/yyyy dates, both ends
// included ("05/06/2025" to "13/06/2025" is 9). Invalid dates yield 0.
func DaysInclusive(from, to string) int {
	p, err := ParsePeriod(from, to)
	if err != nil {
		return 0
	}
	return p.Days()
}
