package normalizer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only textual date format stored for a record.
const DateLayout = "02/01/2006"

var (
	// Epoch1900 is the day zero of the default workbook date system.
	Epoch1900 = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	// Epoch1904 is the day zero of workbooks saved with the 1904 date system.
	Epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)
)

var ptMonths = map[string]time.Month{
	"JAN": time.January, "FEV": time.February, "MAR": time.March,
	"ABR": time.April, "MAI": time.May, "JUN": time.June,
	"JUL": time.July, "AGO": time.August, "SET": time.September,
	"OUT": time.October, "NOV": time.November, "DEZ": time.December,
}

var ptMonthDate = regexp.MustCompile(`(?i)^(\d{1,2})\s+([a-z]{3})\s+(\d{2,4})$`)

// dateFormat describes one accepted textual layout. The capture groups
// hold day, month and year in the positions given.
type dateFormat struct {
	re               *regexp.Regexp
	day, month, year int
	twoDigitYear     bool
}

// Tried in order, first match wins.
var dateFormats = []dateFormat{
	{re: regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), day: 1, month: 2, year: 3},
	{re: regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`), day: 1, month: 2, year: 3, twoDigitYear: true},
	{re: regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`), day: 3, month: 2, year: 1},
	{re: regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`), day: 1, month: 2, year: 3},
	{re: regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{2})$`), day: 1, month: 2, year: 3, twoDigitYear: true},
	{re: regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`), day: 1, month: 2, year: 3},
}

// Date converts a cell into dd/mm/yyyy. Date-time cells are formatted
// directly, numbers (and all-digit text) are day serials counted from
// epoch, and text is tried against the Portuguese "05 JUN 25" form and
// then the numeric layouts. Two-digit years are read as 2000+yy. Returns
// "" when nothing applies.
func Date(c Cell, epoch time.Time) string {
	if c.Kind == KindEmpty || (c.Kind == KindText && strings.TrimSpace(c.Text) == "") {
		return ""
	}

	switch c.Kind {
	case KindTime:
		return c.Time.Format(DateLayout)
	case KindNumber:
		if t, ok := FromSerial(c.Number, epoch); ok {
			return t.Format(DateLayout)
		}
	case KindText:
		if isASCIIDigits(c.Text) {
			if v, err := strconv.ParseFloat(c.Text, 64); err == nil {
				if t, ok := FromSerial(v, epoch); ok {
					return t.Format(DateLayout)
				}
			}
		}
	}

	s := strings.TrimSpace(c.String())

	if m := ptMonthDate.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		if month, ok := ptMonths[strings.ToUpper(m[2])]; ok {
			if t, ok := makeDate(year, month, day); ok {
				return t.Format(DateLayout)
			}
		}
	}

	for _, f := range dateFormats {
		m := f.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		day, _ := strconv.Atoi(m[f.day])
		month, _ := strconv.Atoi(m[f.month])
		year, _ := strconv.Atoi(m[f.year])
		if f.twoDigitYear {
			year += 2000
		}
		if t, ok := makeDate(year, time.Month(month), day); ok {
			return t.Format(DateLayout)
		}
	}

	return ""
}

// FromSerial converts a workbook day serial into a time. Serials below 60
// in the 1900 system are shifted by one day to undo the fictitious
// 29/02/1900 the format carries.
func FromSerial(serial float64, epoch time.Time) (time.Time, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, false
	}
	days, frac := math.Modf(serial)
	if frac < 0 {
		days--
		frac++
	}
	if serial >= 0 && serial < 60 && epoch.Equal(Epoch1900) {
		days++
	}
	if math.Abs(days) > 3_000_000 {
		return time.Time{}, false
	}

	ms := math.Round(frac * 86_400_000)
	t := epoch.AddDate(0, 0, int(days)).Add(time.Duration(ms) * time.Millisecond)
	if t.Year() < 1 || t.Year() > 9999 {
		return time.Time{}, false
	}
	return t, true
}

func makeDate(year int, month time.Month, day int) (time.Time, bool) {
	if year < 1 || year > 9999 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
