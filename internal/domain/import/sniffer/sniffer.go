// Package sniffer locates the header row of a personnel sheet and maps its
// columns to record fields.
package sniffer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/import/normalizer"
)

// MaxHeaderScan is how many leading rows are searched for the header.
const MaxHeaderScan = 10

// ErrNoHeaderFound is returned when the first rows of a sheet are all blank.
var ErrNoHeaderFound = errors.New("no header row found in the first 10 rows")

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Header is the detected header row.
type Header struct {
	Row   int      // 1-based row number in the sheet
	Names []string // trimmed header texts, one per column
}

// FindHeader returns the first of the leading rows holding any non-empty
// cell.
func FindHeader(rows [][]normalizer.Cell) (*Header, error) {
	for i, row := range rows {
		if i >= MaxHeaderScan {
			break
		}
		if !hasValue(row) {
			continue
		}
		names := make([]string, len(row))
		for j, c := range row {
			names[j] = normalizer.Clean(c)
		}
		return &Header{Row: i + 1, Names: names}, nil
	}
	return nil, ErrNoHeaderFound
}

func hasValue(row []normalizer.Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return true
		}
	}
	return false
}

// NormalizeHeader folds a header for comparison: diacritics stripped, runs
// of anything but ASCII letters and digits collapsed to one space, upper
// case.
func NormalizeHeader(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))), s)
	if err != nil {
		folded = s
	}
	folded = nonAlnum.ReplaceAllString(folded, " ")
	return strings.ToUpper(strings.Join(strings.Fields(folded), " "))
}

// Fingerprint hashes the normalized header names so repeated uploads of
// the same sheet layout can be recognised in logs.
func Fingerprint(headers []string) string {
	normalized := make([]string, 0, len(headers))
	for _, h := range headers {
		if n := NormalizeHeader(h); n != "" {
			normalized = append(normalized, n)
		}
	}
	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}

// DetectDelimiter picks the CSV separator occurring most often in the first
// non-blank line of sample. Falls back to ';', the usual choice of spreadsheets saved
// with a Brazilian locale.
func DetectDelimiter(sample []byte) rune {
	line := strings.TrimLeft(string(sample), "\r\n")
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}

	best, bestCount := ';', 0
	for _, d := range []rune{';', '\t', ',', '|'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
