package importer

import (
	"bufio"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// parseState drives the header-seeking loop shared by the CSV parsers.
// Statement exports carry preamble rows (account metadata, blank lines)
// before the real header; parsers stay in stateSeekingHeader until a row
// matches the expected header shape, then consume everything after it.
type parseState int

const (
	stateSeekingHeader parseState = iota
	stateConsumingRows
)

// ParseAmount converts a statement amount cell to signed cents. Thousands
// separators, stray quotes and currency symbols are stripped; a value in
// parentheses is negative (accounting convention). Non-numeric content
// yields zero so one malformed cell cannot abort a whole file.
func ParseAmount(raw string) int64 {
	s := strings.NewReplacer(",", "", `"`, "", "$", "").Replace(raw)
	s = strings.TrimSpace(s)
	if inner, ok := strings.CutPrefix(s, "("); ok {
		if inner, ok = strings.CutSuffix(inner, ")"); ok {
			return -centsFromDecimal(strings.TrimSpace(inner))
		}
	}
	return centsFromDecimal(s)
}

func centsFromDecimal(s string) int64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(f * 100))
}

// ParseDateMDY converts a slash-separated month/day/year date to ISO form.
// The second return is false for anything that is not a valid calendar date.
func ParseDateMDY(raw string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 3 {
		return "", false
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", false
	}
	d, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", false
	}
	y, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", false
	}
	if m < 1 || m > 12 || d < 1 {
		return "", false
	}
	// time.Date normalizes out-of-range days; round-trip to reject them.
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return "", false
	}
	return t.Format(time.DateOnly), true
}

// excelSerialDate converts a spreadsheet serial-day number to an ISO date.
// The epoch is 1899-12-30, which absorbs the 1900 leap-year bug.
func excelSerialDate(serial float64) string {
	base := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, int(serial)).Format(time.DateOnly)
}

// newCSVReader configures a reader tolerant of the loose shapes statement
// exports arrive in: ragged field counts and unescaped quotes in cells.
func newCSVReader(r io.Reader) *csv.Reader {
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1
	csvr.LazyQuotes = true
	return csvr
}
