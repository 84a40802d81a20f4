package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// excelEpoch is day zero of spreadsheet serial dates (1900 date system).
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const (
	// minExcelSerial is 1954-10-03. Smaller integers are more likely years or
	// quantities than dates.
	minExcelSerial = 20000
	maxExcelSerial = 2958465 // 9999-12-31
)

var dayLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/06",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
}

var monthLayouts = []string{
	"1/2006",
	"1-2006",
	"2006-01",
	"2006/01",
}

// CellString renders any cell value as trimmed text.
func CellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case time.Time:
		return t.Format("2006-01-02")
	case json.Number:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// ParseDecimal accepts numbers and money-formatted strings ("$1.234,56", "Bs 12,5").
// It reports false for anything that is not a finite non-negative decimal.
func ParseDecimal(v interface{}) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, ok := parseDecimalString(t)
		if !ok {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// currencyMarks may precede or follow the amount. Longer marks come first so
// "Bs." is stripped whole.
var currencyMarks = []string{"us$", "usd", "bs.s", "bs.", "bss", "bs", "ves", "eur", "€", "$"}

// numberPattern is a single unsigned amount: digit groups joined by single
// separators, or a bare fraction such as ",5".
var numberPattern = regexp.MustCompile(`^(\d+([.,]\d+)*|[.,]\d+)$`)

func parseDecimalString(s string) (float64, bool) {
	clean := stripCurrency(s)
	if !numberPattern.MatchString(clean) {
		return 0, false
	}

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		dec, thousands := ",", "."
		if lastDot > lastComma {
			dec, thousands = ".", ","
		}
		i := strings.LastIndex(clean, dec)
		whole, frac := clean[:i], clean[i+1:]
		if strings.Contains(whole, dec) || !grouped(whole, thousands) {
			return 0, false
		}
		clean = strings.ReplaceAll(whole, thousands, "") + "." + frac
	case strings.Count(clean, ",") > 1:
		if !grouped(clean, ",") {
			return 0, false
		}
		clean = strings.ReplaceAll(clean, ",", "")
	case lastComma >= 0:
		clean = strings.Replace(clean, ",", ".", 1)
	case strings.Count(clean, ".") > 1:
		if !grouped(clean, ".") {
			return 0, false
		}
		clean = strings.ReplaceAll(clean, ".", "")
	}

	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// stripCurrency removes at most one currency mark on each side of the amount.
func stripCurrency(s string) string {
	s = strings.TrimSpace(s)
	for _, m := range currencyMarks {
		if len(s) >= len(m) && strings.EqualFold(s[:len(m)], m) {
			s = strings.TrimSpace(s[len(m):])
			break
		}
	}
	for _, m := range currencyMarks {
		if len(s) >= len(m) && strings.EqualFold(s[len(s)-len(m):], m) {
			s = strings.TrimSpace(s[:len(s)-len(m)])
			break
		}
	}
	return s
}

// grouped reports whether s is a thousands-grouped integer such as "1.234.567".
func grouped(s, sep string) bool {
	parts := strings.Split(s, sep)
	if len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}

// ParseDate accepts time values, spreadsheet serial numbers and common day-first
// layouts. Month-only values resolve to the last day of that month.
func ParseDate(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case float64:
		return fromSerial(t)
	case int:
		return fromSerial(float64(t))
	case int64:
		return fromSerial(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromSerial(f)
	case string:
		return parseDateString(t)
	}
	return time.Time{}, false
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if isDigits(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return time.Time{}, false
		}
		return fromSerial(float64(n))
	}
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.AddDate(0, 1, -1), true
		}
	}
	return time.Time{}, false
}

func fromSerial(f float64) (time.Time, bool) {
	if math.IsNaN(f) || f < minExcelSerial || f > maxExcelSerial {
		return time.Time{}, false
	}
	return excelEpoch.AddDate(0, 0, int(f)), true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
