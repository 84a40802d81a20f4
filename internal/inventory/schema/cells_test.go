package schema

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
		ok   bool
	}{
		{"float", 2.5, 2.5, true},
		{"int", 7, 7, true},
		{"json number", json.Number("3.25"), 3.25, true},
		{"plain string", "12.5", 12.5, true},
		{"decimal comma", "12,5", 12.5, true},
		{"latin thousands", "1.234,56", 1234.56, true},
		{"english thousands", "1,234.56", 1234.56, true},
		{"dotted thousands", "1.234.567", 1234567, true},
		{"comma thousands", "1,234,567", 1234567, true},
		{"currency", "$ 19.99", 19.99, true},
		{"bolivares", "Bs. 450,00", 450, true},
		{"zero", "0", 0, true},
		{"negative", "-3", 0, false},
		{"negative float", -1.0, 0, false},
		{"nan", math.NaN(), 0, false},
		{"inf", math.Inf(1), 0, false},
		{"text", "agotado", 0, false},
		{"only separators", ".,", 0, false},
		{"currency suffix", "12,5 Bs", 12.5, true},
		{"currency code", "USD 7", 7, true},
		{"euro", "€3,50", 3.5, true},
		{"bare fraction", ",5", 0.5, true},
		{"multiplication", "5 x 10", 0, false},
		{"words between numbers", "2 cajas de 10", 0, false},
		{"parenthetical", "10 (aprox 12)", 0, false},
		{"fraction slash", "3/4", 0, false},
		{"exponent", "1e3", 0, false},
		{"unit suffix", "10 uds", 0, false},
		{"broken grouping", "1.23.4", 0, false},
		{"two decimal marks", "1.234,5,6", 0, false},
		{"doubled separator", "1..5", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDecimal(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	tests := []struct {
		name string
		in   interface{}
		want time.Time
		ok   bool
	}{
		{"iso", "2025-03-09", day(2025, 3, 9), true},
		{"day first slash", "09/03/2025", day(2025, 3, 9), true},
		{"day first short", "9/3/2025", day(2025, 3, 9), true},
		{"day first dash", "09-03-2025", day(2025, 3, 9), true},
		{"two digit year", "09/03/25", day(2025, 3, 9), true},
		{"month only", "03/2025", day(2025, 3, 31), true},
		{"iso month", "2024-02", day(2024, 2, 29), true},
		{"excel serial", 45000.0, day(2023, 3, 15), true},
		{"excel serial string", "45000", day(2023, 3, 15), true},
		{"time value", day(2026, 1, 1), day(2026, 1, 1), true},
		{"garbage", "pronto", time.Time{}, false},
		{"empty", "", time.Time{}, false},
		{"negative serial", -5.0, time.Time{}, false},
		{"year only", "2025", time.Time{}, false},
		{"small integer string", "12", time.Time{}, false},
		{"year as number", 2025.0, time.Time{}, false},
		{"compact digits", "20250301", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", CellString(nil))
	assert.Equal(t, "abc", CellString("  abc "))
	assert.Equal(t, "2.5", CellString(2.5))
	assert.Equal(t, "10", CellString(10))
	assert.Equal(t, "2025-01-02", CellString(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))
}
