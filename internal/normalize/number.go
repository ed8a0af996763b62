package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	decimalPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
	intPrefix     = regexp.MustCompile(`^[+-]?\d+`)
)

// Decimal reads the leading number of s. Thousands separators made of
// spaces are dropped and the decimal comma is accepted. Text without a
// leading number yields zero.
func Decimal(s string) decimal.Decimal {
	m := decimalPrefix.FindString(numericText(s))
	if m == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(m, "."))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Int reads the leading integer of s; "12.7" gives 12 and "abc" gives 0.
func Int(s string) int {
	m := intPrefix.FindString(numericText(s))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

func numericText(s string) string {
	return strings.ReplaceAll(Value(s, true), " ", "")
}
