// Package money converts between decimal amounts at the API boundary and the
// int64 minor units (1/100 of the currency unit) stored and summed internally.
package money

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places held in minor units.
const Scale = 2

// ErrOutOfRange is returned by Parse for amounts that do not fit in int64
// minor units.
var ErrOutOfRange = errors.New("money: amount out of range")

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// ToDecimal converts minor units to a decimal amount.
func ToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -Scale)
}

// FromDecimal converts a decimal amount to minor units, rounding half away from zero.
func FromDecimal(d decimal.Decimal) int64 {
	return d.Shift(Scale).Round(0).IntPart()
}

// FromFloat converts a float amount to minor units without the truncation
// error of int64(f*100).
func FromFloat(f float64) int64 {
	return FromDecimal(decimal.NewFromFloat(f))
}

// ToFloat converts minor units to a float for JSON responses.
func ToFloat(minor int64) float64 {
	return ToDecimal(minor).InexactFloat64()
}

// Format renders minor units with exactly two decimals, e.g. 12050 -> "120.50".
func Format(minor int64) string {
	return ToDecimal(minor).StringFixed(Scale)
}

// Parse parses a decimal string into minor units.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	minor := d.Shift(Scale).Round(0)
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return 0, ErrOutOfRange
	}
	return minor.IntPart(), nil
}

// ParseLenient parses a non-negative amount. Blank, malformed and negative
// input all yield 0.
func ParseLenient(s string) int64 {
	v, err := Parse(s)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// Amount is a non-negative money value that decodes leniently from JSON. It
// accepts numbers, numeric strings and null; anything else decodes to zero.
type Amount int64

// Minor returns the amount in minor units.
func (a Amount) Minor() int64 {
	return int64(a)
}

// UnmarshalJSON never fails; invalid input becomes zero.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = 0
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	*a = Amount(ParseLenient(s))
	return nil
}

// MarshalJSON renders the amount as a JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(Format(int64(a))), nil
}
