// Package money converts between form amounts, integer minor units (cents)
// and display strings.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a raw amount cannot be read as a number.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrAmountOutOfRange is returned when an amount in cents exceeds MaxMinorUnits
// in either direction.
var ErrAmountOutOfRange = errors.New("amount out of range")

// MaxMinorUnits is the largest amount the invoices.amount column can hold.
const MaxMinorUnits = 1<<31 - 1

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(MaxMinorUnits)
)

// ParseAmount reads a form amount expressed in major units ("12.34").
// An empty value is read as zero.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ToMinorUnits converts a major-unit amount to cents, rounding half away from
// zero. The range is checked on the decimal so the result never wraps.
func ToMinorUnits(d decimal.Decimal) (int64, error) {
	cents := d.Mul(hundred).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return 0, ErrAmountOutOfRange
	}
	return cents.IntPart(), nil
}

// FromMinorUnits converts cents back to a major-unit amount.
func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatUSD renders cents the way en-US currency formatting does: "$1,234.56".
func FormatUSD(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	fixed := FromMinorUnits(cents).StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	b.WriteByte('$')
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
