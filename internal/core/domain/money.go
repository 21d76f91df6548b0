package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is a currency amount in hundredths of the base unit.
// All arithmetic is exact integer arithmetic; two-decimal semantics
// are preserved end to end with no rounding redistribution.
type Money int64

// ParseMoney parses a decimal string such as "150.00", "1,50" or "7"
// into a Money value. At most two fraction digits are accepted.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, fmt.Errorf("parse amount: %w", ErrInvalidInput)
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	if s == "" || s == "." {
		return 0, fmt.Errorf("parse amount: %w", ErrInvalidInput)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("parse amount %q: more than two decimals: %w", s, ErrInvalidInput)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	// ParseInt tolerates a leading sign, which would let a stray sign
	// inside the fraction slip through. Digits only, both parts.
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, fmt.Errorf("parse amount %q: %w", s, ErrInvalidInput)
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, ErrInvalidInput)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, ErrInvalidInput)
	}

	value := units*100 + cents
	if negative {
		value = -value
	}
	return Money(value), nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MoneyFromFloat converts a float amount to Money, rounding to the
// nearest hundredth. Used at the gateway boundary where the remote
// delivers floating point values.
func MoneyFromFloat(f float64) Money {
	return Money(math.Round(f * 100))
}

// Float returns the amount as a float64. Boundary use only.
func (m Money) Float() float64 {
	return float64(m) / 100
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m > 0
}

// String formats the amount with exactly two decimals.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
