// Package money provides fixed-point dollar amounts for usage accounting.
//
// Amounts are stored as int64 nanodollars (1 USD = 1_000_000_000), so cost
// accumulation is pure integer arithmetic: repeated increments never drift
// the way float64 does.
package money

import (
	"fmt"
	"strings"
)

// NanosPerDollar is the number of nanodollars in one dollar.
const NanosPerDollar = 1_000_000_000

// Amount is a dollar amount in nanodollars.
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// FromDollars converts whole dollars to an Amount.
func FromDollars(d int64) Amount {
	return Amount(d * NanosPerDollar)
}

// Parse converts a decimal dollar string ("8", "8.0", "0.013") to an Amount.
// At most 9 fractional digits are accepted; anything finer cannot be
// represented exactly and is rejected rather than rounded.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if len(frac) > 9 {
		return 0, fmt.Errorf("amount %q has more than 9 fractional digits", s)
	}

	var nanos int64
	for _, c := range whole {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		nanos = nanos*10 + int64(c-'0')
		if nanos > (1<<62)/NanosPerDollar {
			return 0, fmt.Errorf("amount %q overflows", s)
		}
	}
	nanos *= NanosPerDollar

	scale := int64(NanosPerDollar / 10)
	for _, c := range frac {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		nanos += int64(c-'0') * scale
		scale /= 10
	}

	if neg {
		nanos = -nanos
	}
	return Amount(nanos), nil
}

// MustParse parses a decimal dollar string or panics. For constants in tests
// and config defaults.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String renders the amount as a canonical decimal dollar string with
// trailing fractional zeros trimmed ("8", "3.5", "0.013").
func (a Amount) String() string {
	nanos := int64(a)
	sign := ""
	if nanos < 0 {
		sign = "-"
		nanos = -nanos
	}

	whole := nanos / NanosPerDollar
	frac := nanos % NanosPerDollar
	if frac == 0 {
		return fmt.Sprintf("%s%d", sign, whole)
	}

	fracStr := strings.TrimRight(fmt.Sprintf("%09d", frac), "0")
	return fmt.Sprintf("%s%d.%s", sign, whole, fracStr)
}

// Dollars returns the amount as a float64. Display only; never feed the
// result back into accounting arithmetic.
func (a Amount) Dollars() float64 {
	return float64(a) / NanosPerDollar
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool { return a < 0 }

// ClampZero returns the amount, floored at zero.
func (a Amount) ClampZero() Amount {
	if a < 0 {
		return 0
	}
	return a
}

// UnitPrice is the price of a single metered unit in nanodollars.
//
// Prices are configured in dollars per 1000 units, the convention of LLM
// providers. One nanodollar per unit equals one microdollar per 1000 units,
// so any per-1k price with at most six fractional digits converts exactly.
type UnitPrice int64

// ParseUnitPrice converts a dollars-per-1000-units decimal string into a
// per-unit price. Prices finer than $0.000001 per 1000 units are rejected:
// they have no exact per-unit representation.
func ParseUnitPrice(perThousand string) (UnitPrice, error) {
	a, err := Parse(perThousand)
	if err != nil {
		return 0, fmt.Errorf("unit price: %w", err)
	}
	if a < 0 {
		return 0, fmt.Errorf("unit price %q is negative", perThousand)
	}
	if a%1000 != 0 {
		return 0, fmt.Errorf("unit price %q has more than 6 fractional digits per 1000 units", perThousand)
	}
	return UnitPrice(a / 1000), nil
}

// Cost returns the exact cost of the given unit count.
func (p UnitPrice) Cost(units int64) Amount {
	return Amount(units * int64(p))
}

// PerThousand returns the price of 1000 units as an Amount.
func (p UnitPrice) PerThousand() Amount {
	return Amount(int64(p) * 1000)
}
