// Package money represents monetary amounts as integer minor units so
// arithmetic over item costs and running totals never drifts.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Cents is a non-negative amount in minor units.
type Cents int64

// ErrInvalidAmount indicates an unparseable or negative amount string.
var ErrInvalidAmount = errors.New("money: invalid amount")

// ParseAmount converts a decimal string to cents. Both dot and comma decimal
// separators are accepted; a third decimal place rounds half-up. Negative
// amounts are rejected.
func ParseAmount(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		if fracPart == "" {
			return 0, ErrInvalidAmount
		}
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Leave headroom for the fractional cents and round-up so the
	// multiplication cannot wrap.
	if whole > math.MaxInt64/100-1 {
		return 0, ErrInvalidAmount
	}
	cents := whole * 100
	switch len(fracPart) {
	case 0:
	case 1:
		d, _ := strconv.ParseInt(fracPart, 10, 64)
		cents += d * 10
	default:
		d, err := strconv.ParseInt(fracPart[:2], 10, 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		cents += d
		if len(fracPart) > 2 && fracPart[2] >= '5' {
			cents++
		}
	}
	return Cents(cents), nil
}

// String renders the amount as a dot-separated decimal.
func (c Cents) String() string {
	return fmt.Sprintf("%d.%02d", c/100, c%100)
}

// ClampedSub subtracts b from a, flooring at zero. Running totals use this so
// prior drift can never drive a total negative.
func ClampedSub(a, b Cents) Cents {
	if b >= a {
		return 0
	}
	return a - b
}
