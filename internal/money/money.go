package money

import (
	"errors"
	"fmt"
	"strings"
)

// Money represents a monetary value stored in minor units (centavos).
type Money = int64

// ErrInvalidAmount is returned when a decimal string cannot be parsed as money.
var ErrInvalidAmount = errors.New("invalid money amount")

// Parse converts a fixed-point decimal string such as "1234.56" into minor units.
// At most two fractional digits are accepted; a missing fraction is padded with zeros.
func Parse(value string) (Money, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart = s[:dot]
		fracPart = s[dot+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > 2 {
		return 0, ErrInvalidAmount
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}
	var total Money
	for _, digits := range []string{intPart, fracPart} {
		for _, ch := range digits {
			if ch < '0' || ch > '9' {
				return 0, ErrInvalidAmount
			}
			total = total*10 + Money(ch-'0')
		}
	}
	if negative {
		total = -total
	}
	return total, nil
}

// MustParse parses value and panics on failure. Intended for tests and seed data.
func MustParse(value string) Money {
	m, err := Parse(value)
	if err != nil {
		panic(fmt.Sprintf("money: %q: %v", value, err))
	}
	return m
}

// Format renders minor units as a fixed-point decimal string with two places.
func Format(m Money) string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%d.%02d", sign, m/100, m%100)
}

// DivRound divides n by d rounding half away from zero. d must be positive.
func DivRound(n, d int64) int64 {
	if d <= 0 {
		panic("money: non-positive divisor")
	}
	if n >= 0 {
		return (n + d/2) / d
	}
	return -((-n + d/2) / d)
}

// ApplyBps applies a basis-point rate (100 bps = 1%) to an amount,
// rounding half away from zero to the minor unit.
func ApplyBps(amount Money, bps int64) Money {
	return DivRound(amount*bps, 10_000)
}

// BpsFromPercent converts a percent string like "6.00" into basis points.
func BpsFromPercent(value string) (int64, error) {
	m, err := Parse(value)
	if err != nil {
		return 0, err
	}
	return m, nil
}

// PercentFromBps renders basis points as a percent string with two places.
func PercentFromBps(bps int64) string {
	return Format(bps)
}
