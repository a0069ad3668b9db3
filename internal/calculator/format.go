package calculator

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Messages for input that is not a number at all.
const (
	InvalidBillMessage   = "Enter a valid bill amount"
	InvalidTipMessage    = "Enter a valid tip percentage"
	InvalidPeopleMessage = "Enter a valid number of people"
)

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatCurrency renders v as dollars with two decimals, e.g. "$30.00".
func FormatCurrency(v float64) string {
	r := Round2(v)
	if r < 0 {
		return fmt.Sprintf("-$%.2f", -r)
	}
	// avoid "$-0.00"
	if r == 0 {
		r = 0
	}
	return fmt.Sprintf("$%.2f", r)
}

// FormatPercent renders a tip percentage without trailing zeros, e.g. "15%" or "12.5%".
func FormatPercent(pct float64) string {
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

// MaxValue bounds what ParseAmount and ParsePercent accept, keeping every
// derived amount finite.
const MaxValue = 1e12

// plainDecimal is digits with at most one decimal point and an optional
// sign. Exponents, hex and underscores are not something people type into a
// bill field.
var plainDecimal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// ParseAmount parses a money amount typed by a user. Surrounding space and
// a leading "$" are ignored, "," is accepted as the decimal separator and a
// blank string is zero.
func ParseAmount(raw string) (float64, error) {
	return parseDecimal(raw, "$", "")
}

// ParsePercent parses a percentage typed by a user, like ParseAmount but
// with an optional trailing "%" instead of a leading "$".
func ParsePercent(raw string) (float64, error) {
	return parseDecimal(raw, "", "%")
}

func parseDecimal(raw, prefix, suffix string) (float64, error) {
	s := strings.TrimSpace(raw)
	if prefix != "" {
		s = strings.TrimPrefix(s, prefix)
	}
	if suffix != "" {
		s = strings.TrimSuffix(s, suffix)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	if !plainDecimal.MatchString(s) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, raw)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, raw)
	}
	if math.Abs(v) > MaxValue {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidInput, raw)
	}
	return v, nil
}

// ParsePeople parses a whole head count. A blank string is zero.
func ParsePeople(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidInput, raw)
	}
	return n, nil
}
