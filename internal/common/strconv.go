package common

import (
	"math"
	"strconv"
	"strings"
)

// AtoiDefault converts the provided string to an integer falling back to the default when parsing fails.
func AtoiDefault(value string, def int) int {
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

// ParseNonNegativeFloat coerces operator input to a usable non-negative
// number. Malformed, negative or non-finite values yield the fallback so the
// till never rejects a keystroke.
func ParseNonNegativeFloat(value string, def float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || parsed < 0 || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return def
	}
	return parsed
}

// ClampMoney coerces a monetary amount into the non-negative range.
func ClampMoney(value int64) int64 {
	if value < 0 {
		return 0
	}
	return value
}

// ClampQty coerces a line quantity to at least one unit.
func ClampQty(qty int) int {
	if qty < 1 {
		return 1
	}
	return qty
}
