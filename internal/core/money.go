// Package core holds the spend plan document model and the rules that keep it canonical.
//
// This file contains parsing for amounts typed by a user, as opposed to amounts
// that arrive already numeric inside a JSON document.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a decimal string into an amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted, as is a leading
// sign. Thousands separators are not.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("-5")     -> -5, nil
//	ParseAmount("1.2.3")  -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.Count(s, ",") > 1 || (strings.Contains(s, ",") && strings.Contains(s, ".")) {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "eE") {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	f, _ := d.Float64()
	return f, nil
}

// CoerceAmount parses s like ParseAmount but falls back to 0 when s is not a number.
// The second result reports whether s parsed cleanly.
func CoerceAmount(s string) (float64, bool) {
	f, err := ParseAmount(s)
	if err != nil {
		return 0, false
	}
	return f, true
}
