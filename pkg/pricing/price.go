package pricing

import (
	"regexp"
	"strconv"
	"strings"
)

// Locale names the separator convention a site formats its prices in.
type Locale string

const (
	// LocaleTR: thousands '.', decimal ',' — "1.234,56 TL"
	LocaleTR Locale = "tr"
	// LocaleUS: thousands ',', decimal '.' — "$1,234.56"
	LocaleUS Locale = "us"
)

var numericRe = regexp.MustCompile(`[0-9][0-9.,]*`)

// Parse converts raw site price text into a number. It strips currency markers
// and whitespace, normalizes the locale's separators to a single decimal point
// and parses the result. The second return value is false for anything
// malformed or non-positive; callers must skip such records.
func Parse(text string, loc Locale) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	match := numericRe.FindString(text)
	if match == "" {
		return 0, false
	}

	switch loc {
	case LocaleUS:
		match = strings.ReplaceAll(match, ",", "")
	default:
		match = strings.ReplaceAll(match, ".", "")
		match = strings.ReplaceAll(match, ",", ".")
	}

	val, err := strconv.ParseFloat(match, 64)
	if err != nil || val <= 0 {
		return 0, false
	}
	return val, true
}
