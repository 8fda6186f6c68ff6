package util

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var reNonPriceChars = regexp.MustCompile(`[^0-9.]`)

// PriceNumber reduces a display price ("1,299.00 EUR") to its numeric form
// for the import sheet. Everything except digits and dots is stripped; the
// survivor is normalized through decimal when it parses, and returned as-is
// when it does not.
func PriceNumber(display string) string {
	digits := reNonPriceChars.ReplaceAllString(display, "")
	if digits == "" {
		return ""
	}
	parsed, err := decimal.NewFromString(digits)
	if err != nil {
		return digits
	}
	return parsed.String()
}
