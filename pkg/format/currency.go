// Package format renders currency amounts and unit counts for display.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Compact returns a short currency string: millions with two decimals
// ("$1.29M"), thousands with none ("-$10K"), and whole dollars below that.
func Compact(amount float64) string {
	abs := decimal.NewFromFloat(math.Abs(amount))
	var body string
	switch {
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1000000)):
		body = abs.Div(decimal.NewFromInt(1000000)).StringFixed(2) + "M"
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1000)):
		body = abs.Div(decimal.NewFromInt(1000)).StringFixed(0) + "K"
	default:
		body = abs.StringFixed(0)
	}
	if amount < 0 && body != "0" {
		return "-$" + body
	}
	return "$" + body
}

// Units returns a volume rounded to the nearest whole unit with thousands
// separators (e.g., "403,636").
func Units(volume float64) string {
	return printer.Sprintf("%d", int64(math.Round(volume)))
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
