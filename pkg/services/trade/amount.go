package trade

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numeral accepts an optional sign, digits and an optional fraction. Exponent
// notation is not part of the ledger format.
var numeral = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// ParseAmount converts a monetary field into an exact decimal. Grouping commas
// are dropped before parsing. It returns false for blank or malformed text; a
// zero amount is a valid result.
func ParseAmount(text string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, ",", "")
	if !numeral.MatchString(s) {
		return decimal.Zero, false
	}
	s = strings.TrimPrefix(s, "+")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
