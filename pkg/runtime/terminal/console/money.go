package console

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const currency = "NZD"

// moneyFormatter renders minor units as "1,234.56 NZD".
var moneyFormatter = money.NewFormatter(2, ".", ",", currency, "1 $")

var (
	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
	minMinorUnits = decimal.NewFromInt(-math.MaxInt64)
)

// formatMoney rounds half away from zero to cents and groups thousands.
func formatMoney(d decimal.Decimal) string {
	minor := d.Shift(2).Round(0)
	if minor.GreaterThan(maxMinorUnits) || minor.LessThan(minMinorUnits) {
		return d.StringFixed(2) + " " + currency
	}
	return moneyFormatter.Format(minor.IntPart())
}
