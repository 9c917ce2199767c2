package trade

import "github.com/shopspring/decimal"

// TopEntry returns the code with the largest value. Ties go to the
// lexicographically smallest code so the result never depends on map order.
func TopEntry(values map[string]decimal.Decimal) (string, decimal.Decimal, bool) {
	var (
		bestCode  string
		bestValue decimal.Decimal
		found     bool
	)
	for code, v := range values {
		if !found {
			bestCode, bestValue, found = code, v, true
			continue
		}
		switch v.Cmp(bestValue) {
		case 1:
			bestCode, bestValue = code, v
		case 0:
			if code < bestCode {
				bestCode = code
			}
		}
	}
	return bestCode, bestValue, found
}
