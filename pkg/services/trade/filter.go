package trade

import (
	"strings"

	"github.com/de-tools/trade-atlas/pkg/models/domain"
)

const (
	DefaultYearPrefix = "2024"
	DefaultCategory   = "goods"
	DefaultCodeDigits = 4
)

// Criteria are the row-level inclusion rules of a pass.
type Criteria struct {
	YearPrefix string // matched as a plain prefix of time_ref
	Category   string // compared trimmed and case-folded
	CodeDigits int    // exact number of ASCII digits in a classification code
}

func DefaultCriteria() Criteria {
	return Criteria{
		YearPrefix: DefaultYearPrefix,
		Category:   DefaultCategory,
		CodeDigits: DefaultCodeDigits,
	}
}

// Filter decides whether a row takes part in the aggregation. It holds no
// mutable state and is safe for concurrent use.
type Filter struct {
	criteria Criteria
}

func NewFilter(criteria Criteria) Filter {
	criteria.Category = strings.TrimSpace(criteria.Category)
	return Filter{criteria: criteria}
}

func (f Filter) Criteria() Criteria {
	return f.criteria
}

// Accept applies the period, category and classification-shape predicates.
// Account and country are resolved by the ledger.
func (f Filter) Accept(row domain.Row) bool {
	return f.MatchPeriod(row.Period) &&
		f.MatchCategory(row.Category) &&
		domain.IsCode(row.Code, f.criteria.CodeDigits)
}

func (f Filter) MatchPeriod(period string) bool {
	return period != "" && strings.HasPrefix(period, f.criteria.YearPrefix)
}

func (f Filter) MatchCategory(category string) bool {
	return strings.EqualFold(strings.TrimSpace(category), f.criteria.Category)
}
