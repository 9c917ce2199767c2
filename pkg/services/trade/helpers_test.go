package trade

import (
	"io"
	"testing"

	"github.com/de-tools/trade-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	rows []domain.Row
	pos  int
	err  error // returned instead of io.EOF once rows run out
}

func (s *sliceSource) Next() (domain.Row, error) {
	if s.pos >= len(s.rows) {
		if s.err != nil {
			return domain.Row{}, s.err
		}
		return domain.Row{}, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

type mapDescriber map[string]string

func (m mapDescriber) Describe(code string) string {
	if d, ok := m[code]; ok {
		return d
	}
	return domain.UnknownDescription
}

func testCoverage(t *testing.T) *domain.Coverage {
	t.Helper()
	cov, err := domain.NewCoverage(
		domain.Country{Code: "NO", Name: "Norway"},
		domain.Bloc{
			Key:  "EU",
			Name: "European Union",
			Members: []domain.Country{
				{Code: "FR", Name: "France"},
				{Code: "AT", Name: "Austria"},
				{Code: "DE", Name: "Germany"},
				{Code: "BE", Name: "Belgium"},
			},
		},
	)
	require.NoError(t, err)
	return cov
}

func goods(period, account, code, country, value string) domain.Row {
	return domain.Row{
		Period:      period,
		Account:     account,
		Code:        code,
		CountryCode: country,
		Category:    "Goods",
		Value:       value,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sum(values map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
