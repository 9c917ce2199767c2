package export

import (
	"github.com/shopspring/decimal"

	"github.com/de-tools/trade-atlas/pkg/models/domain"
)

// Columns is the header of every tabular result file.
var Columns = []string{
	"Country",
	"Trade_Balance_NZD",
	"Top_Import_Description",
	"Top_Import_Code",
	"Top_Import_Value_NZD",
	"Top_Export_Description",
	"Top_Export_Code",
	"Top_Export_Value_NZD",
}

// FormatAmount renders exactly two fractional digits, rounding half away from zero.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Records flattens reports into rows matching Columns. Absent top products
// become empty fields.
func Records(reports []domain.TradeReport) [][]string {
	records := make([][]string, 0, len(reports))
	for _, r := range reports {
		record := make([]string, 0, len(Columns))
		record = append(record, r.Label, FormatAmount(r.Balance))
		record = append(record, productFields(r.TopImport)...)
		record = append(record, productFields(r.TopExport)...)
		records = append(records, record)
	}
	return records
}

func productFields(p *domain.Product) []string {
	if p == nil {
		return []string{"", "", ""}
	}
	return []string{p.Description, p.Code, FormatAmount(p.Value)}
}
