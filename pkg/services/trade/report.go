package trade

import (
	"github.com/de-tools/trade-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
)

// Describer resolves classification codes to human readable descriptions.
type Describer interface {
	Describe(code string) string
}

// BuildReport derives the report of one bucket. Balance is exports minus
// imports.
func BuildReport(key domain.BucketKey, label string, b *Bucket, describer Describer) domain.TradeReport {
	return domain.TradeReport{
		Key:          key,
		Label:        label,
		TotalImports: b.TotalImports,
		TotalExports: b.TotalExports,
		Balance:      b.TotalExports.Sub(b.TotalImports),
		TopImport:    topProduct(b.ImportsByCode, describer),
		TopExport:    topProduct(b.ExportsByCode, describer),
	}
}

func topProduct(values map[string]decimal.Decimal, describer Describer) *domain.Product {
	code, value, ok := TopEntry(values)
	if !ok {
		return nil
	}
	desc := domain.UnknownDescription
	if describer != nil {
		desc = describer.Describe(code)
	}
	return &domain.Product{Code: code, Description: desc, Value: value}
}
