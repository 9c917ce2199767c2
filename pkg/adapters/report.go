package adapters

import (
	"github.com/shopspring/decimal"

	"github.com/de-tools/trade-atlas/pkg/models/api"
	"github.com/de-tools/trade-atlas/pkg/models/domain"
	"github.com/de-tools/trade-atlas/pkg/models/store"
)

func MapDomainSummaryToApi(summary *domain.Summary) api.Summary {
	reports := make([]api.TradeReport, 0, len(summary.Reports))
	for _, r := range summary.Reports {
		reports = append(reports, MapDomainTradeReportToApi(r))
	}
	return api.Summary{
		RunID:      summary.RunID,
		Year:       summary.YearPrefix,
		Category:   summary.Category,
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
		Stats:      MapDomainRunStatsToApi(summary.Stats),
		Reports:    reports,
	}
}

func MapDomainTradeReportToApi(r domain.TradeReport) api.TradeReport {
	return api.TradeReport{
		Key:             string(r.Key),
		Label:           r.Label,
		TotalImportsNZD: money(r.TotalImports),
		TotalExportsNZD: money(r.TotalExports),
		BalanceNZD:      money(r.Balance),
		TopImport:       mapDomainProductToApi(r.TopImport),
		TopExport:       mapDomainProductToApi(r.TopExport),
	}
}

func MapDomainRunStatsToApi(s domain.RunStats) api.RunStats {
	return api.RunStats{
		RowsSeen:       s.RowsSeen,
		RowsAccepted:   s.RowsAccepted,
		RowsRecorded:   s.RowsRecorded,
		RowsRejected:   s.RowsRejected,
		InvalidValues:  s.InvalidValues,
		UnknownCountry: s.UnknownCountry,
		UnknownAccount: s.UnknownAccount,
	}
}

func mapDomainProductToApi(p *domain.Product) *api.Product {
	if p == nil {
		return nil
	}
	return &api.Product{
		Code:        p.Code,
		Description: p.Description,
		ValueNZD:    money(p.Value),
	}
}

func MapStoreRunToApi(r store.Run) api.Run {
	return api.Run{
		RunID:        r.RunID,
		Input:        r.Input,
		Year:         r.YearPrefix,
		Category:     r.Category,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		RowsSeen:     r.RowsSeen,
		RowsAccepted: r.RowsAccepted,
		RowsRecorded: r.RowsRecorded,
	}
}

// MapStoreRunReportToApi rebuilds a recorded bucket. Descriptions are not
// stored, so recorded top products carry only code and value.
func MapStoreRunReportToApi(r store.RunReport) api.TradeReport {
	return api.TradeReport{
		Key:             r.Key,
		Label:           r.Label,
		TotalImportsNZD: storedMoney(r.TotalImports),
		TotalExportsNZD: storedMoney(r.TotalExports),
		BalanceNZD:      storedMoney(r.Balance),
		TopImport:       storedProduct(r.TopImportCode, r.TopImportNZD),
		TopExport:       storedProduct(r.TopExportCode, r.TopExportNZD),
	}
}

func storedProduct(code, value *string) *api.Product {
	if code == nil {
		return nil
	}
	p := &api.Product{Code: *code}
	if value != nil {
		p.ValueNZD = storedMoney(*value)
	}
	return p
}

func storedMoney(s string) string {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return money(d)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
