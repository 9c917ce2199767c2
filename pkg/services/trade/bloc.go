package trade

import (
	"github.com/de-tools/trade-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
)

// BlocAggregator feeds the reserved bloc bucket from the same per-row dispatch
// as the member buckets, so the aggregate is never derived from finished totals.
type BlocAggregator struct {
	ledger   *Ledger
	coverage *domain.Coverage
}

func NewBlocAggregator(ledger *Ledger, coverage *domain.Coverage) *BlocAggregator {
	return &BlocAggregator{ledger: ledger, coverage: coverage}
}

// Record re-records the tuple under the bloc key when key is a bloc member.
func (b *BlocAggregator) Record(key domain.BucketKey, account string, code string, amount decimal.Decimal) bool {
	return b.record(key, domain.ParseAccount(account), code, amount)
}

func (b *BlocAggregator) record(key domain.BucketKey, account domain.Account, code string, amount decimal.Decimal) bool {
	if !b.coverage.IsMember(string(key)) {
		return false
	}
	return b.ledger.record(b.coverage.BlocKey(), account, code, amount)
}
