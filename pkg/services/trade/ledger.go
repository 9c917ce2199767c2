package trade

import (
	"maps"

	"github.com/de-tools/trade-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
)

// Bucket holds the running totals of one bucket key.
type Bucket struct {
	TotalImports  decimal.Decimal
	TotalExports  decimal.Decimal
	ImportsByCode map[string]decimal.Decimal
	ExportsByCode map[string]decimal.Decimal
}

func newBucket() *Bucket {
	return &Bucket{
		TotalImports:  decimal.Zero,
		TotalExports:  decimal.Zero,
		ImportsByCode: make(map[string]decimal.Decimal),
		ExportsByCode: make(map[string]decimal.Decimal),
	}
}

func (b *Bucket) clone() *Bucket {
	return &Bucket{
		TotalImports:  b.TotalImports,
		TotalExports:  b.TotalExports,
		ImportsByCode: maps.Clone(b.ImportsByCode),
		ExportsByCode: maps.Clone(b.ExportsByCode),
	}
}

func (b *Bucket) add(account domain.Account, code string, amount decimal.Decimal) bool {
	switch account {
	case domain.AccountImports:
		b.TotalImports = b.TotalImports.Add(amount)
		b.ImportsByCode[code] = b.ImportsByCode[code].Add(amount)
	case domain.AccountExports:
		b.TotalExports = b.TotalExports.Add(amount)
		b.ExportsByCode[code] = b.ExportsByCode[code].Add(amount)
	default:
		return false
	}
	return true
}

func (b *Bucket) merge(other *Bucket) {
	b.TotalImports = b.TotalImports.Add(other.TotalImports)
	b.TotalExports = b.TotalExports.Add(other.TotalExports)
	for code, v := range other.ImportsByCode {
		b.ImportsByCode[code] = b.ImportsByCode[code].Add(v)
	}
	for code, v := range other.ExportsByCode {
		b.ExportsByCode[code] = b.ExportsByCode[code].Add(v)
	}
}

// Ledger maps the configured bucket keys to their running totals. The key set
// is fixed at construction; records for any other key are dropped.
//
// A Ledger is not safe for concurrent use. Parallel passes give every worker
// its own Ledger and Merge them once the rows are exhausted.
type Ledger struct {
	buckets map[domain.BucketKey]*Bucket
}

func NewLedger(keys []domain.BucketKey) *Ledger {
	l := &Ledger{buckets: make(map[domain.BucketKey]*Bucket, len(keys))}
	for _, k := range keys {
		l.buckets[k] = newBucket()
	}
	return l
}

// Record adds amount to key's totals under the given account text. It reports
// whether anything was recorded: unknown keys and accounts other than
// imports/exports are silently ignored.
func (l *Ledger) Record(key domain.BucketKey, account string, code string, amount decimal.Decimal) bool {
	return l.record(key, domain.ParseAccount(account), code, amount)
}

func (l *Ledger) record(key domain.BucketKey, account domain.Account, code string, amount decimal.Decimal) bool {
	b, ok := l.buckets[key]
	if !ok {
		return false
	}
	return b.add(account, code, amount)
}

func (l *Ledger) Has(key domain.BucketKey) bool {
	_, ok := l.buckets[key]
	return ok
}

// Bucket returns a copy of key's state.
func (l *Ledger) Bucket(key domain.BucketKey) (*Bucket, bool) {
	b, ok := l.buckets[key]
	if !ok {
		return nil, false
	}
	return b.clone(), true
}

// Merge folds other into l. Keys missing from l are ignored.
func (l *Ledger) Merge(other *Ledger) {
	for key, ob := range other.buckets {
		if b, ok := l.buckets[key]; ok {
			b.merge(ob)
		}
	}
}
