package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the winning classification code of one side of a bucket.
type Product struct {
	Code        string
	Description string
	Value       decimal.Decimal
}

// TradeReport is derived from one bucket after the pass completes.
// TopImport and TopExport are nil when the bucket saw no rows on that side.
type TradeReport struct {
	Key          BucketKey
	Label        string
	TotalImports decimal.Decimal
	TotalExports decimal.Decimal
	Balance      decimal.Decimal // exports - imports
	TopImport    *Product
	TopExport    *Product
}

// RunStats counts what a pass did with its rows. Skips are never errors.
type RunStats struct {
	RowsSeen       int64
	RowsRejected   int64 // failed the filter
	InvalidValues  int64 // passed the filter, value blank or malformed
	RowsAccepted   int64 // passed the filter with a valid value
	UnknownCountry int64
	UnknownAccount int64
	RowsRecorded   int64
}

// Summary is the result of one completed pass.
type Summary struct {
	RunID      string
	YearPrefix string
	Category   string
	StartedAt  time.Time
	FinishedAt time.Time
	Stats      RunStats
	Reports    []TradeReport
}

func (s *Summary) Report(key BucketKey) (TradeReport, bool) {
	for _, r := range s.Reports {
		if r.Key == key {
			return r, true
		}
	}
	return TradeReport{}, false
}
