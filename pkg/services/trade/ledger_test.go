package trade

import (
	"testing"

	"github.com/de-tools/trade-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Record(t *testing.T) {
	l := NewLedger([]domain.BucketKey{"NO"})

	assert.True(t, l.Record("NO", "Imports", "0101", dec("100")))
	assert.True(t, l.Record("NO", " imports ", "0101", dec("50.5")))
	assert.True(t, l.Record("NO", "IMPORTS", "0202", dec("0")))
	assert.True(t, l.Record("NO", "Exports", "0303", dec("250")))
	assert.False(t, l.Record("NO", "Re-exports", "0303", dec("999")))
	assert.False(t, l.Record("SE", "Imports", "0101", dec("999")))

	b, ok := l.Bucket("NO")
	require.True(t, ok)
	assert.True(t, b.TotalImports.Equal(dec("150.5")))
	assert.True(t, b.TotalExports.Equal(dec("250")))
	assert.True(t, b.ImportsByCode["0101"].Equal(dec("150.5")))

	zero, seen := b.ImportsByCode["0202"]
	assert.True(t, seen, "a zero amount is an observation")
	assert.True(t, zero.IsZero())

	_, ok = l.Bucket("SE")
	assert.False(t, ok)
}

func TestLedger_BucketIsACopy(t *testing.T) {
	l := NewLedger([]domain.BucketKey{"NO"})
	l.Record("NO", "Imports", "0101", dec("1"))

	b, _ := l.Bucket("NO")
	b.ImportsByCode["0101"] = dec("1000")
	b.TotalImports = dec("1000")

	again, _ := l.Bucket("NO")
	assert.True(t, again.TotalImports.Equal(dec("1")))
	assert.True(t, again.ImportsByCode["0101"].Equal(dec("1")))
}

func TestLedger_SubTotalsSumToTotals(t *testing.T) {
	l := NewLedger([]domain.BucketKey{"DE"})
	amounts := []string{"0.1", "0.2", "0.3", "1,000.01", "-5", "7.777"}
	codes := []string{"0101", "0202", "0101", "0303", "0202", "0404"}

	for i, a := range amounts {
		v, ok := ParseAmount(a)
		require.True(t, ok)
		l.Record("DE", "Imports", codes[i], v)
		l.Record("DE", "Exports", codes[len(codes)-1-i], v)
	}

	b, _ := l.Bucket("DE")
	assert.True(t, b.TotalImports.Equal(dec("1003.387")))
	assert.True(t, sum(b.ImportsByCode).Equal(b.TotalImports))
	assert.True(t, sum(b.ExportsByCode).Equal(b.TotalExports))
	assert.True(t, b.TotalImports.Equal(b.TotalExports))
}

func TestLedger_Merge(t *testing.T) {
	keys := []domain.BucketKey{"NO", "SE"}
	a := NewLedger(keys)
	b := NewLedger(keys)
	c := NewLedger([]domain.BucketKey{"NO", "DK"})

	a.Record("NO", "Imports", "0101", dec("1.5"))
	b.Record("NO", "Imports", "0101", dec("2.5"))
	b.Record("NO", "Exports", "0202", dec("3"))
	c.Record("DK", "Exports", "0202", dec("99"))

	a.Merge(b)
	a.Merge(c)

	no, _ := a.Bucket("NO")
	assert.True(t, no.TotalImports.Equal(dec("4")))
	assert.True(t, no.ImportsByCode["0101"].Equal(dec("4")))
	assert.True(t, no.TotalExports.Equal(dec("3")))
	assert.False(t, a.Has("DK"))
}

func TestBlocAggregator_SumsMembers(t *testing.T) {
	cov := testCoverage(t)
	l := NewLedger(cov.Keys())
	bloc := NewBlocAggregator(l, cov)

	record := func(key domain.BucketKey, account, code, amount string) {
		l.Record(key, account, code, dec(amount))
		bloc.Record(key, account, code, dec(amount))
	}

	record("AT", "Imports", "0101", "100.25")
	record("BE", "Imports", "0202", "200")
	record("DE", "Exports", "0303", "300.75")
	record("FR", "Imports", "0101", "0")
	record("FR", "Exports", "0303", "0")
	record("NO", "Imports", "0101", "5000")

	eu, _ := l.Bucket("EU")
	memberImports, memberExports := decimal.Zero, decimal.Zero
	for _, m := range cov.Members() {
		b, _ := l.Bucket(domain.BucketKey(m.Code))
		memberImports = memberImports.Add(b.TotalImports)
		memberExports = memberExports.Add(b.TotalExports)
	}

	assert.True(t, eu.TotalImports.Equal(memberImports))
	assert.True(t, eu.TotalExports.Equal(memberExports))
	assert.True(t, eu.TotalImports.Equal(dec("300.25")), "focus country must not leak into the bloc")
	assert.True(t, eu.ImportsByCode["0101"].Equal(dec("100.25")))
	assert.True(t, sum(eu.ExportsByCode).Equal(eu.TotalExports))
}

func TestBlocAggregator_IgnoresNonMembers(t *testing.T) {
	cov := testCoverage(t)
	l := NewLedger(cov.Keys())
	bloc := NewBlocAggregator(l, cov)

	assert.False(t, bloc.Record("NO", "Imports", "0101", dec("1")))
	assert.False(t, bloc.Record("US", "Imports", "0101", dec("1")))
	assert.False(t, bloc.Record("DE", "Other", "0101", dec("1")))
	assert.True(t, bloc.Record("DE", "Exports", "0101", dec("1")))

	eu, _ := l.Bucket("EU")
	assert.True(t, eu.TotalImports.IsZero())
	assert.True(t, eu.TotalExports.Equal(dec("1")))
}
