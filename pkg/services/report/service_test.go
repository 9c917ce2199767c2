package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/trade-atlas/pkg/metrics"
	"github.com/de-tools/trade-atlas/pkg/models/domain"
	"github.com/de-tools/trade-atlas/pkg/models/store"
	"github.com/de-tools/trade-atlas/pkg/services/config"
	"github.com/de-tools/trade-atlas/pkg/services/trade"
	"github.com/de-tools/trade-atlas/pkg/store/rows"
	"github.com/de-tools/trade-atlas/pkg/store/source"
)

const tradeCSV = `time_ref,account,code,country_code,product_type,value,status
202401,Imports,0101,NO,Goods,"1,000.10",F
202402,Exports,0202,NO,Goods,250.00,F
202403,Imports,0101,FR,Goods,500.00,F
202403,Imports,0303,DE,Goods,12.5,P
202403,Exports,0404,AT,Goods,99.99,F
202312,Imports,0101,NO,Goods,1.00,F
202401,Imports,0101,NO,Services,1.00,F
202401,Imports,0101,US,Goods,1.00,F
202401,Imports,0101,NO,Goods,,F
`

const lookupCSV = `NZHSC_Level_2_Code_HS4,NZHSC_Level_2
0101,Horses
0202,Beef
0404,Whey
`

type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) Add(ctx context.Context, input string, summary *domain.Summary) error {
	args := m.Called(ctx, input, summary)
	return args.Error(0)
}

func (m *mockHistory) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]store.Run), args.Error(1)
}

func (m *mockHistory) GetReports(ctx context.Context, runID string) ([]store.RunReport, error) {
	args := m.Called(ctx, runID)
	return args.Get(0).([]store.RunReport), args.Error(1)
}

func assertRuns(t *testing.T, r *metrics.Recorder, outcome string) {
	t.Helper()
	expected := fmt.Sprintf(`
# HELP trade_runs_total Completed report generations, by outcome.
# TYPE trade_runs_total counter
trade_runs_total{outcome=%q} 1
`, outcome)
	assert.NoError(t, testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "trade_runs_total"))
}

func writeFixtures(t *testing.T, trade, lookup string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	tradePath := filepath.Join(dir, "trade.csv")
	lookupPath := filepath.Join(dir, "lookup.csv")
	require.NoError(t, os.WriteFile(tradePath, []byte(trade), 0o644))
	require.NoError(t, os.WriteFile(lookupPath, []byte(lookup), 0o644))
	return tradePath, lookupPath
}

func newService(t *testing.T, opts Options) *Service {
	t.Helper()
	if opts.Coverage == nil {
		opts.Coverage = config.DefaultCoverage()
	}
	if opts.Criteria == (trade.Criteria{}) {
		opts.Criteria = trade.DefaultCriteria()
	}
	svc, err := NewService(opts)
	require.NoError(t, err)
	return svc
}

func TestService_Generate(t *testing.T) {
	tradePath, lookupPath := writeFixtures(t, tradeCSV, lookupCSV)
	recorder := metrics.NewRecorder()
	hist := &mockHistory{}
	hist.On("Add", mock.Anything, tradePath, mock.AnythingOfType("*domain.Summary")).Return(nil)

	svc := newService(t, Options{
		Input:          tradePath,
		Classification: lookupPath,
		Metrics:        recorder,
		History:        hist,
	})

	summary, err := svc.Generate(context.Background())
	require.NoError(t, err)

	assert.Len(t, summary.Reports, 29)
	assert.Equal(t, int64(9), summary.Stats.RowsSeen)
	assert.Equal(t, int64(5), summary.Stats.RowsRecorded)

	no, ok := summary.Report("NO")
	require.True(t, ok)
	assert.Equal(t, "Norway (NO)", no.Label)
	assert.Equal(t, "-750.1", no.Balance.String())
	require.NotNil(t, no.TopImport)
	assert.Equal(t, "Horses", no.TopImport.Description)
	assert.Equal(t, "Beef", no.TopExport.Description)

	eu, ok := summary.Report("EU")
	require.True(t, ok)
	assert.Equal(t, "512.5", eu.TotalImports.String())
	assert.Equal(t, "99.99", eu.TotalExports.String())
	assert.Equal(t, "Whey", eu.TopExport.Description)

	de, _ := summary.Report("DE")
	require.NotNil(t, de.TopImport)
	assert.Equal(t, domain.UnknownDescription, de.TopImport.Description)

	assertRuns(t, recorder, metrics.OutcomeSuccess)
	hist.AssertExpectations(t)
}

func TestService_Generate_ReusableAcrossPasses(t *testing.T) {
	tradePath, lookupPath := writeFixtures(t, tradeCSV, lookupCSV)
	svc := newService(t, Options{Input: tradePath, Classification: lookupPath, Workers: 4})

	first, err := svc.Generate(context.Background())
	require.NoError(t, err)
	second, err := svc.Generate(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Stats, second.Stats)
	for i := range first.Reports {
		assert.True(t, first.Reports[i].Balance.Equal(second.Reports[i].Balance))
	}
}

func TestService_Generate_MissingInput(t *testing.T) {
	_, lookupPath := writeFixtures(t, tradeCSV, lookupCSV)
	recorder := metrics.NewRecorder()
	hist := &mockHistory{}

	svc := newService(t, Options{
		Input:          filepath.Join(t.TempDir(), "absent.csv"),
		Classification: lookupPath,
		Metrics:        recorder,
		History:        hist,
	})

	summary, err := svc.Generate(context.Background())
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, source.ErrNotFound)
	assertRuns(t, recorder, metrics.OutcomeFailure)
	hist.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Generate_MissingClassification(t *testing.T) {
	tradePath, _ := writeFixtures(t, tradeCSV, lookupCSV)
	svc := newService(t, Options{
		Input:          tradePath,
		Classification: filepath.Join(t.TempDir(), "absent.csv"),
	})

	_, err := svc.Generate(context.Background())
	assert.ErrorIs(t, err, source.ErrNotFound)
	assert.Contains(t, err.Error(), "classification")
}

func TestService_Generate_MissingColumn(t *testing.T) {
	tradePath, lookupPath := writeFixtures(t, "time_ref,account,code,country_code,value\n", lookupCSV)
	svc := newService(t, Options{Input: tradePath, Classification: lookupPath})

	_, err := svc.Generate(context.Background())

	var missing *rows.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "product_type", missing.Column)
}

func TestService_Generate_DeadlineExceeded(t *testing.T) {
	tradePath, lookupPath := writeFixtures(t, tradeCSV, lookupCSV)
	recorder := metrics.NewRecorder()
	svc := newService(t, Options{Input: tradePath, Classification: lookupPath, Metrics: recorder})

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	summary, err := svc.Generate(ctx)
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assertRuns(t, recorder, metrics.OutcomeTimeout)
}

func TestService_Generate_HistoryFailureIsNotFatal(t *testing.T) {
	tradePath, lookupPath := writeFixtures(t, tradeCSV, lookupCSV)
	hist := &mockHistory{}
	hist.On("Add", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("database is locked"))

	svc := newService(t, Options{Input: tradePath, Classification: lookupPath, History: hist})

	summary, err := svc.Generate(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, summary)
	hist.AssertExpectations(t)
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(Options{Classification: "c.csv", Coverage: config.DefaultCoverage()})
	assert.Error(t, err)
	_, err = NewService(Options{Input: "i.csv", Coverage: config.DefaultCoverage()})
	assert.Error(t, err)
	_, err = NewService(Options{Input: "i.csv", Classification: "c.csv"})
	assert.Error(t, err)
}
