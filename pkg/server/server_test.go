package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/trade-atlas/pkg/metrics"
	"github.com/de-tools/trade-atlas/pkg/models/api"
	"github.com/de-tools/trade-atlas/pkg/models/domain"
	"github.com/de-tools/trade-atlas/pkg/services/trade"
)

type mockGenerator struct {
	mock.Mock
	coverage *domain.Coverage
}

func (m *mockGenerator) Generate(ctx context.Context) (*domain.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *mockGenerator) Coverage() *domain.Coverage { return m.coverage }

func (m *mockGenerator) Criteria() trade.Criteria { return trade.DefaultCriteria() }

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	cov, err := domain.NewCoverage(
		domain.Country{Code: "NO", Name: "Norway"},
		domain.Bloc{Key: "EU", Name: "European Union", Members: []domain.Country{{Code: "AT", Name: "Austria"}}},
	)
	require.NoError(t, err)

	gen := &mockGenerator{coverage: cov}
	gen.On("Generate", mock.Anything).Return(&domain.Summary{
		RunID:      "run-1",
		YearPrefix: "2024",
		Category:   "goods",
		Reports: []domain.TradeReport{
			{Key: "NO", Label: "Norway (NO)", Balance: decimal.RequireFromString("12.5")},
			{Key: "AT", Label: "Austria (AT)"},
			{Key: "EU", Label: "European Union (EU)"},
		},
	}, nil)

	recorder := metrics.NewRecorder()
	config := Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		ReportTimeout:   time.Second,
		CacheTTL:        time.Minute,
		Dependencies: Dependencies{
			Generator: gen,
			Logger:    logger,
			Metrics:   recorder,
		},
	}
	router := ConfigureRouter(config)
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:           "GetReport",
			path:           "/api/v1/reports/NO",
			expectedStatus: http.StatusOK,
			expected: api.TradeReport{
				Key:             "NO",
				Label:           "Norway (NO)",
				TotalImportsNZD: "0.00",
				TotalExportsNZD: "0.00",
				BalanceNZD:      "12.50",
			},
			parseResponse: unmarshalResponse[api.TradeReport](),
		},
		{
			name:           "GetReport_Unknown",
			path:           "/api/v1/reports/US",
			expectedStatus: http.StatusNotFound,
			expected:       api.Error{Error: "bucket US is not configured"},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name:           "ListRuns_Disabled",
			path:           "/api/v1/runs",
			expectedStatus: http.StatusNotFound,
			expected:       api.Error{Error: "run history is disabled"},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name:           "GetSummary",
			path:           "/api/v1/reports",
			expectedStatus: http.StatusOK,
			expected:       "run-1",
			parseResponse: func(data []byte) (interface{}, error) {
				var s api.Summary
				err := json.Unmarshal(data, &s)
				return s.RunID, err
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(testServer.URL + tc.path)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(body)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}

	t.Run("Metrics", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "go_goroutines")
	})

	gen.AssertNumberOfCalls(t, "Generate", 1)
}

func TestConfigureRouter_WithoutMetrics(t *testing.T) {
	router := ConfigureRouter(Config{
		Dependencies: Dependencies{
			Generator: &mockGenerator{},
			Logger:    zerolog.Nop(),
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}
