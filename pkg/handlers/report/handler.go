package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/de-tools/trade-atlas/pkg/adapters"
	"github.com/de-tools/trade-atlas/pkg/models/api"
	"github.com/de-tools/trade-atlas/pkg/models/domain"
	"github.com/de-tools/trade-atlas/pkg/services/report"
	"github.com/de-tools/trade-atlas/pkg/store/duckdb/history"
)

const (
	summaryCacheKey      = "summary"
	defaultRunsLimit     = 20
	defaultReportTimeout = 2 * time.Minute
)

type Handler struct {
	generator report.Generator
	history   history.Store
	timeout   time.Duration
	cache     *cache.Cache // nil disables caching
	group     singleflight.Group
}

type Options struct {
	ReportTimeout time.Duration
	CacheTTL      time.Duration
	// History is optional; without it the run endpoints answer 404.
	History history.Store
}

func NewHandler(generator report.Generator, opts Options) *Handler {
	h := &Handler{
		generator: generator,
		history:   opts.History,
		timeout:   opts.ReportTimeout,
	}
	if h.timeout <= 0 {
		h.timeout = defaultReportTimeout
	}
	if opts.CacheTTL > 0 {
		h.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return h
}

// GetSummary returns every report of the current pass.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.summary(w, r)
	if !ok {
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, adapters.MapDomainSummaryToApi(summary))
}

// GetReport returns one bucket by key; unknown keys are 404 without running a pass.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	key := domain.BucketKey(chi.URLParam(r, "key"))
	if !isTracked(h.generator.Coverage(), key) {
		writeError(r.Context(), w, http.StatusNotFound, "bucket "+string(key)+" is not configured")
		return
	}

	summary, ok := h.summary(w, r)
	if !ok {
		return
	}
	rep, found := summary.Report(key)
	if !found {
		writeError(r.Context(), w, http.StatusNotFound, "bucket "+string(key)+" is not configured")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, adapters.MapDomainTradeReportToApi(rep))
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.history == nil {
		writeError(ctx, w, http.StatusNotFound, "run history is disabled")
		return
	}

	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(ctx, w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.history.ListRuns(ctx, limit)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list runs")
		writeError(ctx, w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	response := make([]api.Run, 0, len(runs))
	for _, run := range runs {
		response = append(response, adapters.MapStoreRunToApi(run))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

func (h *Handler) GetRunReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.history == nil {
		writeError(ctx, w, http.StatusNotFound, "run history is disabled")
		return
	}
	runID := chi.URLParam(r, "run")

	reports, err := h.history.GetReports(ctx, runID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("run_id", runID).Msg("failed to load run reports")
		writeError(ctx, w, http.StatusInternalServerError, "failed to load run reports")
		return
	}
	if len(reports) == 0 {
		writeError(ctx, w, http.StatusNotFound, "run "+runID+" not found")
		return
	}

	response := make([]api.TradeReport, 0, len(reports))
	for _, rep := range reports {
		response = append(response, adapters.MapStoreRunReportToApi(rep))
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

// summary serves a cached pass or runs a new one. Concurrent requests share a
// single pass. A pass that misses its deadline yields 504 and is not cached.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) (*domain.Summary, bool) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	if h.cache != nil {
		if cached, found := h.cache.Get(summaryCacheKey); found {
			return cached.(*domain.Summary), true
		}
	}

	ch := h.group.DoChan(summaryCacheKey, func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
		defer cancel()

		summary, err := h.generator.Generate(runCtx)
		if err != nil {
			return nil, err
		}
		if h.cache != nil {
			h.cache.SetDefault(summaryCacheKey, summary)
		}
		return summary, nil
	})

	select {
	case <-ctx.Done():
		logger.Warn().Err(ctx.Err()).Msg("client went away while the report was generating")
		return nil, false
	case res := <-ch:
		if res.Err != nil {
			if errors.Is(res.Err, context.DeadlineExceeded) {
				logger.Warn().Dur("timeout", h.timeout).Msg("report generation timed out")
				writeError(ctx, w, http.StatusGatewayTimeout, "report generation timed out")
				return nil, false
			}
			logger.Error().Err(res.Err).Msg("report generation failed")
			writeError(ctx, w, http.StatusInternalServerError, "report generation failed")
			return nil, false
		}
		return res.Val.(*domain.Summary), true
	}
}

func isTracked(cov *domain.Coverage, key domain.BucketKey) bool {
	for _, k := range cov.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	writeJSON(ctx, w, status, api.Error{Error: msg})
}
