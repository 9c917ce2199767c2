package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/de-tools/trade-atlas/pkg/models/domain"
)

const namespace = "trade"

// Skip reasons of trade_rows_skipped_total.
const (
	ReasonFiltered       = "filtered"
	ReasonInvalidValue   = "invalid_value"
	ReasonUnknownCountry = "unknown_country"
	ReasonUnknownAccount = "unknown_account"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeTimeout = "timeout"
)

// Recorder exposes aggregate pass counters. Individual rows are never
// observable.
type Recorder struct {
	registry     *prometheus.Registry
	rowsSeen     prometheus.Counter
	rowsAccepted prometheus.Counter
	rowsSkipped  *prometheus.CounterVec
	runs         *prometheus.CounterVec
	duration     prometheus.Histogram
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rowsSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_seen_total",
			Help:      "Rows read from the trade ledger.",
		}),
		rowsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_accepted_total",
			Help:      "Rows that passed the filter and carried a valid value.",
		}),
		rowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Rows left out of the aggregation, by reason.",
		}, []string{"reason"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed report generations, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of one report generation.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}

	r.registry.MustRegister(
		r.rowsSeen,
		r.rowsAccepted,
		r.rowsSkipped,
		r.runs,
		r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveRun records the outcome of one generation. stats is nil for failed runs.
func (r *Recorder) ObserveRun(outcome string, elapsed time.Duration, stats *domain.RunStats) {
	r.runs.WithLabelValues(outcome).Inc()
	r.duration.Observe(elapsed.Seconds())
	if stats == nil {
		return
	}
	r.rowsSeen.Add(float64(stats.RowsSeen))
	r.rowsAccepted.Add(float64(stats.RowsAccepted))
	r.rowsSkipped.WithLabelValues(ReasonFiltered).Add(float64(stats.RowsRejected))
	r.rowsSkipped.WithLabelValues(ReasonInvalidValue).Add(float64(stats.InvalidValues))
	r.rowsSkipped.WithLabelValues(ReasonUnknownCountry).Add(float64(stats.UnknownCountry))
	r.rowsSkipped.WithLabelValues(ReasonUnknownAccount).Add(float64(stats.UnknownAccount))
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
