package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements usecase.Metrics using Prometheus.
type Recorder struct {
	refreshes   *prometheus.CounterVec
	submissions *prometheus.CounterVec
	validations *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

func New(registerer prometheus.Registerer) *Recorder {
	factory := promauto.With(registerer)
	return &Recorder{
		refreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinalert_catalog_refreshes_total",
				Help: "Catalog refreshes by outcome",
			},
			[]string{"outcome"},
		),
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinalert_alert_submissions_total",
				Help: "Alert submissions by outcome",
			},
			[]string{"outcome"},
		),
		validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinalert_validation_failures_total",
				Help: "Submission attempts rejected locally, by reason",
			},
			[]string{"reason"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinalert_alert_api_duration_seconds",
				Help:    "Duration of alert API operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) ObserveRefresh(outcome string, duration time.Duration) {
	r.refreshes.WithLabelValues(outcome).Inc()
	r.latency.WithLabelValues("list_cryptocurrencies").Observe(duration.Seconds())
}

func (r *Recorder) ObserveSubmission(outcome string, duration time.Duration) {
	r.submissions.WithLabelValues(outcome).Inc()
	r.latency.WithLabelValues("create_alert").Observe(duration.Seconds())
}

func (r *Recorder) IncValidationFailure(reason string) {
	r.validations.WithLabelValues(reason).Inc()
}

// Handler serves the metrics collected by gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
