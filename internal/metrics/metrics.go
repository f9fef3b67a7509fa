package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the set of Prometheus collectors for the service.
// All observation methods are safe to call on a nil *Metrics.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	PipelineRequests *prometheus.CounterVec
	RankingRuns      *prometheus.CounterVec
	RankingDuration  prometheus.Histogram
	PersistErrors    prometheus.Counter
	DailyResets      prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{}

	m.UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airaware_upstream_requests_total",
			Help: "Upstream API requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	m.UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "airaware_upstream_request_duration_seconds",
			Help:    "Duration of upstream API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	m.PipelineRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airaware_pipeline_requests_total",
			Help: "Pipeline requests by trigger and final state",
		},
		[]string{"trigger", "outcome"},
	)

	m.RankingRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airaware_ranking_runs_total",
			Help: "City ranking batches by outcome",
		},
		[]string{"outcome"},
	)

	m.RankingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "airaware_ranking_duration_seconds",
			Help:    "Wall time of a full ranking batch",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.PersistErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "airaware_session_persist_errors_total",
			Help: "Session state writes that failed",
		},
	)

	m.DailyResets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "airaware_daily_resets_total",
			Help: "Times the completed exercise set was cleared by a new day",
		},
	)

	if reg != nil {
		reg.MustRegister(
			m.UpstreamRequests,
			m.UpstreamLatency,
			m.PipelineRequests,
			m.RankingRuns,
			m.RankingDuration,
			m.PersistErrors,
			m.DailyResets,
		)
	}

	return m
}

func (m *Metrics) ObserveUpstream(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *Metrics) ObservePipeline(trigger, outcome string) {
	if m == nil {
		return
	}
	m.PipelineRequests.WithLabelValues(trigger, outcome).Inc()
}

func (m *Metrics) ObserveRanking(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RankingRuns.WithLabelValues(outcome).Inc()
	m.RankingDuration.Observe(d.Seconds())
}

func (m *Metrics) IncPersistErrors() {
	if m == nil {
		return
	}
	m.PersistErrors.Inc()
}

func (m *Metrics) IncDailyResets() {
	if m == nil {
		return
	}
	m.DailyResets.Inc()
}
