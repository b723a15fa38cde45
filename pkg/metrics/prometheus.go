package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetches    *prometheus.CounterVec
	polls      *prometheus.HistogramVec
	pollErrors *prometheus.CounterVec
	lastPrice  *prometheus.GaugeVec
	fearGreed  prometheus.Gauge
	staleDrops *prometheus.CounterVec
}

// New creates a Prometheus metrics recorder registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stonkpulse_fetch_total",
				Help: "Upstream fetches by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		polls: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stonkpulse_poll_duration_seconds",
				Help:    "Duration of one poll task invocation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"task"},
		),
		pollErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stonkpulse_poll_errors_total",
				Help: "Poll task invocations that returned an error",
			},
			[]string{"task"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stonkpulse_last_price",
				Help: "Last fetched price for a symbol",
			},
			[]string{"symbol"},
		),
		fearGreed: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "stonkpulse_fear_greed_index",
				Help: "Last fetched Fear & Greed index",
			},
		),
		staleDrops: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stonkpulse_stale_dropped_total",
				Help: "Results discarded because their context was superseded or stopped",
			},
			[]string{"panel"},
		),
	}
}

func (r *Recorder) RecordFetch(endpoint, outcome string) {
	r.fetches.WithLabelValues(endpoint, outcome).Inc()
}

func (r *Recorder) RecordPoll(task string, seconds float64, failed bool) {
	r.polls.WithLabelValues(task).Observe(seconds)
	if failed {
		r.pollErrors.WithLabelValues(task).Inc()
	}
}

func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) RecordFearGreed(score int) {
	r.fearGreed.Set(float64(score))
}

func (r *Recorder) RecordStaleDrop(panel string) {
	r.staleDrops.WithLabelValues(panel).Inc()
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordFetch(string, string) {}
func (Nop) RecordPoll(string, float64, bool) {}
func (Nop) RecordLastPrice(string, float64) {}
func (Nop) RecordFearGreed(int) {}
func (Nop) RecordStaleDrop(string) {}
