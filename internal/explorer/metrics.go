package explorer

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts fetch outcomes. Fallbacks are invisible to API callers, so
// this is where they surface.
type Metrics struct {
	attempts      *prometheus.CounterVec
	fallbacks     *prometheus.CounterVec
	cacheHits     prometheus.Counter
	fetchDuration prometheus.Histogram
}

// NewMetrics creates the service collectors and registers them with reg when it is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "proof_fetch_attempts_total", Help: "Explorer scrape attempts by outcome"},
			[]string{"outcome"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "proof_fetch_fallbacks_total", Help: "Synthetic records served, by failure kind"},
			[]string{"kind"},
		),
		cacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "proof_fetch_cache_hits_total", Help: "Requests served from the fresh cache"},
		),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "proof_fetch_duration_seconds",
			Help:    "Explorer scrape latency",
			Buckets: []float64{1, 2.5, 5, 7.5, 10, 15, 20, 30, 45, 60},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.fallbacks, m.cacheHits, m.fetchDuration)
	}
	return m
}
