package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts catalog writes and score cache lookups. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	evWrites     *prometheus.CounterVec
	reviews      prometheus.Counter
	scoreLookups *prometheus.CounterVec
}

// NewMetrics registers the service counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		evWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evcatalog",
			Name:      "ev_writes_total",
			Help:      "EV records written, by operation.",
		}, []string{"operation"}),
		reviews: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "evcatalog",
			Name:      "reviews_created_total",
			Help:      "Reviews created.",
		}),
		scoreLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evcatalog",
			Name:      "score_cache_lookups_total",
			Help:      "Average score cache lookups, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.evWrites, m.reviews, m.scoreLookups)
	return m
}

func (m *Metrics) evWritten(op string) {
	if m != nil {
		m.evWrites.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) reviewCreated() {
	if m != nil {
		m.reviews.Inc()
	}
}

func (m *Metrics) scoreLookup(result string) {
	if m != nil {
		m.scoreLookups.WithLabelValues(result).Inc()
	}
}
