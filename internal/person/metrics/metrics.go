package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the person module.
// Tracks lifecycle counts, criteria query durations and cache effectiveness.
type Metrics struct {
	PersonsCreated prometheus.Counter
	PersonsDeleted prometheus.Counter
	QueryDuration  *prometheus.HistogramVec
	QueryRejected  prometheus.Counter
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
}

// New creates a Metrics instance registered on reg. A nil registerer uses
// the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		PersonsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "people_persons_created_total",
			Help: "Total number of people created",
		}),
		PersonsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "people_persons_deleted_total",
			Help: "Total number of delete requests served",
		}),
		QueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "people_query_duration_seconds",
			Help:    "Duration of criteria queries by combinator and paging",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"mode", "paged"}),
		QueryRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "people_query_rejected_total",
			Help: "Criteria queries rejected for an unsupported operator",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "people_person_cache_hits_total",
			Help: "Person lookups served from the cache",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "people_person_cache_misses_total",
			Help: "Person lookups that fell through to the store",
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	if m == nil {
		return
	}
	m.PersonsCreated.Inc()
}

func (m *Metrics) IncrementDeleted() {
	if m == nil {
		return
	}
	m.PersonsDeleted.Inc()
}

// ObserveQuery records the duration of a criteria query.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveQuery(mode string, paged bool, start time.Time) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(mode, strconv.FormatBool(paged)).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementRejected() {
	if m == nil {
		return
	}
	m.QueryRejected.Inc()
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}
