// Package metrics provides the Prometheus metric set for the entity store.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects store, load and query instrumentation.
type Metrics struct {
	StoreOpsTotal   *prometheus.CounterVec
	StoreOpDuration *prometheus.HistogramVec

	EntitiesLoaded *prometheus.CounterVec
	LoadRunsTotal  prometheus.Counter

	QueriesTotal      *prometheus.CounterVec
	QueryDuration     prometheus.Histogram
	IntegrityWarnings prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers the metric set for one service instance.
func New(service string) *Metrics {
	m := &Metrics{
		StoreOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brokerage",
			Subsystem: service,
			Name:      "store_ops_total",
			Help:      "Total backend round trips by operation",
		}, []string{"op", "result"}),
		StoreOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "brokerage",
			Subsystem: service,
			Name:      "store_op_duration_seconds",
			Help:      "Backend round trip duration by operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		EntitiesLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brokerage",
			Subsystem: service,
			Name:      "entities_loaded_total",
			Help:      "Entities committed by kind",
		}, []string{"kind"}),
		LoadRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "brokerage",
			Subsystem: service,
			Name:      "load_runs_total",
			Help:      "Bulk load runs started",
		}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brokerage",
			Subsystem: service,
			Name:      "queries_total",
			Help:      "Portfolio queries by result",
		}, []string{"result"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "brokerage",
			Subsystem: service,
			Name:      "query_duration_seconds",
			Help:      "Full username resolution duration",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		IntegrityWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "brokerage",
			Subsystem: service,
			Name:      "integrity_warnings_total",
			Help:      "Dangling ownership references observed at query time",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.StoreOpsTotal,
		m.StoreOpDuration,
		m.EntitiesLoaded,
		m.LoadRunsTotal,
		m.QueriesTotal,
		m.QueryDuration,
		m.IntegrityWarnings,
	)
	return m
}

// ObserveStoreOp records one backend round trip.
func (m *Metrics) ObserveStoreOp(op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StoreOpsTotal.WithLabelValues(op, result).Inc()
	m.StoreOpDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ExposeHTTP serves the registry on /metrics; it blocks.
func (m *Metrics) ExposeHTTP(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
