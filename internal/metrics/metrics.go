// Package metrics holds the Prometheus collectors for store traffic.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sportsreg/internal/tabular"
)

var (
	storeOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sportsreg",
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Row store operations by table, operation and outcome.",
	}, []string{"table", "op", "outcome"})

	storeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sportsreg",
		Subsystem: "store",
		Name:      "operation_seconds",
		Help:      "Row store operation latency, backend round trips included.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"table", "op"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sportsreg",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Row store read cache lookups.",
	}, []string{"table", "result"})
)

// Observe records one store operation started at start.
func Observe(table, op string, start time.Time, err error) {
	storeOps.WithLabelValues(table, op, outcome(err)).Inc()
	storeLatency.WithLabelValues(table, op).Observe(time.Since(start).Seconds())
}

func CacheHit(table string)  { cacheLookups.WithLabelValues(table, "hit").Inc() }
func CacheMiss(table string) { cacheLookups.WithLabelValues(table, "miss").Inc() }

func Handler() http.Handler {
	return promhttp.Handler()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, tabular.ErrNotFound):
		return "not_found"
	case errors.Is(err, tabular.ErrBackendUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
