package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every stepwise collector plus the Go and process collectors.
var Registry = prometheus.NewRegistry()

var (
	lifecycleTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stepwise",
		Name:      "lifecycle_transitions_total",
		Help:      "Successful user-activity lifecycle operations, labeled by operation and resulting status.",
	}, []string{"op", "status"})

	streakUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stepwise",
		Name:      "streak_updates_total",
		Help:      "Streak recalculations after a completion, labeled by outcome.",
	}, []string{"result"})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stepwise",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, labeled by method, route pattern and status code.",
	}, []string{"method", "route", "code"})

	orphansDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stepwise",
		Name:      "orphan_cleanup_deleted_total",
		Help:      "User-activity records removed because their catalog activity no longer exists.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		lifecycleTransitions,
		streakUpdates,
		httpRequests,
		orphansDeleted,
	)
}

// ObserveTransition counts a lifecycle operation.
func ObserveTransition(op, status string) {
	lifecycleTransitions.WithLabelValues(op, status).Inc()
}

// ObserveStreak counts a streak recalculation outcome.
func ObserveStreak(result string) {
	streakUpdates.WithLabelValues(result).Inc()
}

// ObserveRequest counts a served HTTP request.
func ObserveRequest(method, route string, code int) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

// AddOrphansDeleted counts records removed by orphan cleanup.
func AddOrphansDeleted(n int) {
	if n > 0 {
		orphansDeleted.Add(float64(n))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
