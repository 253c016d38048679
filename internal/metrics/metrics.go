package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	calendarFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursebot_calendar_fetches_total",
		Help: "Total number of provider fetch attempts.",
	}, []string{"status"})

	eventsUpsertedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coursebot_events_upserted_total",
		Help: "Total number of events written to the repository.",
	})

	upsertErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coursebot_upsert_errors_total",
		Help: "Total number of single-event upsert failures (skipped, not fatal).",
	})

	validationRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coursebot_validation_rejections_total",
		Help: "Total number of command invocations rejected before any I/O.",
	})

	sessionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coursebot_sessions_open",
		Help: "Number of paging sessions currently open.",
	})

	sessionsClosedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursebot_sessions_closed_total",
		Help: "Total number of paging sessions closed, by reason.",
	}, []string{"reason"})

	remindersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursebot_reminders_total",
		Help: "Total number of reminder scheduler actions.",
	}, []string{"action"})

	dbLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coursebot_db_latency_seconds",
		Help:    "Histogram of database operation latencies.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// ObserveFetch records one provider fetch attempt.
func ObserveFetch(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	calendarFetchesTotal.WithLabelValues(status).Inc()
}

// AddUpserted records successfully persisted events.
func AddUpserted(n int) {
	eventsUpsertedTotal.Add(float64(n))
}

// IncUpsertError records one skipped event write.
func IncUpsertError() {
	upsertErrorsTotal.Inc()
}

// IncValidationRejection records one command rejected at the boundary.
func IncValidationRejection() {
	validationRejectionsTotal.Inc()
}

// SessionOpened and SessionClosed track live paging sessions. Reason is
// "done", "timeout", or "shutdown".
func SessionOpened() {
	sessionsOpen.Inc()
}

func SessionClosed(reason string) {
	sessionsOpen.Dec()
	sessionsClosedTotal.WithLabelValues(reason).Inc()
}

// IncReminder records a scheduler action: "scheduled", "cancelled", or
// "fired".
func IncReminder(action string) {
	remindersTotal.WithLabelValues(action).Inc()
}

// ObserveDBLatency records database latency for a given operation.
func ObserveDBLatency(operation string, start time.Time) {
	dbLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
