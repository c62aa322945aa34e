// Package observability holds the Prometheus instruments of the service.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service's instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// feedLatency measures timeline assembly.
	// Labels: timeline (global, following, profile, thread)
	feedLatency *prometheus.HistogramVec

	// toggles counts interaction toggles.
	// Labels: kind (like, repost, follow), result (on, off, raced)
	toggles *prometheus.CounterVec

	// notifications counts notifications written.
	// Labels: type
	notifications *prometheus.CounterVec

	// cacheLookups counts view cache reads.
	// Labels: result (hit, miss, error)
	cacheLookups *prometheus.CounterVec

	// uploads counts media uploads.
	// Labels: status (ok, rejected, failed)
	uploads *prometheus.CounterVec
}

// NewMetrics registers every instrument on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		feedLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nano_social",
			Subsystem: "feed",
			Name:      "query_duration_seconds",
			Help:      "Timeline assembly latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 0.9, 2},
		}, []string{"timeline"}),
		toggles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nano_social",
			Subsystem: "interaction",
			Name:      "toggles_total",
			Help:      "Total like, repost and follow toggles by outcome",
		}, []string{"kind", "result"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nano_social",
			Subsystem: "notification",
			Name:      "created_total",
			Help:      "Total notifications created",
		}, []string{"type"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nano_social",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "View cache lookups by result",
		}, []string{"result"}),
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nano_social",
			Subsystem: "media",
			Name:      "uploads_total",
			Help:      "Media uploads by status",
		}, []string{"status"}),
	}
}

func (m *Metrics) ObserveFeed(timeline string, start time.Time) {
	if m == nil {
		return
	}
	m.feedLatency.WithLabelValues(timeline).Observe(time.Since(start).Seconds())
}

func (m *Metrics) Toggle(kind, result string) {
	if m == nil {
		return
	}
	m.toggles.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) NotificationCreated(notificationType string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(notificationType).Inc()
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) Upload(status string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(status).Inc()
}
