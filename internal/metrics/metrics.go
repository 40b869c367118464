package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "freightbook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	refreshRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "freightbook",
			Name:      "directory_refresh_total",
			Help:      "Directory refresh runs by outcome.",
		},
		[]string{"outcome"},
	)

	refreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "freightbook",
			Name:      "directory_refresh_duration_seconds",
			Help:      "Duration of fetch plus aggregation per refresh run.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	bookingsIngested = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "freightbook",
			Name:      "bookings_ingested",
			Help:      "Bookings in the current snapshot.",
		},
	)

	contactsDerived = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "freightbook",
			Name:      "contacts_derived",
			Help:      "Contacts in the current snapshot by role.",
		},
		[]string{"role"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, refreshRuns, refreshDuration, bookingsIngested, contactsDerived)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// ObserveRefresh records the outcome and duration of a refresh run.
func ObserveRefresh(outcome string, duration time.Duration) {
	refreshRuns.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		refreshDuration.Observe(duration.Seconds())
	}
}

// SetSnapshotSizes records the shape of the current snapshot.
func SetSnapshotSizes(bookings, senders, receivers int) {
	bookingsIngested.Set(float64(bookings))
	contactsDerived.WithLabelValues("sender").Set(float64(senders))
	contactsDerived.WithLabelValues("receiver").Set(float64(receivers))
}
