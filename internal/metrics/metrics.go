package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal    *prometheus.CounterVec
	eventsPublishedTotal *prometheus.CounterVec
	eventsDroppedTotal   prometheus.Counter
	streamSubscribers    prometheus.Gauge
	registerOnce         sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pollstream",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the pollstream API.",
		}, []string{"method", "path", "status"})

		eventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pollstream",
			Name:      "events_published_total",
			Help:      "Total poll events published on the in-memory bus.",
		}, []string{"type"})

		eventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "pollstream",
			Name:      "events_dropped_total",
			Help:      "Events dropped from slow subscriber queues (drop-oldest backpressure).",
		})

		streamSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "pollstream",
			Name:      "stream_subscribers",
			Help:      "Currently connected event stream subscribers.",
		})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// IncEventPublished increments the published-events counter for an event type.
func IncEventPublished(eventType string) {
	if eventsPublishedTotal == nil {
		return
	}
	eventsPublishedTotal.WithLabelValues(eventType).Inc()
}

// IncEventDropped increments the dropped-events counter.
func IncEventDropped() {
	if eventsDroppedTotal == nil {
		return
	}
	eventsDroppedTotal.Inc()
}

// AddSubscribers adjusts the connected-subscribers gauge.
func AddSubscribers(delta int) {
	if streamSubscribers == nil {
		return
	}
	streamSubscribers.Add(float64(delta))
}
