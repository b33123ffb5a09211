// Package metrics declares the Prometheus collectors exported at /metrics.
//
// Collectors are registered on the default registry via promauto, so any
// package can record into them without wiring.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts finished requests by method, route pattern and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPDuration records request latency by method and route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yatube_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// CacheLookups counts page cache lookups by result ("hit" or "miss").
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_page_cache_lookups_total",
		Help: "Total number of page cache lookups",
	}, []string{"result"})

	// CacheClears counts explicit page cache invalidations.
	CacheClears = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yatube_page_cache_clears_total",
		Help: "Total number of page cache clears",
	})

	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// Events counts domain events: post_created, post_edited,
	// comment_created, follow_created, follow_deleted, user_registered.
	Events = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_events_total",
		Help: "Total number of domain events by type",
	}, []string{"event"})
)

// Event names recorded in Events.
const (
	EventPostCreated    = "post_created"
	EventPostEdited     = "post_edited"
	EventCommentCreated = "comment_created"
	EventFollowCreated  = "follow_created"
	EventFollowDeleted  = "follow_deleted"
	EventUserRegistered = "user_registered"
)

// RecordEvent increments the counter for a domain event.
func RecordEvent(event string) {
	Events.WithLabelValues(event).Inc()
}

// ObserveRequest records one finished HTTP request.
func ObserveRequest(method, route, status string, started time.Time) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(time.Since(started).Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
