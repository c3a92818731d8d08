// Package metrics holds the process's Prometheus collectors and the gin
// middleware that feeds the request metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookbrief_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookbrief_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	BookReadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookbrief_book_reads_total",
		Help: "Read counter increments accepted",
	})

	SearchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookbrief_search_requests_total",
		Help: "Search requests by outcome",
	}, []string{"outcome"})

	TasksProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookbrief_tasks_processed_total",
		Help: "Background tasks processed by type and status",
	}, []string{"task", "status"})
)

// Search outcomes.
const (
	SearchOK      = "ok"
	SearchLimited = "rate_limited"
	SearchFailed  = "error"
)

// Middleware records request count and latency per route template.
// Unmatched routes are grouped under "unmatched" to bound label cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// TaskDone counts one processed task.
func TaskDone(task string, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	TasksProcessedTotal.WithLabelValues(task, status).Inc()
}
