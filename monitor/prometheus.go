package monitor

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_http_requests_total",
		Help: "Total HTTP requests served, labeled by path and status code.",
	}, []string{"path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_http_request_duration_seconds",
		Help:    "Wall-clock request duration, including streaming time.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"path"})

	fragmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_stream_fragments_total",
		Help: "Text fragments emitted to clients across all streams.",
	})

	toolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_tool_calls_total",
		Help: "Tool calls dispatched during assistant runs, labeled by tool name.",
	}, []string{"tool"})

	toolRoundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_tool_rounds_total",
		Help: "Requires-action rounds resolved, across all requests.",
	})
)

// GinMiddleware records request counts and durations for every route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		requestsTotal.WithLabelValues(path, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}

// RecordFragment counts one emitted text fragment.
func RecordFragment() {
	fragmentsTotal.Inc()
}

// RecordToolCall counts one dispatched tool call.
func RecordToolCall(tool string) {
	toolCallsTotal.WithLabelValues(tool).Inc()
}

// RecordToolRound counts one resolved requires-action round.
func RecordToolRound() {
	toolRoundsTotal.Inc()
}
