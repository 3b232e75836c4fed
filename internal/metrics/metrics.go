package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visage_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "visage_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ChatTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visage_chat_turns_total",
			Help: "Total number of completed chat turns.",
		},
		[]string{"status"},
	)

	AvatarResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visage_avatar_resolutions_total",
			Help: "Avatar cache resolutions by outcome.",
		},
		[]string{"outcome"},
	)

	AvatarJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visage_avatar_jobs_total",
			Help: "Avatar synthesis jobs by terminal status.",
		},
		[]string{"status"},
	)

	WebsocketConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "visage_websocket_connections",
			Help: "Number of live per-session WebSocket connections.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ChatTurnsTotal,
		AvatarResolutionsTotal,
		AvatarJobsTotal,
		WebsocketConnections,
	)
}
