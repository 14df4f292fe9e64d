package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	TicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courtroom_ticks_total",
			Help: "Total number of scheduler ticks evaluated",
		},
	)

	MessagesInjectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtroom_messages_injected_total",
			Help: "Messages created, by injection policy",
		},
		[]string{"policy"},
	)

	EscalationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtroom_escalations_total",
			Help: "Severity escalations, by resulting severity",
		},
		[]string{"severity"},
	)

	ConsequencesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtroom_consequences_total",
			Help: "Terminal consequences fired, by kind",
		},
		[]string{"kind"},
	)

	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtroom_resolutions_total",
			Help: "Messages resolved, by method",
		},
		[]string{"method"},
	)

	ActiveMessages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "courtroom_active_messages",
			Help: "Unresolved messages currently retained",
		},
	)

	Lockout = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "courtroom_lockout",
			Help: "1 while the insolvency lockout is active",
		},
	)

	ListenerFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtroom_listener_failures_total",
			Help: "Event listener failures, by listener",
		},
		[]string{"listener"},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "courtroom_websocket_connections",
			Help: "Open live snapshot connections",
		},
	)

	DbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "query_type"},
	)
)
