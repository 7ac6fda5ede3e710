package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Domain event metrics
	EventsPublishedTotal     *prometheus.CounterVec
	EventHandlerFailures     *prometheus.CounterVec
	NotificationsCreated     *prometheus.CounterVec
	NotificationFanoutErrors *prometheus.CounterVec
	RealtimePublishErrors    prometheus.Counter

	// Database metrics
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge

	// Business metrics
	UsersTotal      prometheus.Gauge
	WorkspacesTotal prometheus.Gauge
	ProjectsTotal   prometheus.Gauge
	TasksTotal      *prometheus.GaugeVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workboard_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workboard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		EventsPublishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workboard_events_published_total",
				Help: "Total number of domain events published",
			},
			[]string{"type"},
		),
		EventHandlerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workboard_event_handler_failures_total",
				Help: "Total number of failed (swallowed) event handler invocations",
			},
			[]string{"type", "subscriber"},
		),
		NotificationsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workboard_notifications_created_total",
				Help: "Total number of notifications persisted",
			},
			[]string{"type"},
		),
		NotificationFanoutErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workboard_notification_fanout_errors_total",
				Help: "Total number of notification fan-outs that failed",
			},
			[]string{"type"},
		),
		RealtimePublishErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "workboard_realtime_publish_errors_total",
				Help: "Total number of failed realtime notification pushes",
			},
		),

		DBConnectionsOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "workboard_db_connections_open",
				Help: "Number of open database connections",
			},
		),
		DBConnectionsInUse: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "workboard_db_connections_in_use",
				Help: "Number of database connections in use",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "workboard_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),

		UsersTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "workboard_users_total",
				Help: "Total number of users",
			},
		),
		WorkspacesTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "workboard_workspaces_total",
				Help: "Total number of workspaces",
			},
		),
		ProjectsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "workboard_projects_total",
				Help: "Total number of projects",
			},
		),
		TasksTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "workboard_tasks_total",
				Help: "Total number of tasks by status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.EventsPublishedTotal,
		m.EventHandlerFailures,
		m.NotificationsCreated,
		m.NotificationFanoutErrors,
		m.RealtimePublishErrors,
		m.DBConnectionsOpen,
		m.DBConnectionsInUse,
		m.DBConnectionsIdle,
		m.UsersTotal,
		m.WorkspacesTotal,
		m.ProjectsTotal,
		m.TasksTotal,
	)

	return m
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics.
// Requests are labelled with the matched mux route template so IDs do not
// explode label cardinality.
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
