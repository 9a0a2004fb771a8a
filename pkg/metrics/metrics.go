package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "waira"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	cellWrites    *prometheus.CounterVec
	riskLevels    *prometheus.CounterVec
	alertsIngests *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		cellWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cell_writes_total",
			Help: "Farm cell writes by operation and cell type.",
		}, []string{"op", "tipo"}),
		riskLevels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "risk_evaluations_total",
			Help: "Crop risk evaluations by resulting level.",
		}, []string{"level"}),
		alertsIngests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "alert_ingestions_total",
			Help: "Alert ingestions by source and outcome.",
		}, []string{"source", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "notifications_total",
			Help: "User notifications by channel and outcome.",
		}, []string{"channel", "outcome"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpLatency, m.cellWrites, m.riskLevels, m.alertsIngests, m.notifications,
	)
	return m
}

// Middleware records every request under its route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.httpRequests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.httpLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}

// The recorders below are nil-safe so packages can take an optional *Metrics.

func (m *Metrics) CellWrite(op, kind string) {
	if m != nil {
		m.cellWrites.WithLabelValues(op, kind).Inc()
	}
}

func (m *Metrics) RiskEvaluated(level string) {
	if m != nil {
		m.riskLevels.WithLabelValues(level).Inc()
	}
}

func (m *Metrics) AlertIngested(source, outcome string) {
	if m != nil {
		m.alertsIngests.WithLabelValues(source, outcome).Inc()
	}
}

func (m *Metrics) Notified(channel, outcome string) {
	if m != nil {
		m.notifications.WithLabelValues(channel, outcome).Inc()
	}
}
