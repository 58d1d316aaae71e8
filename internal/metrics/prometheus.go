package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	signupsTotal             *prometheus.CounterVec
	signinsTotal             *prometheus.CounterVec
	recoveryStepsTotal       *prometheus.CounterVec
	authorizationDeniedTotal *prometheus.CounterVec
	httpRequestsTotal        *prometheus.CounterVec
	httpRequestDuration      *prometheus.HistogramVec
}

// NewPrometheus creates and registers all collectors on registry.
func NewPrometheus(registry *prometheus.Registry) *PrometheusRecorder {
	p := &PrometheusRecorder{
		registry: registry,
		signupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freshplate_signups_total",
				Help: "Total number of sign-up attempts",
			},
			[]string{"status"},
		),
		signinsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freshplate_signins_total",
				Help: "Total number of sign-in attempts",
			},
			[]string{"status"},
		),
		recoveryStepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freshplate_recovery_steps_total",
				Help: "Total number of password recovery steps",
			},
			[]string{"step", "status"},
		),
		authorizationDeniedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freshplate_authorization_denied_total",
				Help: "Total number of denied authorization checks",
			},
			[]string{"kind"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freshplate_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "freshplate_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		p.signupsTotal,
		p.signinsTotal,
		p.recoveryStepsTotal,
		p.authorizationDeniedTotal,
		p.httpRequestsTotal,
		p.httpRequestDuration,
	)
	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// IncSignup increments the signup counter.
func (p *PrometheusRecorder) IncSignup(status string) {
	p.signupsTotal.WithLabelValues(status).Inc()
}

// IncSignin increments the signin counter.
func (p *PrometheusRecorder) IncSignin(status string) {
	p.signinsTotal.WithLabelValues(status).Inc()
}

// IncRecoveryStep increments the recovery step counter.
func (p *PrometheusRecorder) IncRecoveryStep(step, status string) {
	p.recoveryStepsTotal.WithLabelValues(step, status).Inc()
}

// IncAuthorizationDenied increments the denial counter.
func (p *PrometheusRecorder) IncAuthorizationDenied(kind string) {
	p.authorizationDeniedTotal.WithLabelValues(kind).Inc()
}

// ObserveHTTPRequest records request count and latency.
func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
