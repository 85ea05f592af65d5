// Package metrics exposes the storefront's Prometheus instruments on a
// dedicated registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Reconciliation outcomes.
const (
	OutcomeCreated   = "created"
	OutcomeExisting  = "existing"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
	OutcomeRefunded  = "refunded"
)

// Metrics groups every instrument registered by the service.
type Metrics struct {
	registry      *prometheus.Registry
	reconciles    *prometheus.CounterVec
	refunds       *prometheus.CounterVec
	stepFailures  *prometheus.CounterVec
	rateLimited   *prometheus.CounterVec
	webhookEvents *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New registers all instruments on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		reconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_total",
			Help:      "Checkout session reconciliations by outcome.",
		}, []string{"outcome"}),
		refunds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunds_total",
			Help:      "Refunds issued by reason and result.",
		}, []string{"reason", "result"}),
		stepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_step_failures_total",
			Help:      "Failures of best-effort reconciliation steps.",
		}, []string{"step"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter per policy.",
		}, []string{"policy"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Verified payment webhook events by type.",
		}, []string{"type"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status class.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.reconciles,
		m.refunds,
		m.stepFailures,
		m.rateLimited,
		m.webhookEvents,
		m.httpDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ReconcileOutcome(outcome string) {
	m.reconciles.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Refund(reason string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.refunds.WithLabelValues(reason, result).Inc()
}

func (m *Metrics) StepFailed(step string) {
	m.stepFailures.WithLabelValues(step).Inc()
}

func (m *Metrics) RateLimited(policy string) {
	m.rateLimited.WithLabelValues(policy).Inc()
}

func (m *Metrics) WebhookEvent(eventType string) {
	m.webhookEvents.WithLabelValues(eventType).Inc()
}

// ObserveHTTP records one request; route is the matched pattern, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, seconds float64) {
	m.httpDuration.WithLabelValues(method, route, statusClass(status)).Observe(seconds)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
