// Package metrics exposes resolution outcomes and status API traffic in
// the Prometheus exposition format.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eugenenazirov/relay-service/internal/config"
)

const namespace = "relay"

const (
	outcomeFallback = "fallback"
	outcomeClamped  = "clamped"
	unmatchedRoute  = "unmatched"
)

// Collector owns a registry and the service's metric families. It
// satisfies config.Reporter so resolution can be counted directly.
type Collector struct {
	registry    *prometheus.Registry
	adjustments *prometheus.CounterVec
	requests    *prometheus.CounterVec
	info        *prometheus.GaugeVec
	overload    prometheus.Gauge
	costFactor  prometheus.Gauge
}

var _ config.Reporter = (*Collector)(nil)

// NewCollector registers the metric families on registry. A nil registry
// gets a fresh one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "adjustments_total",
			Help:      "Configuration values that fell back to a default or were clamped.",
		}, []string{"key", "outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "status",
			Name:      "requests_total",
			Help:      "Status API requests by route and response code.",
		}, []string{"route", "code"}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "info",
			Help:      "Resolved feature switches; the value is always 1.",
		}, []string{"node_env", "bedrock", "ldap", "user_management", "webhook", "prompt_caching"}),
		overload: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "overload_window_minutes",
			Help:      "Minutes an overloaded upstream account is kept out of rotation.",
		}),
		costFactor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "cost_multiplier",
			Help:      "Multiplier applied to the rated cost of each request.",
		}),
	}

	registry.MustRegister(c.adjustments, c.requests, c.info, c.overload, c.costFactor)
	return c
}

// Fallback counts a malformed value replaced by its default.
func (c *Collector) Fallback(key string) {
	c.adjustments.WithLabelValues(key, outcomeFallback).Inc()
}

// Clamped counts a value pulled back into range.
func (c *Collector) Clamped(key string) {
	c.adjustments.WithLabelValues(key, outcomeClamped).Inc()
}

// ObserveConfig publishes the resolved feature switches.
func (c *Collector) ObserveConfig(cfg *config.Config) {
	c.info.Reset()
	c.info.WithLabelValues(
		cfg.Server.NodeEnv,
		strconv.FormatBool(cfg.Bedrock.Enabled),
		strconv.FormatBool(cfg.LDAP.Enabled),
		strconv.FormatBool(cfg.UserManagement.Enabled),
		strconv.FormatBool(cfg.Webhook.Enabled),
		strconv.FormatBool(cfg.Bedrock.EnablePromptCaching),
	).Set(1)
	c.overload.Set(float64(cfg.Claude.OverloadHandling.Minutes))
	c.costFactor.Set(cfg.Billing.CostMultiplier)
}

// ObserveRequest counts one status API response. An empty route means the
// request matched no pattern.
func (c *Collector) ObserveRequest(route string, status int) {
	if route == "" {
		route = unmatchedRoute
	}
	c.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Handler serves the registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
