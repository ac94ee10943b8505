// Package metrics provides Prometheus metrics collection for the composer.
//
// Every method is safe to call on a nil *Collector, so components can take
// an optional collector without guarding each call site.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Drop reasons reported by NodeDropped.
const (
	ReasonUnknownType   = "unknown_type"
	ReasonDepthExceeded = "depth_exceeded"
)

// Message outcomes reported by Message.
const (
	OutcomeHandled = "handled"
	OutcomeIgnored = "ignored"
	OutcomeInvalid = "invalid"
)

// Collector holds all Prometheus metrics for the composer.
type Collector struct {
	registry *prometheus.Registry

	// Render metrics
	RendersTotal   prometheus.Counter
	RenderDuration prometheus.Histogram
	NodesRendered  prometheus.Counter
	NodesDropped   *prometheus.CounterVec

	// Registry metrics
	TypesRegistered prometheus.Gauge

	// Protocol metrics
	MessagesTotal  *prometheus.CounterVec
	HandshakesSent prometheus.Counter

	// Display metrics
	Subscribers prometheus.Gauge
}

// New creates a collector registered on its own Prometheus registry, so
// several collectors can coexist in one process (tests, embedded hosts).
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		RendersTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "composer",
				Name:      "renders_total",
				Help:      "Total number of render passes",
			},
		),
		RenderDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "composer",
				Name:      "render_duration_seconds",
				Help:      "Render pass duration in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
		),
		NodesRendered: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "composer",
				Name:      "nodes_rendered_total",
				Help:      "Total number of description nodes handed to a primitive",
			},
		),
		NodesDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "composer",
				Name:      "nodes_dropped_total",
				Help:      "Total number of description nodes rendered to nothing",
			},
			[]string{"reason"},
		),

		TypesRegistered: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "composer",
				Name:      "types_registered",
				Help:      "Number of component types in the catalog",
			},
		),

		MessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "composer",
				Name:      "messages_total",
				Help:      "Total number of inbound protocol messages",
			},
			[]string{"outcome"},
		),
		HandshakesSent: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "composer",
				Name:      "handshakes_sent_total",
				Help:      "Total number of catalog handshakes sent to hosts",
			},
		),

		Subscribers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "composer",
				Name:      "display_subscribers",
				Help:      "Number of connected display subscribers",
			},
		),
	}
}

// Handler returns an HTTP handler exposing the collector's metrics.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Gatherer returns the underlying registry.
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return prometheus.NewRegistry()
	}
	return c.registry
}

// RenderPass records a completed top-level render.
func (c *Collector) RenderPass(d time.Duration) {
	if c == nil {
		return
	}
	c.RendersTotal.Inc()
	c.RenderDuration.Observe(d.Seconds())
}

// NodeRendered records a node handed to its primitive.
func (c *Collector) NodeRendered() {
	if c == nil {
		return
	}
	c.NodesRendered.Inc()
}

// NodeDropped records a node that rendered to nothing.
func (c *Collector) NodeDropped(reason string) {
	if c == nil {
		return
	}
	c.NodesDropped.WithLabelValues(reason).Inc()
}

// SetTypes records the catalog size.
func (c *Collector) SetTypes(n int) {
	if c == nil {
		return
	}
	c.TypesRegistered.Set(float64(n))
}

// Message records an inbound message outcome.
func (c *Collector) Message(outcome string) {
	if c == nil {
		return
	}
	c.MessagesTotal.WithLabelValues(outcome).Inc()
}

// Handshake records an outbound catalog handshake.
func (c *Collector) Handshake() {
	if c == nil {
		return
	}
	c.HandshakesSent.Inc()
}

// SubscriberAdded records a new display subscriber.
func (c *Collector) SubscriberAdded() {
	if c == nil {
		return
	}
	c.Subscribers.Inc()
}

// SubscriberRemoved records a departed display subscriber.
func (c *Collector) SubscriberRemoved() {
	if c == nil {
		return
	}
	c.Subscribers.Dec()
}
