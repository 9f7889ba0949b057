// Package metrics registers the prometheus series for connects, deliveries and sessions
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the series; a nil *Collector records nothing
type Collector struct {
	connects    *prometheus.CounterVec
	deliveries  *prometheus.CounterVec
	dropped     prometheus.Counter
	sessions    prometheus.Gauge
	queueDepth  prometheus.Gauge
	pushLatency prometheus.Histogram
}

// NewCollector creates the series and registers them on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		connects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kydu_gig_connects_total",
			Help: "Connect attempts by result.",
		}, []string{"result"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kydu_deliveries_total",
			Help: "Delivery outcomes by path.",
		}, []string{"outcome"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kydu_deliveries_dropped_total",
			Help: "Deliveries dropped because the queue was full.",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kydu_realtime_sessions",
			Help: "Live realtime sessions.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kydu_delivery_queue_depth",
			Help: "Deliveries waiting for a worker.",
		}),
		pushLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kydu_push_latency_seconds",
			Help:    "Push provider round trip.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(c.connects, c.deliveries, c.dropped, c.sessions, c.queueDepth, c.pushLatency)
	return c
}

// RecordConnect counts a connect attempt; result is accepted or a rejection reason
func (c *Collector) RecordConnect(result string) {
	if c != nil {
		c.connects.WithLabelValues(result).Inc()
	}
}

// RecordDelivery counts one delivery outcome
func (c *Collector) RecordDelivery(outcome string) {
	if c != nil {
		c.deliveries.WithLabelValues(outcome).Inc()
	}
}

// RecordDropped counts a delivery the scheduler refused
func (c *Collector) RecordDropped() {
	if c != nil {
		c.dropped.Inc()
	}
}

// SetSessions sets the live session gauge
func (c *Collector) SetSessions(n int) {
	if c != nil {
		c.sessions.Set(float64(n))
	}
}

// SetQueueDepth sets the delivery queue gauge
func (c *Collector) SetQueueDepth(n int) {
	if c != nil {
		c.queueDepth.Set(float64(n))
	}
}

// ObservePush records how long one push took
func (c *Collector) ObservePush(d time.Duration) {
	if c != nil {
		c.pushLatency.Observe(d.Seconds())
	}
}

// Handler serves the registry in the prometheus exposition format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
