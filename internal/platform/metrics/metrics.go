package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the Prometheus registry of the relay. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	handler          http.Handler
	messages         *prometheus.CounterVec
	deliveryFailures prometheus.Counter
	adminActions     *prometheus.CounterVec
	trackedAddresses prometheus.Gauge
	grants           prometheus.Gauge
	captureArmed     prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_messages_total",
			Help: "Inbound messages by outcome (captured, forwarded).",
		}, []string{"outcome"}),
		deliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_delivery_failures_total",
			Help: "Forwarded messages Telegram did not accept.",
		}),
		adminActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_admin_actions_total",
			Help: "Administrative operations by action.",
		}, []string{"action"}),
		trackedAddresses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "relay_tracked_addresses",
			Help: "Addresses with an attempt counter.",
		}),
		grants: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "relay_redirect_grants",
			Help: "Addresses bound to captured credentials.",
		}),
		captureArmed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "relay_capture_armed",
			Help: "1 while a capture is pending.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.messages,
		m.deliveryFailures,
		m.adminActions,
		m.trackedAddresses,
		m.grants,
		m.captureArmed,
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return m
}

func (m *Metrics) Handler() http.Handler {
	return m.handler
}

func (m *Metrics) Message(outcome string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(outcome).Inc()
}

func (m *Metrics) DeliveryFailed() {
	if m == nil {
		return
	}
	m.deliveryFailures.Inc()
}

func (m *Metrics) Admin(action string) {
	if m == nil {
		return
	}
	m.adminActions.WithLabelValues(action).Inc()
}

// SetState publishes the tracker gauges.
func (m *Metrics) SetState(addresses, grants int, armed bool) {
	if m == nil {
		return
	}
	m.trackedAddresses.Set(float64(addresses))
	m.grants.Set(float64(grants))
	if armed {
		m.captureArmed.Set(1)
	} else {
		m.captureArmed.Set(0)
	}
}
