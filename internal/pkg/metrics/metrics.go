package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	GatewayCalls    *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
	Reconciled      *prometheus.CounterVec
	RateLimited     prometheus.Counter
}

// New creates the relay's collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alidayu",
			Name:      "gateway_calls_total",
			Help:      "Gateway calls by TOP method and outcome.",
		}, []string{"method", "outcome"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "alidayu",
			Name:      "gateway_call_duration_seconds",
			Help:      "Gateway round trip latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		Reconciled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alidayu",
			Name:      "sms_reconciled_total",
			Help:      "SMS dispatches reconciled by resulting status.",
		}, []string{"status"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alidayu",
			Name:      "relay_rate_limited_total",
			Help:      "Relay requests rejected by the rate limiter.",
		}),
	}
	reg.MustRegister(m.GatewayCalls, m.GatewayDuration, m.Reconciled, m.RateLimited)
	return m
}

func (m *Metrics) ObserveCall(method, outcome string, d time.Duration) {
	m.GatewayCalls.WithLabelValues(method, outcome).Inc()
	m.GatewayDuration.WithLabelValues(method).Observe(d.Seconds())
}
