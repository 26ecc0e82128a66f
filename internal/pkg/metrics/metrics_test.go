package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCall(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCall("alibaba.aliqin.fc.sms.num.send", "ok", 20*time.Millisecond)
	m.ObserveCall("alibaba.aliqin.fc.sms.num.send", "ok", 30*time.Millisecond)
	m.ObserveCall("alibaba.aliqin.fc.sms.num.send", "transport_error", time.Second)

	if got := testutil.ToFloat64(m.GatewayCalls.WithLabelValues("alibaba.aliqin.fc.sms.num.send", "ok")); got != 2 {
		t.Errorf("Expected 2 ok calls, got %v", got)
	}
	if got := testutil.CollectAndCount(m.GatewayDuration); got != 1 {
		t.Errorf("Expected 1 histogram series, got %d", got)
	}
}
