package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AlertCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "alert_count",
		Help: "Total number of alerts delivered",
	})
	TestCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_count",
		Help: "Total number of test alerts delivered",
	})
	XMPPMessageCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "xmpp_message_count",
		Help: "Total number of XMPP messages received.",
	})
	XMPPOnline = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "xmpp_online",
		Help: "Connected to XMPP server.",
	})
	LastAlertMessageSucceeded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "last_alert_message_succeeded",
		Help: "Last alert message succeeded.",
	})
)

// Handle /metrics requests, return a list of all exported metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// Register the exported metrics with the default registry. Call once at
// process start.
func Register() {
	prometheus.MustRegister(
		AlertCount,
		TestCount,
		XMPPMessageCount,
		XMPPOnline,
		LastAlertMessageSucceeded,
	)
}
