// metrics.go - Prometheus metrics
//
// To the extent possible under law, Yawning Angel has waived all copyright
// and related or neighboring rights to the software, using the Creative
// Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

package cookiejar

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultAccepted = "accepted"
	resultRejected = "rejected"
)

// Metrics holds the Prometheus metrics of a Jar.  A nil *Metrics records
// nothing.
type Metrics struct {
	Generated      prometheus.Counter
	Verified       *prometheus.CounterVec
	InvalidAddress prometheus.Counter
	VerifyLatency  prometheus.Histogram
}

// NewMetrics creates the metrics, and registers them with reg if it is not
// nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Generated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cookiejar_cookies_generated_total",
				Help: "Number of cookies generated",
			},
		),
		Verified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cookiejar_cookies_verified_total",
				Help: "Number of cookies verified, by result",
			},
			[]string{"result"},
		),
		InvalidAddress: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cookiejar_invalid_address_total",
				Help: "Number of calls rejected for an oversized address",
			},
		),
		VerifyLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cookiejar_verify_latency_seconds",
				Help:    "Latency of cookie verification",
				Buckets: prometheus.ExponentialBuckets(1e-7, 4, 8),
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Generated, m.Verified, m.InvalidAddress, m.VerifyLatency)
	}
	return m
}

func (m *Metrics) generated() {
	if m == nil {
		return
	}
	m.Generated.Inc()
}

func (m *Metrics) verified(ok bool, d time.Duration) {
	if m == nil {
		return
	}
	result := resultRejected
	if ok {
		result = resultAccepted
	}
	m.Verified.WithLabelValues(result).Inc()
	m.VerifyLatency.Observe(d.Seconds())
}

func (m *Metrics) invalidAddress() {
	if m == nil {
		return
	}
	m.InvalidAddress.Inc()
}
