package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK         = "ok"
	outcomeStatus     = "status_error"
	outcomeTimeout    = "timeout"
	outcomeUnexpected = "error"

	otherHost = "other"
)

type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	hosts    map[string]bool
}

// NewMetrics registers the upstream request collectors with reg. When hosts
// are given, requests to any other host share the "other" label.
func NewMetrics(reg prometheus.Registerer, hosts ...string) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "newscomb_upstream_requests_total",
			Help: "Upstream HTTP requests by host and outcome.",
		}, []string{"host", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newscomb_upstream_request_duration_seconds",
			Help:    "Upstream HTTP request duration by host.",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
	}

	if len(hosts) > 0 {
		m.hosts = make(map[string]bool, len(hosts))
		for _, host := range hosts {
			m.hosts[host] = true
		}
	}

	return m
}

func (m *Metrics) observe(host, outcome string, seconds float64) {
	if m == nil {
		return
	}
	if m.hosts != nil && !m.hosts[host] {
		host = otherHost
	}

	m.requests.WithLabelValues(host, outcome).Inc()
	m.duration.WithLabelValues(host).Observe(seconds)
}
