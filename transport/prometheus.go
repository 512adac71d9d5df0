package transport

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMetrics is used by every Transport made after it is set.
// Assign it before the first call to NewTransport, eg from an init
// function, or leave it nil to disable instrumentation.
var DefaultMetrics = (*Metrics)(nil)

// Metrics counts the HTTP responses seen by a Transport.
type Metrics struct {
	StatusCode *prometheus.CounterVec
}

// NewMetrics makes a Metrics with its counters under namespace.
func NewMetrics(namespace string) *Metrics {
	statusCode := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "status_code",
		Help:      "Number of HTTP responses by host, method and status code",
	}, []string{"host", "method", "code"})
	return &Metrics{StatusCode: statusCode}
}

// Collectors returns the metrics for registration with a prometheus
// registry.  A nil Metrics returns none.
func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	return []prometheus.Collector{m.StatusCode}
}

// onResponse counts one round trip.  A nil response, eg from a
// transport error, is recorded as status code 0.
func (m *Metrics) onResponse(req *http.Request, resp *http.Response) {
	if m == nil {
		return
	}
	code := 0
	if resp != nil {
		code = resp.StatusCode
	}
	m.StatusCode.WithLabelValues(req.Host, req.Method, fmt.Sprint(code)).Inc()
}
