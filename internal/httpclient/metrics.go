package httpclient

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teammatch_http_request_duration_seconds",
			Help:    "Backend request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "status"},
	)
	total := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teammatch_http_requests_total",
			Help: "Total number of backend requests",
		},
		[]string{"method", "status"},
	)

	var err error
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if total, err = register(reg, total); err != nil {
		return nil, err
	}
	return &metrics{duration: duration, total: total}, nil
}

// register returns the already-registered collector when one with the same
// descriptor exists, so several clients can share a registry.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) observe(method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(method, status).Observe(d.Seconds())
	m.total.WithLabelValues(method, status).Inc()
}
