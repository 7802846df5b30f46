package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teammatch_devserver_requests_total",
			Help: "Requests served by the development backend.",
		}, []string{"method", "pattern", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "teammatch_devserver_request_duration_seconds",
			Help:    "Time spent serving development backend requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "pattern"}),
	}
	var err error
	if m.requests, err = register(reg, m.requests); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (m *metrics) observe(r *http.Request, status int, elapsed time.Duration) {
	pattern := r.Pattern
	if pattern == "" {
		pattern = "unmatched"
	}
	m.requests.WithLabelValues(r.Method, pattern, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(r.Method, pattern).Observe(elapsed.Seconds())
}
