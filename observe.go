package docindex

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// clientMetrics holds prometheus metrics registered for the client.
type clientMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docindex",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total API requests by operation and HTTP status (0 = client error).",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docindex",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.requests); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("docindex: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("docindex: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for API calls.
type observer struct {
	logger  *zap.Logger
	metrics *clientMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *clientMetrics
	if reg != nil {
		var err error
		m, err = newClientMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &observer{logger: logger, metrics: m}, nil
}

func (o *observer) observe(op, method, path string, start time.Time, status int, apiErr *Error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		o.metrics.requests.WithLabelValues(op, strconv.Itoa(status)).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	fields := []zap.Field{
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("duration", dur),
	}
	if apiErr != nil {
		o.logger.Warn("request failed", append(fields, zap.Error(apiErr))...)
		return
	}
	o.logger.Debug("request completed", fields...)
}
