package cardex

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation outcomes reported by the SDK metrics.
const (
	statusOK       = "ok"
	statusNotFound = "not_found"
	statusPartial  = "partial"
	statusError    = "error"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cardex",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by resource, type and status.",
		}, []string{"resource", "operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cardex",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"resource", "operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
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
				return fmt.Errorf("cardex: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("cardex: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for SDK operations.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// observe records one finished operation. partial marks a search that
// hit its timeout.
func (o *observer) observe(res Resource, op string, start time.Time, partial bool, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	status := statusOK
	switch {
	case errors.Is(err, ErrNotFound):
		status = statusNotFound
	case err != nil:
		status = statusError
	case partial:
		status = statusPartial
	}

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(string(res), op, status).Inc()
		o.metrics.duration.WithLabelValues(string(res), op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	switch status {
	case statusError:
		o.logger.Warn("operation failed",
			"resource", res,
			"op", op,
			"duration", dur,
			"error", err,
		)
	case statusPartial:
		o.logger.Warn("search timed out",
			"resource", res,
			"op", op,
			"duration", dur,
		)
	default:
		o.logger.Debug("operation completed",
			"resource", res,
			"op", op,
			"status", status,
			"duration", dur,
		)
	}
}
