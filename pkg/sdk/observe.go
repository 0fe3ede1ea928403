package logdex

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	keys       *prometheus.CounterVec
	skipped    prometheus.Counter
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logdex",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "logdex",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		keys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logdex",
			Subsystem: "sdk",
			Name:      "keys_total",
			Help:      "Record keys processed by the SDK by outcome.",
		}, []string{"status"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "logdex",
			Subsystem: "sdk",
			Name:      "details_segments_skipped_total",
			Help:      "Malformed details segments dropped during normalization.",
		}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.keys); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.skipped); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or swaps in the one already registered.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("logdex: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("logdex: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer provides logging and metrics for SDK operations. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("operation failed", "op", op, "duration", dur, "error", err)
		return
	}
	o.logger.Debug("operation completed", "op", op, "duration", dur)
}

// countKeys records per-key outcomes of a bulk operation.
func (o *observer) countKeys(sum Summary) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.keys.WithLabelValues("indexed").Add(float64(sum.Indexed))
	o.metrics.keys.WithLabelValues("not_found").Add(float64(sum.NotFound))
	o.metrics.keys.WithLabelValues("error").Add(float64(sum.Failed))
}

// skipCounter returns the counter of dropped details segments, or nil without metrics.
func (o *observer) skipCounter() prometheus.Counter {
	if o == nil || o.metrics == nil {
		return nil
	}
	return o.metrics.skipped
}

// zapLogger bridges the SDK logger into the internal services, or returns nil without one.
func (o *observer) zapLogger() *zap.Logger {
	if o == nil || o.logger == nil {
		return nil
	}
	return zap.New(newSlogCore(o.logger.Handler()))
}
