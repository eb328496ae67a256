package report

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"machinerun.io/blkdiag"
	"machinerun.io/blkdiag/runner"
)

const namespace = "blkdiag"

// Metrics is a runner.Observer that counts check results, and writes them
// with the run outcome to a textfile collector file.
type Metrics struct {
	registry *prometheus.Registry
	results  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	skipped  prometheus.Counter
	passed   prometheus.Gauge
	lastRun  prometheus.Gauge
	stopped  prometheus.Gauge
}

// NewMetrics returns Metrics with its collectors registered in a private
// registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_results_total",
			Help:      "Checks run by device, check type and result.",
		}, []string{"device", "check", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Time taken by a check.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"check"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "devices_skipped_total",
			Help:      "Devices that did not match the filter.",
		}),
		passed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_passed",
			Help:      "1 if every check of the last run passed.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Start time of the last run.",
		}),
		stopped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_stopped",
			Help:      "1 if the last run stopped at the first failure.",
		}),
	}

	m.registry.MustRegister(m.results, m.duration, m.skipped, m.passed, m.lastRun, m.stopped)

	return m
}

// Skipped counts a skipped device.
func (m *Metrics) Skipped(blkdiag.Device) {
	m.skipped.Inc()
}

// Started does nothing.
func (m *Metrics) Started(blkdiag.Device, string) {}

// Finished counts the result of a check.
func (m *Metrics) Finished(e runner.Entry) {
	result := "success"
	if !e.Result.IsSuccess() {
		result = "failure"
	}

	m.results.WithLabelValues(e.Device.Name, e.CheckType, result).Inc()
	m.duration.WithLabelValues(e.CheckType).Observe(e.Duration.Seconds())
}

// Write records the outcome of r and writes every metric to path in the text
// exposition format. The file is replaced atomically.
func (m *Metrics) Write(path string, r runner.Report) error {
	m.passed.Set(0)
	if r.AllPassed() {
		m.passed.Set(1)
	}

	m.stopped.Set(0)
	if r.Stopped {
		m.stopped.Set(1)
	}

	if !r.Started.IsZero() {
		m.lastRun.Set(float64(r.Started.Unix()))
	}

	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "failed to write metrics to %s", path)
	}

	return nil
}
